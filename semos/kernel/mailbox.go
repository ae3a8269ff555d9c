package kernel

import "sync/atomic"

// MaxMessageBytes is the maximum payload size for IPC messages.
//
// Larger transfers should use a SharedBuffer, not mailbox copies.
const MaxMessageBytes = 128

// DefaultMailboxSlots is the queue depth used when NewMailbox gets zero.
const DefaultMailboxSlots = 32

// Message is a fixed-size IPC envelope.
type Message struct {
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
}

// NewMessage builds a message, truncating payload to MaxMessageBytes.
func NewMessage(kind uint16, payload []byte) Message {
	var msg Message
	msg.Kind = kind
	msg.Len = uint16(copy(msg.Data[:], payload))
	return msg
}

// Payload returns the valid part of Data.
func (m *Message) Payload() []byte {
	n := int(m.Len)
	if n > len(m.Data) {
		n = len(m.Data)
	}
	return m.Data[:n]
}

// Mailbox is a bounded multi-producer, single-consumer message queue.
// Sends never block; a full mailbox drops the message and counts it.
type Mailbox struct {
	ch      chan Message
	dropped atomic.Uint32
}

func NewMailbox(slots int) *Mailbox {
	if slots <= 0 {
		slots = DefaultMailboxSlots
	}
	return &Mailbox{ch: make(chan Message, slots)}
}

// TrySend attempts to enqueue a message, returning false if the mailbox is full.
func (mb *Mailbox) TrySend(msg Message) bool {
	select {
	case mb.ch <- msg:
		return true
	default:
		mb.dropped.Add(1)
		return false
	}
}

// TryRecv attempts to dequeue one message, returning false if empty.
func (mb *Mailbox) TryRecv() (Message, bool) {
	select {
	case msg := <-mb.ch:
		return msg, true
	default:
		return Message{}, false
	}
}

// Len returns the number of queued messages.
func (mb *Mailbox) Len() int { return len(mb.ch) }

// Dropped returns how many sends failed because the mailbox was full.
func (mb *Mailbox) Dropped() uint32 { return mb.dropped.Load() }
