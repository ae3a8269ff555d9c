//go:build !tinygo

package hal

import (
	"bufio"
	"io"
)

type hostSerial struct {
	r io.Reader
}

// pumpKeys forwards bytes read from the serial input as key presses.
// It returns when the reader is exhausted.
func (s *hostSerial) pumpKeys(k *hostKeyboard) {
	if s.r == nil || k == nil {
		return
	}
	br := bufio.NewReader(s.r)
	for {
		r, _, err := br.ReadRune()
		if err != nil {
			return
		}
		ev := KeyEvent{Press: true, Rune: r}
		switch r {
		case '\n', '\r':
			ev = KeyEvent{Code: KeyEnter, Press: true}
		case ' ':
			ev.Code = KeySpace
		case 0x1b:
			ev = KeyEvent{Code: KeyEscape, Press: true}
		}
		k.emit(ev)
	}
}
