package kernel

import "runtime"

// FreeHeap returns the heap bytes the runtime holds but has not handed out.
func FreeHeap() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapIdle < ms.HeapReleased {
		return 0
	}
	return ms.HeapIdle - ms.HeapReleased
}
