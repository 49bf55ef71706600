package bpred

import "fmt"

// GlobalHistory holds one global history register per hardware thread.
//
// Every register is bounded by mask, which is TableSize-1 rather than
// 2^HistoryBits-1. The same mask bounds the PHT index, so register width and
// table size are coupled.
type GlobalHistory struct {
	regs []uint32
	mask uint32
}

// NewGlobalHistory creates zeroed registers for numThreads threads.
func NewGlobalHistory(numThreads int, mask uint32) *GlobalHistory {
	return &GlobalHistory{
		regs: make([]uint32, numThreads),
		mask: mask,
	}
}

// Mask returns the value every register is bounded by.
func (h *GlobalHistory) Mask() uint32 {
	return h.mask
}

// Read returns the current register value of the thread.
func (h *GlobalHistory) Read(tid ThreadID) uint32 {
	return h.regs[h.slot(tid)]
}

// ShiftIn pushes one outcome bit into the register of the thread.
func (h *GlobalHistory) ShiftIn(tid ThreadID, taken bool) {
	i := h.slot(tid)

	v := h.regs[i] << 1
	if taken {
		v |= 1
	}

	h.regs[i] = v & h.mask
}

// Restore overwrites the register of the thread with a snapshot.
func (h *GlobalHistory) Restore(tid ThreadID, value uint32) {
	h.regs[h.slot(tid)] = value
}

// ClearLowBit clears the youngest outcome bit of the register.
func (h *GlobalHistory) ClearLowBit(tid ThreadID) {
	h.regs[h.slot(tid)] &= h.mask &^ 1
}

// Reset clears all registers.
func (h *GlobalHistory) Reset() {
	for i := range h.regs {
		h.regs[i] = 0
	}
}

func (h *GlobalHistory) slot(tid ThreadID) int {
	if int(tid) < 0 || int(tid) >= len(h.regs) {
		panic(fmt.Errorf("%w: thread %d out of range [0, %d)",
			ErrContractViolation, tid, len(h.regs)))
	}

	return int(tid)
}
