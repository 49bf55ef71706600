package bpred

// PatternHistoryTable is a direct-mapped array of saturating counters.
type PatternHistoryTable struct {
	counters []SatCounter
}

// NewPatternHistoryTable creates a table of size counters, each counterBits
// wide and initialized to zero.
func NewPatternHistoryTable(size uint32, counterBits uint8) *PatternHistoryTable {
	pht := &PatternHistoryTable{
		counters: make([]SatCounter, size),
	}

	for i := range pht.counters {
		pht.counters[i] = NewSatCounter(counterBits)
	}

	return pht
}

// Size returns the number of entries in the table.
func (t *PatternHistoryTable) Size() int {
	return len(t.counters)
}

// Predict returns the direction held by the counter at index.
func (t *PatternHistoryTable) Predict(index uint32) bool {
	return t.counters[index].Taken()
}

// Train moves the counter at index towards the actual outcome.
func (t *PatternHistoryTable) Train(index uint32, taken bool) {
	if taken {
		t.counters[index].Increment()
	} else {
		t.counters[index].Decrement()
	}
}

// Counter returns a copy of the counter at index.
func (t *PatternHistoryTable) Counter(index uint32) SatCounter {
	return t.counters[index]
}

// Reset clears every counter to zero.
func (t *PatternHistoryTable) Reset() {
	for i := range t.counters {
		t.counters[i].Reset()
	}
}
