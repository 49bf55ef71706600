package bpred

// combineWidth is the number of low operand bits Combine looks at.
const combineWidth = 8

// Combine maps a shifted branch address and a history value to a PHT index.
//
// The operands are ordered so that Combine(a, h, m) == Combine(h, a, m). Each
// of the low eight bit positions contributes NOR(a_i, h_i), assembled MSB
// first, and the result is masked to the table. Bits above position 7 are
// ignored whatever the configured history or table width, so tables larger
// than 256 entries only ever see the low 256 indices. Two zero operands yield
// index 1 without masking.
//
// Operands are 32 bits wide. Callers truncate the shifted branch address, so
// the zero check and the operand ordering only see its low 32 bits.
func Combine(address, history uint32, mask uint32) uint32 {
	if address == 0 && history == 0 {
		return 1
	}

	if address < history {
		address, history = history, address
	}

	var result uint32
	for i := combineWidth - 1; i >= 0; i-- {
		a := (address >> i) & 1
		h := (history >> i) & 1
		nor := ^(a | h) & 1
		result = result<<1 | nor
	}

	return result & mask
}
