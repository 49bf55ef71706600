package bpred

// MaxCounterBits is the widest counter a SatCounter can hold.
const MaxCounterBits = 8

// SatCounter is an unsigned saturating counter of a fixed bit width.
// Incrementing at the maximum or decrementing at zero leaves the value
// unchanged instead of wrapping.
type SatCounter struct {
	value uint8
	max   uint8
	bits  uint8
}

// NewSatCounter creates a counter of the given width, starting at zero.
// bits must be in [1, MaxCounterBits].
func NewSatCounter(bits uint8) SatCounter {
	return SatCounter{
		max:  uint8((uint16(1) << bits) - 1),
		bits: bits,
	}
}

// Value returns the raw counter value.
func (c SatCounter) Value() uint8 {
	return c.value
}

// Max returns the saturation ceiling, 2^bits - 1.
func (c SatCounter) Max() uint8 {
	return c.max
}

// Increment adds one, clamping at Max.
func (c *SatCounter) Increment() {
	if c.value < c.max {
		c.value++
	}
}

// Decrement subtracts one, clamping at zero.
func (c *SatCounter) Decrement() {
	if c.value > 0 {
		c.value--
	}
}

// Taken returns the most significant bit of the counter.
func (c SatCounter) Taken() bool {
	return (c.value>>(c.bits-1))&1 == 1
}

// Reset sets the counter back to zero.
func (c *SatCounter) Reset() {
	c.value = 0
}
