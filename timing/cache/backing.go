package cache

// MapBacking is a sparse byte-addressed memory used as the last level of a
// cache hierarchy. Unwritten bytes read as zero.
type MapBacking struct {
	bytes map[uint64]byte
}

// NewMapBacking creates an empty MapBacking.
func NewMapBacking() *MapBacking {
	return &MapBacking{bytes: make(map[uint64]byte)}
}

// Read fetches size bytes starting at addr.
func (m *MapBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = m.bytes[addr+uint64(i)]
	}
	return data
}

// Write stores data starting at addr.
func (m *MapBacking) Write(addr uint64, data []byte) {
	for i, b := range data {
		m.bytes[addr+uint64(i)] = b
	}
}

// Read64 returns the little-endian 64-bit value at addr.
func (m *MapBacking) Read64(addr uint64) uint64 {
	return extractData(m.Read(addr, 8), 0, 8)
}

// Write64 stores a little-endian 64-bit value at addr.
func (m *MapBacking) Write64(addr uint64, value uint64) {
	data := make([]byte, 8)
	storeData(data, 0, 8, value)
	m.Write(addr, data)
}
