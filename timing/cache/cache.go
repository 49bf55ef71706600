// Package cache provides a set-associative cache model built on Akita cache
// components, with plain LRU or insertion/promotion-vector LRU replacement.
package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Policy selects the replacement policy of a cache.
type Policy int

const (
	// PolicyLRU evicts the least recently used block and promotes every hit
	// to MRU.
	PolicyLRU Policy = iota
	// PolicyLRUIPV places fills and hits at positions given by an
	// insertion/promotion vector.
	PolicyLRUIPV
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyLRU:
		return "lru"
	case PolicyLRUIPV:
		return "lru-ipv"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles (includes memory access time)
	MissLatency uint64
	// Policy is the replacement policy.
	Policy Policy
	// IPV is the insertion/promotion vector for PolicyLRUIPV. Nil selects
	// the default for the associativity.
	IPV []int
}

// DefaultConfig returns a 256KB, 16-way, 64B-line cache using LRU-IPV.
func DefaultConfig() Config {
	return Config{
		Size:          256 * 1024,
		Associativity: 16,
		BlockSize:     64,
		HitLatency:    12,
		MissLatency:   150,
		Policy:        PolicyLRUIPV,
	}
}

// Validate checks the cache geometry.
func (c Config) Validate() error {
	if c.Associativity <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("associativity and block size must be > 0")
	}
	if c.Size <= 0 || c.Size%(c.Associativity*c.BlockSize) != 0 {
		return fmt.Errorf("size %d is not a multiple of associativity * block size", c.Size)
	}
	return nil
}

// AccessResult contains the result of a cache access.
type AccessResult struct {
	// Hit indicates whether the access was a cache hit.
	Hit bool
	// Latency is the number of cycles this access takes.
	Latency uint64
	// Data is the data read (for load operations).
	Data uint64
	// Evicted is true if a valid block was evicted.
	Evicted bool
	// EvictedAddr is the address of the evicted block (if Evicted is true).
	EvictedAddr uint64
}

// Statistics holds cache performance statistics.
type Statistics struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// HitRate returns the hit rate as a percentage.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// BackingStore interface for the next level in the memory hierarchy.
type BackingStore interface {
	// Read fetches data from the backing store.
	Read(addr uint64, size int) []byte
	// Write stores data to the backing store.
	Write(addr uint64, data []byte)
}

// Cache is a write-back, write-allocate cache.
type Cache struct {
	config Config

	// Akita cache directory for tag/state management
	directory *akitacache.DirectoryImpl

	// ipv is set when the policy is PolicyLRUIPV
	ipv *IPVVictimFinder

	// Data storage - indexed by (setID * associativity + wayID)
	dataStore [][]byte

	stats   Statistics
	backing BackingStore
}

// New creates a new cache with the given configuration.
func New(config Config, backing BackingStore) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}

	numSets := config.Size / (config.Associativity * config.BlockSize)
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	c := &Cache{
		config:    config,
		dataStore: dataStore,
		backing:   backing,
	}

	var victimFinder akitacache.VictimFinder
	switch config.Policy {
	case PolicyLRU:
		victimFinder = akitacache.NewLRUVictimFinder()
	case PolicyLRUIPV:
		ipv, err := NewIPVVictimFinder(config.Associativity, config.IPV)
		if err != nil {
			return nil, fmt.Errorf("invalid cache config: %w", err)
		}
		c.ipv = ipv
		victimFinder = ipv
	default:
		return nil, fmt.Errorf("invalid cache config: unknown policy %v", config.Policy)
	}

	c.directory = akitacache.NewDirectory(
		numSets,
		config.Associativity,
		config.BlockSize,
		victimFinder,
	)

	return c, nil
}

// Config returns the cache configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// Contains reports whether the line holding addr is cached.
func (c *Cache) Contains(addr uint64) bool {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	return block != nil && block.IsValid
}

func (c *Cache) blockAddr(addr uint64) uint64 {
	return (addr / uint64(c.config.BlockSize)) * uint64(c.config.BlockSize)
}

// blockIndex computes the index into dataStore for a block.
func (c *Cache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

func (c *Cache) set(block *akitacache.Block) *akitacache.Set {
	return &c.directory.GetSets()[block.SetID]
}

// touch records a hit on block.
func (c *Cache) touch(block *akitacache.Block) {
	if c.ipv != nil {
		c.ipv.Promote(c.set(block), block)
		return
	}
	c.directory.Visit(block)
}

// fill records that block has just been allocated.
func (c *Cache) fill(block *akitacache.Block) {
	if c.ipv != nil {
		c.ipv.Insert(c.set(block), block)
		return
	}
	c.directory.Visit(block)
}

// Read performs a cache read operation.
func (c *Cache) Read(addr uint64, size int) AccessResult {
	c.stats.Reads++

	block := c.directory.Lookup(0, c.blockAddr(addr)) // PID=0 for now

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.touch(block)

		offset := addr % uint64(c.config.BlockSize)
		blockData := c.dataStore[c.blockIndex(block)]

		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
			Data:    extractData(blockData, offset, size),
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, size, false, 0)
}

// Write performs a cache write operation.
// Uses write-allocate policy: on miss, fetch the block first, then write.
func (c *Cache) Write(addr uint64, size int, data uint64) AccessResult {
	c.stats.Writes++

	block := c.directory.Lookup(0, c.blockAddr(addr))

	if block != nil && block.IsValid {
		c.stats.Hits++
		c.touch(block)

		offset := addr % uint64(c.config.BlockSize)
		blockData := c.dataStore[c.blockIndex(block)]
		storeData(blockData, offset, size, data)
		block.IsDirty = true

		return AccessResult{
			Hit:     true,
			Latency: c.config.HitLatency,
		}
	}

	c.stats.Misses++
	return c.handleMiss(addr, size, true, data)
}

// handleMiss handles a cache miss by fetching from backing store.
func (c *Cache) handleMiss(addr uint64, size int, isWrite bool, writeData uint64) AccessResult {
	result := AccessResult{
		Hit:     false,
		Latency: c.config.MissLatency,
	}

	blockAddr := c.blockAddr(addr)

	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return result
	}

	victimData := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		result.Evicted = true
		result.EvictedAddr = victim.Tag // Tag stores block-aligned address

		if victim.IsDirty && c.backing != nil {
			c.stats.Writebacks++
			c.backing.Write(victim.Tag, victimData)
		}
	}

	if c.backing != nil {
		copy(victimData, c.backing.Read(blockAddr, c.config.BlockSize))
	} else {
		for i := range victimData {
			victimData[i] = 0
		}
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false

	offset := addr % uint64(c.config.BlockSize)
	if isWrite {
		storeData(victimData, offset, size, writeData)
		victim.IsDirty = true
	} else {
		result.Data = extractData(victimData, offset, size)
	}

	c.fill(victim)

	return result
}

// Invalidate marks a cache line as invalid and makes it the next victim of
// its set.
func (c *Cache) Invalidate(addr uint64) {
	block := c.directory.Lookup(0, c.blockAddr(addr))
	if block == nil || !block.IsValid {
		return
	}

	block.IsValid = false
	block.IsDirty = false

	if c.ipv != nil {
		c.ipv.Demote(c.set(block), block)
	}
}

// Flush writes back all dirty blocks and invalidates them.
func (c *Cache) Flush() {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if block.IsValid && block.IsDirty && c.backing != nil {
				c.backing.Write(block.Tag, c.dataStore[c.blockIndex(block)])
				c.stats.Writebacks++
			}
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all cache lines without writeback.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.stats = Statistics{}
}

// extractData extracts a little-endian value of the given size.
func extractData(data []byte, offset uint64, size int) uint64 {
	if data == nil || int(offset)+size > len(data) {
		return 0
	}

	var result uint64
	for i := 0; i < size; i++ {
		result |= uint64(data[int(offset)+i]) << (i * 8)
	}
	return result
}

// storeData stores a little-endian value of the given size.
func storeData(data []byte, offset uint64, size int, value uint64) {
	if data == nil || int(offset)+size > len(data) {
		return
	}

	for i := 0; i < size; i++ {
		data[int(offset)+i] = byte(value >> (i * 8))
	}
}
