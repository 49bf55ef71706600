package cache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// DefaultIPV16 is the insertion/promotion vector used for 16-way sets.
var DefaultIPV16 = []int{0, 0, 1, 0, 2, 0, 1, 2, 1, 0, 6, 1, 0, 0, 1, 11, 12}

// IPVVictimFinder implements LRU replacement driven by an
// insertion/promotion vector.
//
// Blocks of a set are kept in the set's LRUQueue, least recently used first.
// A recency position counts from the MRU end, so position 0 is the tail of
// the queue and position ways-1 is its head. A block hit at position i moves
// to position vector[i]; a newly filled block is placed at vector[ways].
type IPVVictimFinder struct {
	ways   int
	vector []int
}

// NewIPVVictimFinder creates a victim finder for sets of the given
// associativity. vector must have ways+1 entries in [0, ways). A nil vector
// selects DefaultIPV16 for 16-way sets and plain LRU otherwise.
func NewIPVVictimFinder(ways int, vector []int) (*IPVVictimFinder, error) {
	if ways <= 0 {
		return nil, fmt.Errorf("associativity must be > 0, got %d", ways)
	}

	if vector == nil {
		vector = make([]int, ways+1)
		if ways == len(DefaultIPV16)-1 {
			copy(vector, DefaultIPV16)
		}
	}

	if len(vector) != ways+1 {
		return nil, fmt.Errorf(
			"insertion vector needs %d entries for %d ways, got %d",
			ways+1, ways, len(vector))
	}

	for i, pos := range vector {
		if pos < 0 || pos >= ways {
			return nil, fmt.Errorf(
				"insertion vector entry %d is %d, must be in [0, %d)", i, pos, ways)
		}
	}

	return &IPVVictimFinder{
		ways:   ways,
		vector: append([]int(nil), vector...),
	}, nil
}

// Vector returns a copy of the insertion/promotion vector.
func (f *IPVVictimFinder) Vector() []int {
	return append([]int(nil), f.vector...)
}

// FindVictim returns the first invalid block, else the least recently used
// unlocked block.
func (f *IPVVictimFinder) FindVictim(set *akitacache.Set) *akitacache.Block {
	for _, block := range set.LRUQueue {
		if !block.IsValid && !block.IsLocked {
			return block
		}
	}

	for _, block := range set.LRUQueue {
		if !block.IsLocked {
			return block
		}
	}

	return set.LRUQueue[0]
}

// Position returns the recency position of block, 0 being MRU, or -1 if the
// block is not in the set.
func (f *IPVVictimFinder) Position(set *akitacache.Set, block *akitacache.Block) int {
	q := queueIndex(set, block)
	if q < 0 {
		return -1
	}
	return len(set.LRUQueue) - 1 - q
}

// Promote moves a block that was hit according to the vector.
func (f *IPVVictimFinder) Promote(set *akitacache.Set, block *akitacache.Block) {
	pos := f.Position(set, block)
	if pos < 0 {
		return
	}
	moveTo(set, block, f.vector[pos])
}

// Insert places a newly filled block at the insertion position.
func (f *IPVVictimFinder) Insert(set *akitacache.Set, block *akitacache.Block) {
	moveTo(set, block, f.vector[f.ways])
}

// Demote makes block the next victim of its set.
func (f *IPVVictimFinder) Demote(set *akitacache.Set, block *akitacache.Block) {
	moveTo(set, block, len(set.LRUQueue)-1)
}

func queueIndex(set *akitacache.Set, block *akitacache.Block) int {
	for i, b := range set.LRUQueue {
		if b == block {
			return i
		}
	}
	return -1
}

// moveTo shifts block to a recency position without reallocating the queue.
func moveTo(set *akitacache.Set, block *akitacache.Block, pos int) {
	queue := set.LRUQueue

	q := queueIndex(set, block)
	if q < 0 {
		return
	}

	target := len(queue) - 1 - pos
	switch {
	case q < target:
		copy(queue[q:target], queue[q+1:target+1])
	case q > target:
		copy(queue[target+1:q+1], queue[target:q])
	}
	queue[target] = block
}
