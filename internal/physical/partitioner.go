package physical

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// DefaultShufflePartitions is the partition count used when a planner does
// not configure one.
const DefaultShufflePartitions = 200

// Partitioner assigns join-key bytes to shuffle partitions.
type Partitioner struct {
	numPartitions int
}

// NewPartitioner creates a partitioner over n partitions. Counts below one
// collapse to a single partition.
func NewPartitioner(n int) *Partitioner {
	if n < 1 {
		n = 1
	}
	return &Partitioner{numPartitions: n}
}

// NumPartitions returns the partition count.
func (p *Partitioner) NumPartitions() int {
	return p.numPartitions
}

// Partition returns the partition index for the given key bytes. Equal
// keys always land in the same partition.
func (p *Partitioner) Partition(key []byte) int {
	h := murmur3.New128()
	h.Write(key)
	sum := h.Sum(nil)
	return int(binary.LittleEndian.Uint32(sum) % uint32(p.numPartitions))
}
