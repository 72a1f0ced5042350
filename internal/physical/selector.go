package physical

import "github.com/gauravw/herondb/internal/stats"

// JoinStrategy is the physical join operator family chosen for a join.
type JoinStrategy int

const (
	// BroadcastHashJoin replicates the build side to all workers, avoiding
	// a shuffle of the larger relation.
	BroadcastHashJoin JoinStrategy = iota
	// ShuffledHashJoin partitions both sides by join key across workers.
	ShuffledHashJoin
)

func (s JoinStrategy) String() string {
	switch s {
	case BroadcastHashJoin:
		return "BroadcastHashJoin"
	case ShuffledHashJoin:
		return "ShuffledHashJoin"
	default:
		return "Unknown"
	}
}

// BuildSide names which input of a broadcast join is replicated.
type BuildSide int

const (
	BuildNone BuildSide = iota
	BuildLeft
	BuildRight
)

func (b BuildSide) String() string {
	switch b {
	case BuildLeft:
		return "left"
	case BuildRight:
		return "right"
	default:
		return "none"
	}
}

// JoinChoice is the selector's decision for one join node.
type JoinChoice struct {
	Strategy      JoinStrategy
	BroadcastSide BuildSide
}

// SelectJoinStrategy decides the physical join strategy from the two input
// size estimates and the broadcast threshold. It is a pure, total function:
// any size and any threshold (including the negative "broadcast disabled"
// sentinel) yields a decision, never an error.
//
// A side qualifies for broadcast when its size is at or below the
// threshold. When both qualify, the smaller side is broadcast so the larger
// relation is never moved; exact ties broadcast the right side. When
// neither qualifies, or the threshold is negative, both sides are
// partitioned and shuffled by join key.
func SelectJoinStrategy(left, right stats.RelationStatistics, threshold int64) JoinChoice {
	if threshold < 0 {
		return JoinChoice{Strategy: ShuffledHashJoin, BroadcastSide: BuildNone}
	}

	limit := uint64(threshold)
	leftFits := left.SizeInBytes <= limit
	rightFits := right.SizeInBytes <= limit

	switch {
	case leftFits && rightFits:
		if left.SizeInBytes < right.SizeInBytes {
			return JoinChoice{Strategy: BroadcastHashJoin, BroadcastSide: BuildLeft}
		}
		return JoinChoice{Strategy: BroadcastHashJoin, BroadcastSide: BuildRight}
	case leftFits:
		return JoinChoice{Strategy: BroadcastHashJoin, BroadcastSide: BuildLeft}
	case rightFits:
		return JoinChoice{Strategy: BroadcastHashJoin, BroadcastSide: BuildRight}
	default:
		return JoinChoice{Strategy: ShuffledHashJoin, BroadcastSide: BuildNone}
	}
}
