package plan

import (
	"fmt"
	"log/slog"
	"math"

	stack "github.com/golang-collections/collections/stack"

	"github.com/gauravw/herondb/internal/stats"
)

// SizeProvider supplies size estimates for base relations.
type SizeProvider interface {
	EstimateSize(qualifiedName string) (stats.RelationStatistics, error)
}

// CombineFunc derives a join node's size estimate from its children's
// estimates. It must be monotonic in both inputs. Strategy selection only
// consumes the two child estimates, so the exact formula is pluggable.
type CombineFunc func(left, right stats.RelationStatistics) stats.RelationStatistics

// CombineSum is the default combining rule: a saturating sum of both sides.
func CombineSum(left, right stats.RelationStatistics) stats.RelationStatistics {
	if left.SizeInBytes > math.MaxUint64-right.SizeInBytes {
		return stats.RelationStatistics{SizeInBytes: math.MaxUint64}
	}
	return stats.RelationStatistics{SizeInBytes: left.SizeInBytes + right.SizeInBytes}
}

// CombineMax takes the larger of the two sides.
func CombineMax(left, right stats.RelationStatistics) stats.RelationStatistics {
	if left.SizeInBytes >= right.SizeInBytes {
		return left
	}
	return right
}

// SizeEstimator annotates logical plan nodes with size estimates, bottom
// up. Each node is computed at most once per plan instance; re-querying
// returns the cached value even if catalog statistics change afterwards.
type SizeEstimator struct {
	provider SizeProvider
	combine  CombineFunc
	logger   *slog.Logger
}

// NewSizeEstimator creates an estimator over the given provider. A nil
// combine falls back to CombineSum.
func NewSizeEstimator(provider SizeProvider, combine CombineFunc, logger *slog.Logger) *SizeEstimator {
	if combine == nil {
		combine = CombineSum
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SizeEstimator{
		provider: provider,
		combine:  combine,
		logger:   logger,
	}
}

// frame tracks whether a node's children have already been pushed.
type frame struct {
	node     Node
	expanded bool
}

// Estimate returns the size estimate for node, computing and caching the
// estimates of the whole subtree in post-order.
func (e *SizeEstimator) Estimate(node Node) (stats.RelationStatistics, error) {
	if node == nil {
		return stats.RelationStatistics{}, fmt.Errorf("cannot estimate nil plan node")
	}
	if cached, ok := node.statistics(); ok {
		return cached, nil
	}

	pending := stack.New()
	pending.Push(&frame{node: node})

	for pending.Len() > 0 {
		f := pending.Pop().(*frame)
		if _, ok := f.node.statistics(); ok {
			continue
		}

		if !f.expanded {
			f.expanded = true
			pending.Push(f)
			for _, child := range f.node.Children() {
				pending.Push(&frame{node: child})
			}
			continue
		}

		computed, err := e.computeNode(f.node)
		if err != nil {
			return stats.RelationStatistics{}, err
		}
		f.node.cacheStatistics(computed)
	}

	result, ok := node.statistics()
	if !ok {
		return stats.RelationStatistics{}, fmt.Errorf("estimate missing for node %s", node.NodeType())
	}
	return result, nil
}

// computeNode derives a single node's estimate. All children are already
// cached when this runs.
func (e *SizeEstimator) computeNode(node Node) (stats.RelationStatistics, error) {
	switch n := node.(type) {
	case *ScanNode:
		estimate, err := e.provider.EstimateSize(n.Relation)
		if err != nil {
			return stats.RelationStatistics{}, fmt.Errorf("failed to estimate scan of %s: %w", n.Relation, err)
		}
		e.logger.Debug("estimated base relation", "relation", n.Relation, "size_bytes", estimate.SizeInBytes)
		return estimate, nil

	case *JoinNode:
		left, ok := n.Left().statistics()
		if !ok {
			return stats.RelationStatistics{}, fmt.Errorf("join left child has no estimate")
		}
		right, ok := n.Right().statistics()
		if !ok {
			return stats.RelationStatistics{}, fmt.Errorf("join right child has no estimate")
		}
		return e.combine(left, right), nil

	case *FilterNode:
		child, ok := n.Child().statistics()
		if !ok {
			return stats.RelationStatistics{}, fmt.Errorf("filter child has no estimate")
		}
		return child, nil

	case *ProjectNode:
		child, ok := n.Child().statistics()
		if !ok {
			return stats.RelationStatistics{}, fmt.Errorf("project child has no estimate")
		}
		return child, nil

	default:
		return stats.RelationStatistics{}, fmt.Errorf("unknown plan node type %s", node.NodeType())
	}
}
