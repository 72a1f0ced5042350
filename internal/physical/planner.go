package physical

import (
	"fmt"
	"log/slog"

	"github.com/gauravw/herondb/internal/config"
	"github.com/gauravw/herondb/internal/plan"
)

// Planner turns a logical plan into a physical operator tree, choosing a
// join strategy for every join node. The broadcast threshold is read from
// the settings exactly once per planning pass, so a concurrent threshold
// update never produces a plan built from two different values.
type Planner struct {
	estimator     *plan.SizeEstimator
	settings      *config.Settings
	logger        *slog.Logger
	numPartitions int
}

// NewPlanner creates a physical planner. A partition count below one falls
// back to DefaultShufflePartitions.
func NewPlanner(estimator *plan.SizeEstimator, settings *config.Settings, numPartitions int, logger *slog.Logger) *Planner {
	if numPartitions < 1 {
		numPartitions = DefaultShufflePartitions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		estimator:     estimator,
		settings:      settings,
		logger:        logger,
		numPartitions: numPartitions,
	}
}

// Plan converts the logical plan rooted at node into a physical plan.
func (p *Planner) Plan(node plan.Node) (Operator, error) {
	snapshot := p.settings.Snapshot()
	threshold := snapshot.Int64(config.BroadcastThresholdKey)
	return p.convert(node, threshold)
}

func (p *Planner) convert(node plan.Node, threshold int64) (Operator, error) {
	switch n := node.(type) {
	case *plan.ScanNode:
		return &TableScanOp{Relation: n.Relation}, nil

	case *plan.JoinNode:
		leftEstimate, err := p.estimator.Estimate(n.Left())
		if err != nil {
			return nil, fmt.Errorf("failed to estimate join left input: %w", err)
		}
		rightEstimate, err := p.estimator.Estimate(n.Right())
		if err != nil {
			return nil, fmt.Errorf("failed to estimate join right input: %w", err)
		}

		left, err := p.convert(n.Left(), threshold)
		if err != nil {
			return nil, err
		}
		right, err := p.convert(n.Right(), threshold)
		if err != nil {
			return nil, err
		}

		choice := SelectJoinStrategy(leftEstimate, rightEstimate, threshold)
		p.logger.Debug("selected join strategy",
			"strategy", choice.Strategy.String(),
			"broadcast_side", choice.BroadcastSide.String(),
			"left_bytes", leftEstimate.SizeInBytes,
			"right_bytes", rightEstimate.SizeInBytes,
			"threshold_bytes", threshold)

		if choice.Strategy == BroadcastHashJoin {
			return &BroadcastHashJoinOp{
				Left:          left,
				Right:         right,
				Condition:     n.Condition,
				BroadcastSide: choice.BroadcastSide,
			}, nil
		}
		return &ShuffledHashJoinOp{
			Left:        left,
			Right:       right,
			Condition:   n.Condition,
			Partitioner: NewPartitioner(p.numPartitions),
		}, nil

	case *plan.FilterNode:
		child, err := p.convert(n.Child(), threshold)
		if err != nil {
			return nil, err
		}
		return &FilterOp{Child: child, Predicate: n.Predicate}, nil

	case *plan.ProjectNode:
		child, err := p.convert(n.Child(), threshold)
		if err != nil {
			return nil, err
		}
		return &ProjectOp{Child: child, Fields: n.Fields}, nil

	default:
		return nil, fmt.Errorf("unknown plan node type %s", node.NodeType())
	}
}
