package physical

import (
	"fmt"
	"strings"
)

// Operator is a physical plan node consumed by the execution engine. The
// chosen join strategy is attached here and never mutated afterwards.
type Operator interface {
	Children() []Operator
	OperatorType() string
	String() string
}

// TableScanOp reads a base relation.
type TableScanOp struct {
	Relation string
}

func (op *TableScanOp) Children() []Operator {
	return nil
}

func (op *TableScanOp) OperatorType() string {
	return "TableScan"
}

func (op *TableScanOp) String() string {
	return fmt.Sprintf("TableScan(%s)", op.Relation)
}

// BroadcastHashJoinOp joins its inputs by replicating the broadcast side
// to all workers and hash-joining against it.
type BroadcastHashJoinOp struct {
	Left          Operator
	Right         Operator
	Condition     string
	BroadcastSide BuildSide
}

func (op *BroadcastHashJoinOp) Children() []Operator {
	return []Operator{op.Left, op.Right}
}

func (op *BroadcastHashJoinOp) OperatorType() string {
	return "BroadcastHashJoin"
}

func (op *BroadcastHashJoinOp) String() string {
	return fmt.Sprintf("BroadcastHashJoin(broadcast=%s, on=%s)", op.BroadcastSide, op.Condition)
}

// ShuffledHashJoinOp joins its inputs by partitioning both sides on the
// join key with the same partitioner.
type ShuffledHashJoinOp struct {
	Left        Operator
	Right       Operator
	Condition   string
	Partitioner *Partitioner
}

func (op *ShuffledHashJoinOp) Children() []Operator {
	return []Operator{op.Left, op.Right}
}

func (op *ShuffledHashJoinOp) OperatorType() string {
	return "ShuffledHashJoin"
}

func (op *ShuffledHashJoinOp) String() string {
	return fmt.Sprintf("ShuffledHashJoin(partitions=%d, on=%s)",
		op.Partitioner.NumPartitions(), op.Condition)
}

// FilterOp applies an opaque predicate to its child's output.
type FilterOp struct {
	Child     Operator
	Predicate string
}

func (op *FilterOp) Children() []Operator {
	return []Operator{op.Child}
}

func (op *FilterOp) OperatorType() string {
	return "Filter"
}

func (op *FilterOp) String() string {
	return fmt.Sprintf("Filter(%s)", op.Predicate)
}

// ProjectOp narrows its child's output to the named fields.
type ProjectOp struct {
	Child  Operator
	Fields []string
}

func (op *ProjectOp) Children() []Operator {
	return []Operator{op.Child}
}

func (op *ProjectOp) OperatorType() string {
	return "Project"
}

func (op *ProjectOp) String() string {
	return fmt.Sprintf("Project([%s])", strings.Join(op.Fields, ", "))
}

// Explain renders the operator tree as an indented listing.
func Explain(op Operator) string {
	var sb strings.Builder
	explainInto(&sb, op, 0)
	return sb.String()
}

func explainInto(sb *strings.Builder, op Operator, indent int) {
	if op == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(op.String())
	sb.WriteString("\n")
	for _, child := range op.Children() {
		explainInto(sb, child, indent+1)
	}
}
