package plan

import (
	"fmt"
	"strings"

	"github.com/gauravw/herondb/internal/stats"
)

// Node is a logical plan tree node. The node set is closed: statistics
// propagation switches over the concrete types below instead of relying on
// open-ended runtime inspection. Plans are immutable once built; each node
// carries a size estimate that is computed at most once per plan instance.
type Node interface {
	Children() []Node
	NodeType() string
	String() string

	statistics() (stats.RelationStatistics, bool)
	cacheStatistics(stats.RelationStatistics)
}

// baseNode holds the memoized size estimate shared by all node variants.
type baseNode struct {
	stat *stats.RelationStatistics
}

func (b *baseNode) statistics() (stats.RelationStatistics, bool) {
	if b.stat == nil {
		return stats.RelationStatistics{}, false
	}
	return *b.stat, true
}

func (b *baseNode) cacheStatistics(s stats.RelationStatistics) {
	if b.stat == nil {
		b.stat = &s
	}
}

// ScanNode is a base relation scan (leaf node).
type ScanNode struct {
	baseNode
	Relation string
}

func NewScanNode(relation string) *ScanNode {
	return &ScanNode{Relation: relation}
}

func (n *ScanNode) Children() []Node {
	return nil
}

func (n *ScanNode) NodeType() string {
	return "Scan"
}

func (n *ScanNode) String() string {
	return fmt.Sprintf("Scan(%s)", n.Relation)
}

// JoinNode joins exactly two children on an opaque condition. The
// condition is not interpreted here beyond being present.
type JoinNode struct {
	baseNode
	Condition string

	left  Node
	right Node
}

func NewJoinNode(left, right Node, condition string) *JoinNode {
	return &JoinNode{
		left:      left,
		right:     right,
		Condition: condition,
	}
}

func (n *JoinNode) Left() Node {
	return n.left
}

func (n *JoinNode) Right() Node {
	return n.right
}

func (n *JoinNode) Children() []Node {
	return []Node{n.left, n.right}
}

func (n *JoinNode) NodeType() string {
	return "Join"
}

func (n *JoinNode) String() string {
	return fmt.Sprintf("Join(%s, %s, on=%s)", n.left, n.right, n.Condition)
}

// FilterNode applies an opaque predicate to its child's output. It does
// not change the child's size estimate.
type FilterNode struct {
	baseNode
	Predicate string

	child Node
}

func NewFilterNode(child Node, predicate string) *FilterNode {
	return &FilterNode{
		child:     child,
		Predicate: predicate,
	}
}

func (n *FilterNode) Child() Node {
	return n.child
}

func (n *FilterNode) Children() []Node {
	return []Node{n.child}
}

func (n *FilterNode) NodeType() string {
	return "Filter"
}

func (n *FilterNode) String() string {
	return fmt.Sprintf("Filter(%s, %s)", n.child, n.Predicate)
}

// ProjectNode narrows its child's output to the named fields. It does not
// change the child's size estimate.
type ProjectNode struct {
	baseNode
	Fields []string

	child Node
}

func NewProjectNode(child Node, fields []string) *ProjectNode {
	return &ProjectNode{
		child:  child,
		Fields: fields,
	}
}

func (n *ProjectNode) Child() Node {
	return n.child
}

func (n *ProjectNode) Children() []Node {
	return []Node{n.child}
}

func (n *ProjectNode) NodeType() string {
	return "Project"
}

func (n *ProjectNode) String() string {
	return fmt.Sprintf("Project(%s, [%s])", n.child, strings.Join(n.Fields, ", "))
}
