package stats

// RelationStatistics is the size estimate attached to any plan node that
// represents or contains a base relation.
type RelationStatistics struct {
	SizeInBytes uint64
}
