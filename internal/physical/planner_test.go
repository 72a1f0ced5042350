package physical

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravw/herondb/internal/catalog"
	"github.com/gauravw/herondb/internal/config"
	"github.com/gauravw/herondb/internal/file"
	"github.com/gauravw/herondb/internal/plan"
	"github.com/gauravw/herondb/internal/stats"
)

type testEnv struct {
	catalog  *catalog.Catalog
	stats    *stats.Manager
	settings *config.Settings
	planner  *Planner
}

func newTestEnv(t *testing.T, dbDir string) *testEnv {
	t.Helper()
	ds, err := file.NewDiskStore(dbDir)
	require.NoError(t, err)
	t.Cleanup(func() {
		ds.Close()
		os.RemoveAll(dbDir)
	})

	cat := catalog.NewCatalog(ds, nil)
	settings := config.NewSettings()
	statsMgr := stats.NewManager(cat, settings, nil)
	estimator := plan.NewSizeEstimator(statsMgr, nil, nil)

	return &testEnv{
		catalog:  cat,
		stats:    statsMgr,
		settings: settings,
		planner:  NewPlanner(estimator, settings, 8, nil),
	}
}

func (env *testEnv) createWithSize(t *testing.T, schemaName, name string, size int) {
	t.Helper()
	require.NoError(t, env.catalog.CreateRelation(schemaName, name, catalog.RelationOptions{}))
	require.NoError(t, env.catalog.Insert(schemaName+"."+name, "", make([]byte, size)))
}

func joinOf(left, right string) plan.Node {
	return plan.NewJoinNode(plan.NewScanNode(left), plan.NewScanNode(right), left+".id = "+right+".id")
}

func TestPlanner_UnanalyzedRelationsAreNeverBroadcast(t *testing.T) {
	env := newTestEnv(t, "testdata_planner_unanalyzed")
	env.createWithSize(t, "db1", "a", 10)
	env.createWithSize(t, "db1", "b", 10)

	op, err := env.planner.Plan(joinOf("db1.a", "db1.b"))
	require.NoError(t, err)

	join, ok := op.(*ShuffledHashJoinOp)
	require.True(t, ok, "expected shuffled join, got %s", op.OperatorType())
	assert.Equal(t, 8, join.Partitioner.NumPartitions())
}

func TestPlanner_AnalyzedSmallSideIsBroadcast(t *testing.T) {
	env := newTestEnv(t, "testdata_planner_analyzed")
	env.createWithSize(t, "db1", "big", 64*1024)
	env.createWithSize(t, "db1", "small", 128)
	env.settings.SetInt64(config.BroadcastThresholdKey, 1024)

	require.NoError(t, env.stats.Refresh("db1.big"))
	require.NoError(t, env.stats.Refresh("db1.small"))

	op, err := env.planner.Plan(joinOf("db1.big", "db1.small"))
	require.NoError(t, err)

	join, ok := op.(*BroadcastHashJoinOp)
	require.True(t, ok, "expected broadcast join, got %s", op.OperatorType())
	assert.Equal(t, BuildRight, join.BroadcastSide)

	left, ok := join.Left.(*TableScanOp)
	require.True(t, ok)
	assert.Equal(t, "db1.big", left.Relation)
}

func TestPlanner_ScopedThresholdDisable(t *testing.T) {
	env := newTestEnv(t, "testdata_planner_scoped")
	env.createWithSize(t, "db1", "a", 64)
	env.createWithSize(t, "db1", "b", 64)
	require.NoError(t, env.stats.Refresh("db1.a"))
	require.NoError(t, env.stats.Refresh("db1.b"))

	env.settings.WithInt64(config.BroadcastThresholdKey, -1, func() {
		op, err := env.planner.Plan(joinOf("db1.a", "db1.b"))
		require.NoError(t, err)
		assert.IsType(t, &ShuffledHashJoinOp{}, op)
	})

	// Prior threshold restored: small sides broadcast again.
	op, err := env.planner.Plan(joinOf("db1.a", "db1.b"))
	require.NoError(t, err)
	assert.IsType(t, &BroadcastHashJoinOp{}, op)
}

func TestPlanner_SingleSnapshotPerPass(t *testing.T) {
	env := newTestEnv(t, "testdata_planner_snapshot")
	for _, name := range []string{"a", "b", "c"} {
		env.createWithSize(t, "db1", name, 64)
		require.NoError(t, env.stats.Refresh("db1."+name))
	}

	// Every join in one pass must see the same threshold, so with all
	// sides analyzed and tiny the whole tree is either all-broadcast or
	// all-shuffled, never mixed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			env.settings.SetInt64(config.BroadcastThresholdKey, -1)
			env.settings.SetInt64(config.BroadcastThresholdKey, config.DefaultBroadcastThreshold)
		}
	}()

	for i := 0; i < 50; i++ {
		op, err := env.planner.Plan(plan.NewJoinNode(
			joinOf("db1.a", "db1.b"),
			plan.NewScanNode("db1.c"),
			"b.id = c.id",
		))
		require.NoError(t, err)

		kinds := collectJoinKinds(op)
		require.Len(t, kinds, 2)
		assert.Equal(t, kinds[0], kinds[1], "planning pass mixed join strategies")
	}
	<-done
}

func TestPlanner_PreservesFilterAndProject(t *testing.T) {
	env := newTestEnv(t, "testdata_planner_shape")
	env.createWithSize(t, "db1", "t", 64)

	op, err := env.planner.Plan(plan.NewProjectNode(
		plan.NewFilterNode(plan.NewScanNode("db1.t"), "id > 5"),
		[]string{"id"},
	))
	require.NoError(t, err)

	project, ok := op.(*ProjectOp)
	require.True(t, ok)
	filter, ok := project.Child.(*FilterOp)
	require.True(t, ok)
	assert.Equal(t, "id > 5", filter.Predicate)
	assert.IsType(t, &TableScanOp{}, filter.Child)
}

func collectJoinKinds(op Operator) []string {
	var kinds []string
	var walk func(Operator)
	walk = func(o Operator) {
		if o == nil {
			return
		}
		switch o.(type) {
		case *BroadcastHashJoinOp, *ShuffledHashJoinOp:
			kinds = append(kinds, o.OperatorType())
		}
		for _, child := range o.Children() {
			walk(child)
		}
	}
	walk(op)
	return kinds
}
