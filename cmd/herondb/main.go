package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gauravw/herondb/internal/catalog"
	"github.com/gauravw/herondb/internal/config"
	"github.com/gauravw/herondb/internal/file"
	"github.com/gauravw/herondb/internal/logging"
	"github.com/gauravw/herondb/internal/physical"
	"github.com/gauravw/herondb/internal/plan"
	"github.com/gauravw/herondb/internal/stats"
)

const DefaultDBDir = "./herondb_data"

func main() {
	dbDir := os.Getenv("DB_DIR")
	if dbDir == "" {
		dbDir = DefaultDBDir
	}

	logger, closeLogger := logging.Setup(os.Getenv("SEQ_URL"), slog.LevelInfo)
	defer closeLogger()

	store, err := file.NewDiskStore(dbDir)
	if err != nil {
		logger.Error("failed to open database directory", "dir", dbDir, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	cat := catalog.NewCatalog(store, logger)
	session := config.NewSession(config.NewSettings())
	statsMgr := stats.NewManager(cat, session.Settings, logger)
	estimator := plan.NewSizeEstimator(statsMgr, nil, logger)
	planner := physical.NewPlanner(estimator, session.Settings, physical.DefaultShufflePartitions, logger)

	logger.Info("session started", "session_id", session.ID.String(), "db_dir", dbDir)

	if err := seedRelations(cat); err != nil {
		logger.Error("failed to seed relations", "error", err)
		os.Exit(1)
	}

	fmt.Println("-- before ANALYZE (defaults assume large, nothing is broadcast)")
	explain(planner, buildQuery(), logger)

	for _, rel := range []string{"demo.orders", "demo.customers"} {
		if err := statsMgr.Refresh(rel); err != nil {
			logger.Error("analyze failed", "relation", rel, "error", err)
			os.Exit(1)
		}
	}

	fmt.Println("-- after ANALYZE (small side is broadcast)")
	explain(planner, buildQuery(), logger)

	fmt.Println("-- broadcast disabled (threshold = -1)")
	session.Settings.WithInt64(config.BroadcastThresholdKey, -1, func() {
		explain(planner, buildQuery(), logger)
	})
}

func seedRelations(cat *catalog.Catalog) error {
	if err := cat.CreateRelation("demo", "orders", catalog.RelationOptions{Partitioned: true}); err != nil {
		return err
	}
	if err := cat.CreateRelation("demo", "customers", catalog.RelationOptions{}); err != nil {
		return err
	}

	for _, day := range []string{"2026-08-27", "2026-08-28", "2026-08-29"} {
		payload := make([]byte, 64*1024)
		if err := cat.Insert("demo.orders", day, payload); err != nil {
			return err
		}
	}
	return cat.Insert("demo.customers", "", make([]byte, 4*1024))
}

// buildQuery returns a fresh plan tree. Plans memoize their estimates, so
// each planning pass gets its own instance.
func buildQuery() plan.Node {
	return plan.NewProjectNode(
		plan.NewJoinNode(
			plan.NewScanNode("demo.orders"),
			plan.NewScanNode("demo.customers"),
			"orders.customer_id = customers.id",
		),
		[]string{"orders.id", "customers.name"},
	)
}

func explain(planner *physical.Planner, query plan.Node, logger *slog.Logger) {
	op, err := planner.Plan(query)
	if err != nil {
		logger.Error("planning failed", "error", err)
		os.Exit(1)
	}
	fmt.Print(physical.Explain(op))
}
