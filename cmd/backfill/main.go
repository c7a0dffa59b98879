package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/spf13/viper"

	"storewatch/internal/logger"
	"storewatch/internal/repository"
	"storewatch/internal/repository/db"
	"storewatch/internal/service"
)

// backfill loads historical CSV data into the database:
//
//	backfill -stores stores.csv -hours business_hours.csv -status store_status.csv
//
// Any subset of the three flags may be given; loads run in the order
// stores, hours, statuses so referenced stores exist first.
func main() {
	var (
		storesPath = flag.String("stores", "", "path to stores CSV (store_id, timezone_str)")
		hoursPath  = flag.String("hours", "", "path to business hours CSV (store_id, day, start_time_local, end_time_local)")
		statusPath = flag.String("status", "", "path to store status CSV (store_id, status, timestamp_utc)")
	)
	flag.Parse()

	log := logger.New(logger.InfoLevel)

	if *storesPath == "" && *hoursPath == "" && *statusPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		dbPath = "storewatch.db"
	}
	conn, err := db.Init(dbPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() { _ = conn.Close() }()

	repos := repository.NewRepository(conn)
	ingest := service.NewIngestService(repos, nil, log)
	ctx := context.Background()

	loadFile(ctx, log, "stores", *storesPath, ingest.LoadStores)
	loadFile(ctx, log, "business_hours", *hoursPath, ingest.LoadBusinessHours)
	loadFile(ctx, log, "store_status", *statusPath, ingest.LoadStatuses)
}

// loadFile opens the CSV and runs the loader; a loader failure aborts
// the whole backfill since later loads may depend on earlier ones.
func loadFile(ctx context.Context, log *logger.Logger, name, path string, fn func(context.Context, io.Reader) (int, error)) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		log.Fatalw("open csv failed", "file", name, "path", path, "err", err)
	}
	defer func() { _ = f.Close() }()

	count, err := fn(ctx, f)
	if err != nil {
		log.Fatalw("backfill failed", "file", name, "rows_loaded", count, "err", err)
	}
	log.Infow("backfill completed", "file", name, "rows_loaded", count)
}
