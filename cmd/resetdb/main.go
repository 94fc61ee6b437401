// resetdb empties the sales ledger (and optionally the catalog) so a demo
// database can start over.
// Usage: go run ./cmd/resetdb -yes [-products]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/config"
	"github.com/GymAurCode/in-ven-tory/internal/dto"
	"github.com/GymAurCode/in-ven-tory/internal/infra"
	"github.com/GymAurCode/in-ven-tory/internal/repository"
	"github.com/GymAurCode/in-ven-tory/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	products := flag.Bool("products", false, "also delete every product")
	yes := flag.Bool("yes", false, "confirm the deletion")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	ledger := repository.NewLedgerStore(db)
	logCounts(ctx, ledger, "before")

	if !*yes {
		log.Warn().Msg("dry run: pass -yes to delete")
		return
	}

	if err := ledger.Reset(ctx, *products); err != nil {
		log.Fatal().Err(err).Msg("reset failed")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable: stats cache not cleared")
	} else if rdb != nil {
		infra.NewViewCache[dto.SalesStatsResponse](rdb, cfg.StatsCacheTTL()).Delete(ctx, service.StatsCacheKey)
		_ = rdb.Close()
	}

	logCounts(ctx, ledger, "after")
}

func logCounts(ctx context.Context, ledger repository.LedgerStore, when string) {
	counts, err := ledger.Counts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("count failed")
	}
	evt := log.Info().Str("when", when)
	for table, n := range counts {
		evt = evt.Int64(table, n)
	}
	evt.Msg("row counts")
}
