package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/brgy-sanroque/tanod-patrol/backend/internal/config"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/domain"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/repository"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/seed"
	"github.com/brgy-sanroque/tanod-patrol/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operation (1: insert random tanods, 2: insert random patrol areas, 3: insert random schedules, 4: seed the demo barangay)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not dial, so ping to fail fast on a bad DSN
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to the database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation given")
	case 1:
		if n <= 0 {
			slog.Error("the number of tanods must be positive")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				tanod, err := utils.GenerateRandomTanod(cfg.Seed.Tanod.Password)
				if err != nil {
					slog.Error("failed to generate tanod", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(tanod); err != nil {
					slog.Error("failed to insert tanod", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("inserted tanods", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("the number of patrol areas must be positive")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				// scatter the areas around the poblacion
				lat := 14.6091 + (rand.Float64()-0.5)*0.02
				lng := 121.0223 + (rand.Float64()-0.5)*0.02
				area := utils.GenerateRandomPatrolArea(utils.GenerateRandomLegend(), lat, lng)
				if err := repo.CreatePatrolArea(area); err != nil {
					slog.Error("failed to insert patrol area", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("inserted patrol areas", slog.Int("count", n-cnt))
		}
	case 3:
		if n <= 0 {
			slog.Error("the number of schedules must be positive")
			return
		}

		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("failed to fetch users", slog.String("error", err.Error()))
			return
		}

		tanodIDs := make([]int64, 0, len(users))
		for _, user := range users {
			if user.Role == domain.RoleTanod && user.IsActive {
				tanodIDs = append(tanodIDs, user.ID)
			}
		}
		if len(tanodIDs) == 0 {
			slog.Error("no active tanods to assign, seed tanods first")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			s := utils.GenerateRandomSchedule(tanodIDs)
			if err := repo.CreateSchedule(s); err != nil {
				slog.Error("failed to insert schedule", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("inserted schedules", slog.Int("count", n-cnt))
	case 4:
		seed.SeedDemoData(repo, cfg.Seed.Tanod.Password, n)
	default:
		slog.Error("unknown operation")
	}
}
