package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utakatalp/league-predictor/internal/api"
	"github.com/utakatalp/league-predictor/internal/cache"
	"github.com/utakatalp/league-predictor/internal/config"
	"github.com/utakatalp/league-predictor/internal/league"
	"github.com/utakatalp/league-predictor/internal/predictor"
	"github.com/utakatalp/league-predictor/internal/store"
	"github.com/utakatalp/league-predictor/internal/telemetry"
)

const usage = `usage: predictor [command]

commands:
  serve                 run the HTTP API (default)
  migrate               create the database tables
  results               print the stored results
  stats                 print the team stats table
  predict               print predictions for every stored fixture
  top [gg|twoPlus|ng]   print the top fixtures for a metric
  schedule              generate a double round-robin from the teams in history`

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	cmd, args := "serve", []string(nil)
	if len(os.Args) > 1 {
		cmd, args = os.Args[1], os.Args[2:]
	}

	if err := run(cmd, args, cfg); err != nil {
		telemetry.Errorf("%s: %v", cmd, err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, cfg *config.Config) error {
	switch cmd {
	case "serve", "migrate", "results", "stats", "predict", "top", "schedule":
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	model, err := config.LoadModel(cfg.ModelConfigPath)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	if cmd == "migrate" {
		telemetry.Infof("tables ready")
		return nil
	}

	svc := predictor.NewService(st, model.Batch(cfg.PredictWorkers))
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			telemetry.Warnf("redis unavailable at %s, stats cache disabled: %v", cfg.RedisAddr, err)
		} else {
			svc.SetCache(cache.NewRedisStatsCache(redisClient, cfg.CacheTTL))
			telemetry.Infof("stats cache enabled (ttl %v)", cfg.CacheTTL)
		}
	}

	switch cmd {
	case "results":
		matches, err := st.Matches(ctx)
		if err != nil {
			return err
		}
		league.PrintResults(os.Stdout, matches)

	case "stats":
		stats, err := svc.Stats(ctx)
		if err != nil {
			return err
		}
		league.PrintStats(os.Stdout, stats.Sorted())

	case "predict":
		fixtures, preds, err := svc.PredictAll(ctx)
		if err != nil {
			return err
		}
		league.PrintPredictions(os.Stdout, fixtures, preds)

	case "top":
		metric := league.MetricGG
		if len(args) > 0 {
			m, ok := league.ParseMetric(args[0])
			if !ok {
				return fmt.Errorf("unknown metric %q", args[0])
			}
			metric = m
		}
		ranked, err := svc.Top(ctx, metric)
		if err != nil {
			return err
		}
		league.PrintRanked(os.Stdout, ranked)

	case "schedule":
		stats, err := svc.Stats(ctx)
		if err != nil {
			return err
		}
		fixtures := league.GenerateFixtures(stats.Teams())
		if err := st.InsertFixtures(ctx, fixtures); err != nil {
			return err
		}
		telemetry.Infof("scheduled %d fixtures for %d teams", len(fixtures), len(stats))

	case "serve":
		return serve(ctx, cfg, svc, st)
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, svc *predictor.Service, st *store.Store) error {
	srv := api.NewServer(fmt.Sprintf(":%d", cfg.HTTPPort), svc, st)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	telemetry.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
