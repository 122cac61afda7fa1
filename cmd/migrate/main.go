package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/dirportal/internal/config"
	"github.com/dropDatabas3/dirportal/internal/store/adapters/pg"
	migrations "github.com/dropDatabas3/dirportal/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", os.Getenv("DIRPORTAL_CONFIG"), "Path to YAML config")
		timeout    = flag.Duration("timeout", 2*time.Minute, "Overall timeout")
	)
	flag.Parse()

	// Positional args: [action]
	action := "up"
	if args := flag.Args(); len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.Store.Driver != "postgres" {
		log.Fatalf("store.driver=%q: migrations only apply to postgres", cfg.Store.Driver)
	}

	m := pg.NewMigrator(migrations.FS, migrations.Dir)

	switch action {
	case "list":
		migs, err := m.ParseMigrations()
		if err != nil {
			log.Fatalf("parse migrations: %v", err)
		}
		for _, mig := range migs {
			fmt.Printf("%04d_%s\n", mig.Version, mig.Name)
		}
		return
	case "up":
	default:
		log.Fatalf("unknown action %q (use: up | list)", action)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Store.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	res, err := m.Run(ctx, pool)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("Applied %d migration(s), skipped %d, in %s.", len(res.Applied), len(res.Skipped), res.Duration)

	if err := pg.New(pool, pg.Options{UsernameClaimURI: cfg.Claims.UsernameURI}).EnsurePrimaryDomain(ctx, cfg.Store.PrimaryDomain); err != nil {
		log.Fatalf("primary domain: %v", err)
	}
	log.Printf("Primary domain %q ensured.", cfg.Store.PrimaryDomain)
}
