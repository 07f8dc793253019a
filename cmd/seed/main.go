// seed writes synthetic traces for a tracking so dashboards have data in development.
// It creates the tracking when it does not exist and, when JWT_PRIVATE_KEY is set, prints an access
// token for the tracking's workspace. Refuses to run when APP_ENV=production.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tracking-analytics/backend/internal/config"
	"tracking-analytics/backend/internal/db"
	"tracking-analytics/backend/internal/security"
	"tracking-analytics/backend/internal/seed"
	"tracking-analytics/backend/internal/tracking/domain"
	"tracking-analytics/backend/internal/tracking/repository"
)

const (
	devTrackingID  = "dev-tracking-001"
	devWorkspaceID = "dev-workspace-001"
)

func main() {
	trackingID := flag.String("tracking", devTrackingID, "tracking id to seed")
	workspaceID := flag.String("workspace", devWorkspaceID, "workspace owning the tracking (empty for admin-wide)")
	name := flag.String("name", "Dev site", "name used when the tracking is created")
	start := flag.String("start", "", "first day to seed, YYYY-MM-DD (default: -days before today)")
	days := flag.Int("days", 30, "number of days to seed")
	minCount := flag.Int("min", 20, "minimum traces per day")
	maxCount := flag.Int("max", 120, "maximum traces per day")
	botRatio := flag.Float64("bot-ratio", 0.15, "fraction of traces flagged as bots")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("seed: refusing to run with APP_ENV=production")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()
	repo := repository.NewPostgresRepository(conn)

	tracking, err := repo.GetTracking(ctx, *trackingID)
	if err != nil {
		log.Fatalf("seed: get tracking: %v", err)
	}
	if tracking == nil {
		tracking = &domain.Tracking{ID: *trackingID, WorkspaceID: *workspaceID, Name: *name, CreatedAt: time.Now().UTC()}
		if err := repo.CreateTracking(ctx, tracking); err != nil {
			log.Fatalf("seed: create tracking: %v", err)
		}
		log.Printf("seed: created tracking %s in workspace %q", tracking.ID, tracking.WorkspaceID)
	}

	loc := cfg.Location()
	startDate := time.Now().In(loc).AddDate(0, 0, -(*days - 1))
	if *start != "" {
		startDate, err = time.ParseInLocation(time.DateOnly, *start, loc)
		if err != nil {
			log.Fatalf("seed: -start: %v", err)
		}
	}

	seeder := seed.New(repo, nil)
	progress := 0
	n, err := seeder.Seed(ctx, seed.Params{
		TrackingID:  tracking.ID,
		WorkspaceID: tracking.WorkspaceID,
		StartDate:   startDate,
		Days:        *days,
		CountRange:  seed.CountRange{Min: *minCount, Max: *maxCount},
		BotRatio:    *botRatio,
	}, func(*domain.Trace) {
		progress++
		if progress%500 == 0 {
			log.Printf("seed: %d traces written", progress)
		}
	})
	if err != nil {
		log.Fatalf("seed: stopped after %d traces: %v", n, err)
	}
	log.Printf("seed: wrote %d traces for %s from %s over %d days", n, tracking.ID, startDate.Format(time.DateOnly), *days)

	printToken(cfg, tracking)
}

// printToken prints a workspace access token (or an admin token for admin-wide trackings) for local testing.
func printToken(cfg *config.Config, tracking *domain.Tracking) {
	if cfg.JWTPrivateKey == "" {
		return
	}
	signer, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		log.Printf("seed: jwt keys: %v", err)
		return
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	token, _, exp, err := tokens.IssueAccess(security.Identity{
		UserID:      "dev-user",
		WorkspaceID: tracking.WorkspaceID,
		Admin:       tracking.AdminWide(),
	})
	if err != nil {
		log.Printf("seed: issue token: %v", err)
		return
	}
	log.Printf("seed: access token (expires %s):\n%s", exp.Format(time.RFC3339), token)
}
