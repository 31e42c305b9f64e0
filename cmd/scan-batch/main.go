package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dentascan/dentascan/internal/common"
	"github.com/dentascan/dentascan/internal/inference"
	"github.com/dentascan/dentascan/internal/pipeline"
	"github.com/dentascan/dentascan/internal/reconcile"
	"github.com/dentascan/dentascan/internal/record"
)

var allowedExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// scan-batch previews (and optionally commits) every image in a directory.
// Submissions for different images are independent, so they run concurrently
// with a bounded group; each one still polls sequentially for its own token.
func main() {
	var (
		dir       = flag.String("dir", "", "directory of dental images (required)")
		patientID = flag.String("patient", "", "patient identifier (required)")
		parallel  = flag.Int("parallel", 3, "max concurrent submissions")
		commit    = flag.Bool("commit", false, "register each analysis with the system of record")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if *dir == "" || *patientID == "" {
		logger.Error("usage", "cmd", "scan-batch --dir <dir> --patient <id> [--parallel n] [--commit]")
		os.Exit(2)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("read dir", "dir", *dir, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	engine := inference.NewClient(inference.Config{
		BaseURL:         cfg.Scan.BaseURL,
		SubmitTimeout:   cfg.Scan.SubmitTimeout,
		PollTimeout:     cfg.Scan.PollTimeout,
		PollInterval:    cfg.Scan.PollInterval,
		MaxPollAttempts: cfg.Scan.MaxPollAttempts,
	}, logger)
	records := record.NewClient(record.Config{
		BaseURL: cfg.Record.BaseURL,
		Timeout: cfg.Record.Timeout,
	}, logger)
	proc := pipeline.NewProcessor(logger, engine, reconcile.NewReconciler(logger), records, cfg.Scan.Threshold)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*parallel)

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := allowedExts[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		processed++
		name := entry.Name()
		g.Go(func() error {
			image, rerr := os.ReadFile(filepath.Join(*dir, name))
			if rerr != nil {
				logger.Error("read image", "file", name, "error", rerr)
				return rerr
			}
			analysis, perr := proc.Preview(gctx, *patientID, image, name)
			if perr != nil {
				logger.Error("preview failed", "file", name, "kind", inference.KindOf(perr), "error", perr)
				return perr
			}
			if *commit {
				if cerr := proc.Commit(gctx, analysis); cerr != nil {
					logger.Error("commit failed", "file", name, "analysis_id", analysis.ID, "error", cerr)
					return cerr
				}
			}
			logger.Info("batch item done",
				"file", name,
				"analysis_id", analysis.ID,
				"teeth", analysis.TotalTeethDetected,
				"caries", analysis.TotalCariesDetected,
				"synced", analysis.Synced,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("batch finished with failures", "error", err)
		os.Exit(1)
	}
	logger.Info("batch complete", "images", processed)
}
