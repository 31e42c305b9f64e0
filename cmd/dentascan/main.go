package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/dentascan/dentascan/internal/common"
	"github.com/dentascan/dentascan/internal/inference"
	"github.com/dentascan/dentascan/internal/insight"
	"github.com/dentascan/dentascan/internal/pipeline"
	"github.com/dentascan/dentascan/internal/reconcile"
	"github.com/dentascan/dentascan/internal/record"
)

func main() {
	var (
		imagePath  = flag.String("image", "", "path to the dental image (required)")
		patientID  = flag.String("patient", "", "patient identifier (required)")
		threshold  = flag.Float64("threshold", 0, "confidence threshold 0..1 (default from env)")
		commit     = flag.Bool("commit", false, "register the analysis with the system of record")
		withNote   = flag.Bool("insight", false, "generate a clinical summary note")
		debug      = flag.Bool("debug", false, "enable debug logging")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall deadline for the run")
	)
	flag.Parse()

	// .env is optional; real env always wins.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *imagePath == "" || *patientID == "" {
		logger.Error("usage", "cmd", "dentascan --image <file> --patient <id> [--commit] [--insight]")
		os.Exit(2)
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		logger.Error("read image", "path", *imagePath, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if *threshold <= 0 {
		*threshold = cfg.Scan.Threshold
	}

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
	proc := pipeline.NewProcessor(logger, engine, reconcile.NewReconciler(logger), records, *threshold)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	analysis, err := proc.Preview(ctx, *patientID, image, filepath.Base(*imagePath))
	if err != nil {
		logger.Error("preview failed", "kind", inference.KindOf(err), "error", err)
		os.Exit(1)
	}

	if *withNote {
		note, nerr := insight.NewClient(insight.Config{
			APIKey:  cfg.Insight.APIKey,
			Model:   cfg.Insight.Model,
			Timeout: cfg.Insight.Timeout,
		}, logger).Summarize(ctx, analysis)
		if nerr != nil {
			logger.Warn("insight unavailable", "error", nerr)
		} else {
			analysis.Notes = note
		}
	}

	if *commit {
		if err := proc.Commit(ctx, analysis); err != nil {
			logger.Error("commit failed; analysis kept locally", "analysis_id", analysis.ID, "error", err)
			os.Exit(1)
		}
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		logger.Error("encode analysis", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
