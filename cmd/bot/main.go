package main

import (
	"context"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"TransferCast/internal/config"
	"TransferCast/internal/ledger"
	"TransferCast/internal/model"
	"TransferCast/internal/notifier"
	"TransferCast/internal/persona"
	"TransferCast/internal/poster"
	"TransferCast/internal/recorder"
	"TransferCast/internal/render"
	"TransferCast/internal/scheduler"
	"TransferCast/internal/window"

	"github.com/shopspring/decimal"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TransferCast starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	loc, _ := cfg.Location()
	openAt, _ := model.ParseTimeOfDay(cfg.Window.OpenAt)
	closeAt, _ := model.ParseTimeOfDay(cfg.Window.CloseAt)
	resume, _ := config.ParseCron(cfg.Schedule.ResumeCron)
	rollover, _ := config.ParseCron(cfg.Schedule.RolloverCron)

	// One random source per component; the loop is single-goroutine.
	seed := uint64(time.Now().UnixNano())
	newRand := func(stream uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, stream)) }

	// Init personas
	personas := persona.NewPicker(persona.LoadFile(cfg.Post.TeamsFile), newRand(1))
	if personas.Len() == 0 {
		log.Printf("[WARN] no personas loaded from %s, posts will be skipped", cfg.Post.TeamsFile)
	}

	// Init ledger source
	fetcher := ledger.NewTronscanFetcher(cfg.Ledger.Endpoint, cfg.Ledger.ContractAddress,
		cfg.Ledger.Limit, cfg.Ledger.Timeout, cfg.Proxy)
	log.Printf("[INFO] ledger source: %s", fetcher.Name())
	source := ledger.NewSource(fetcher, cfg.Ledger.MinAmount, cfg.Ledger.MaxAmount, newRand(2))

	// Init renderer
	synth := render.NewSynthesizer(cfg.Render.Width, cfg.Render.Height, render.LoadFaces(cfg.Render.FontPath), newRand(3))

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	p := &poster.Poster{
		Personas:    personas,
		Source:      source,
		Renderer:    synth,
		Sender:      tn,
		Recorder:    rec,
		ExplorerURL: cfg.Post.ExplorerURL,
		ShareRate:   decimal.NewFromFloat(cfg.Post.ShareRate),
	}

	planner := window.NewPlanner(window.Settings{
		OpenAt:      openAt,
		OpenJitter:  cfg.Window.OpenJitter,
		CloseAt:     closeAt,
		CloseJitter: cfg.Window.CloseJitter,
	}, loc, newRand(4))

	sched := scheduler.NewScheduler(scheduler.Options{
		Location: loc,
		Resume:   resume,
		Rollover: rollover,
		MinDelay: cfg.Window.MinDelay,
		MaxDelay: cfg.Window.MaxDelay,
	}, planner, p, rec, scheduler.RealClock{}, newRand(5))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional: post once before the loop starts
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, posting once now")
		p.PostOnce(ctx)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Run(ctx)
	}()

	log.Println("[INFO] TransferCast is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	<-done
	log.Println("[INFO] TransferCast stopped")
}
