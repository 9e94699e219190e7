package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/l1jgo/director/internal/config"
	"github.com/l1jgo/director/internal/core/event"
	coresys "github.com/l1jgo/director/internal/core/system"
	"github.com/l1jgo/director/internal/data"
	"github.com/l1jgo/director/internal/director"
	"github.com/l1jgo/director/internal/level"
	"github.com/l1jgo/director/internal/metrics"
	gonet "github.com/l1jgo/director/internal/net"
	"github.com/l1jgo/director/internal/persist"
	"github.com/l1jgo/director/internal/scene"
	"github.com/l1jgo/director/internal/scripting"
	"github.com/l1jgo/director/internal/system"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "run one level headless until the encounter completes",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "frames",
				Usage: "stop after this many frames (0 = until complete)",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "random seed (0 = time based)",
			},
		},
		Action: runAction,
	}
}

// logFader stands in for the screen shader: brightness steps go to the log.
type logFader struct {
	log *zap.Logger
}

func (f logFader) SetFloatParam(name string, value float64) {
	f.log.Debug("screen param", zap.String("param", name), zap.Float64("value", value))
}

func runAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("load config: %v", err), 1)
	}
	if c.IsSet("frames") {
		cfg.Loop.MaxFrames = c.Int("frames")
	}
	if c.IsSet("seed") {
		cfg.Loop.Seed = c.Int64("seed")
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return cli.Exit(fmt.Sprintf("init logger: %v", err), 1)
	}
	defer log.Sync()

	printBanner(cfg.Game.Name, cfg.Game.LevelID)

	// ── Data ──
	printSection("Data")
	table, err := data.LoadWaveTable(cfg.Data.WaveTable, cfg.Level.Area)
	if err != nil {
		return cli.Exit(fmt.Sprintf("wave table: %v", err), 1)
	}
	printStat("archetypes", table.Count())
	printStat("sections", table.SectionCount())
	for s := 1; s <= cfg.Level.Sections; s++ {
		if !table.HasSection(s) {
			log.Warn("section missing from wave table, using weakest archetype",
				zap.Int("section", s), zap.String("archetype", table.Weakest().ID))
		}
	}
	boundaryW := cfg.Level.BoundaryW
	if w := table.Width(); w > 0 {
		boundaryW = w
	}
	printStat("boundary width", boundaryW)

	seed := cfg.Loop.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	printStat("seed", seed)

	engine, err := scripting.NewEngine(cfg.Data.ScriptsDir, rng, log)
	if err != nil {
		return cli.Exit(fmt.Sprintf("scripts: %v", err), 1)
	}
	defer engine.Close()
	printOK("wave scripts loaded")
	fmt.Println()

	// ── Services ──
	printSection("Services")
	ctx := context.Background()

	var (
		repo   *persist.WaveRepo
		writer persist.WaveWriter
	)
	if cfg.Database.Enabled {
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return cli.Exit(fmt.Sprintf("database: %v", err), 1)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
			return cli.Exit(fmt.Sprintf("migrations: %v", err), 1)
		}
		repo = persist.NewWaveRepo(db)
		writer = repo
		printOK("wave journal on postgres")
	} else {
		printOK("wave journal disabled")
	}
	journal := persist.NewJournal(writer, log)

	var (
		exporter   *metrics.Exporter
		metricsSrv *http.Server
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		exporter, err = metrics.NewExporter(cfg.Metrics.Namespace, reg)
		if err != nil {
			return cli.Exit(fmt.Sprintf("metrics: %v", err), 1)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.Metrics.BindAddress, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server stopped", zap.Error(err))
			}
		}()
		printStat("metrics", cfg.Metrics.BindAddress)
	}

	var feed *gonet.FeedServer
	if cfg.Feed.Enabled {
		feed, err = gonet.NewFeedServer(cfg.Feed.BindAddress, cfg.Feed.OutQueueSize, log)
		if err != nil {
			return cli.Exit(fmt.Sprintf("feed: %v", err), 1)
		}
		go feed.Serve()
		printStat("spectator feed", cfg.Feed.BindAddress)
	}
	fmt.Println()

	// ── Level ──
	bus := event.NewBus()
	sc := scene.New(bus)
	player := sc.NewNode("Player")
	player.Position = scene.Vec2{X: 16, Y: cfg.Level.BoundaryH - 32}
	player.ZIndex = 3
	sc.AddChild(sc.Root(), player)

	st := level.NewState(logFader{log: log})
	st.Boundary = scene.Rect2{W: boundaryW, H: cfg.Level.BoundaryH}

	opts := director.Options{
		LevelID:      cfg.Game.LevelID,
		Sections:     cfg.Level.Sections,
		WaveCooldown: cfg.Director.WaveCooldown,
		PreSpawnMin:  cfg.Director.PreSpawnMin,
		PreSpawnMax:  cfg.Director.PreSpawnMax,
		HalfWidth:    cfg.Director.HalfWidth,
		CameraOffset: cfg.Director.CameraOffset,
		BossInset:    cfg.Director.BossInset,
		TerminalZ:    cfg.Director.TerminalZ,
	}
	orch := system.NewOrchestrator(system.OrchestratorDeps{
		Scene:    sc,
		Level:    st,
		Table:    table,
		Rand:     rng,
		Log:      log,
		Director: opts,
		Clouds: system.CloudOptions{
			Max:            cfg.Clouds.Max,
			RefillInterval: cfg.Clouds.RefillInterval,
		},
		TimeScale: cfg.Level.TimeScale,
		Counts:    engine,
		Journal:   journal,
		Metrics:   exporter,
	})

	sim := system.NewSimSystem(sc, st, table, orch, cfg.Sim, cfg.Level.ViewWidth, cfg.Level.TimeScale)
	journalSys := system.NewJournalSystem(journal, log, cfg.Database.FlushInterval, cfg.Database.FlushTimeout)

	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(orch)
	runner.Register(sim)
	if feed != nil {
		runner.Register(system.NewFeedSystem(orch, feed, cfg.Feed.EveryFrames, log))
	}
	runner.Register(journalSys)
	runner.Register(system.NewCleanupSystem(sc))

	// ── Loop ──
	printReady(fmt.Sprintf("level %s running (tick %s)", cfg.Game.LevelID, cfg.Loop.TickRate))
	fmt.Println()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	reason := "complete"
loop:
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Loop.TickRate)
			if orch.Complete() {
				break loop
			}
			if cfg.Loop.MaxFrames > 0 && runner.Frame() >= uint64(cfg.Loop.MaxFrames) {
				reason = "frame limit"
				break loop
			}
		case sig := <-sigCh:
			log.Info("signal received, shutting down", zap.String("signal", sig.String()))
			reason = "signal"
			break loop
		}
	}

	// ── Shutdown ──
	orch.Shutdown()
	journalSys.Flush()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if feed != nil {
		if err := feed.Shutdown(shutdownCtx); err != nil {
			log.Warn("feed shutdown", zap.Error(err))
		}
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics shutdown", zap.Error(err))
		}
	}

	printSection("Summary")
	printStat("stopped", reason)
	printStat("frames", runner.Frame())
	printStat("game time", fmt.Sprintf("%.1fs", orch.Elapsed()))
	printStat("defeated", sim.Defeated())
	printStat("gate open", orch.GateOpen())
	if repo != nil {
		n, err := repo.CountWaves(shutdownCtx, cfg.Game.LevelID)
		if err != nil {
			log.Warn("count waves", zap.Error(err))
		} else {
			printStat("waves journaled", n)
		}
	} else {
		printStat("waves recorded", journal.Dropped())
	}
	fmt.Println()
	return nil
}
