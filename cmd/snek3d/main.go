// Command snek3d plays the snake on a torus, either in the terminal or
// headless under an autopilot.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"

	"github.com/brensch/snek3d/autopilot"
	"github.com/brensch/snek3d/game"
	"github.com/brensch/snek3d/inference"
	"github.com/brensch/snek3d/logging"
	"github.com/brensch/snek3d/rules"
	"github.com/brensch/snek3d/spectate"
	"github.com/brensch/snek3d/store"
	"github.com/brensch/snek3d/tui"
)

type config struct {
	settings rules.Settings
	seed     int64

	headless bool
	ticks    int
	interval time.Duration

	pilot        string
	modelPath    string
	onnxSessions int

	recordDir    string
	spectateAddr string
}

func main() {
	var cfg config
	flag.IntVar(&cfg.settings.Width, "width", getEnvIntOrDefault("SNEK_WIDTH", rules.DefaultSettings.Width), "Board width")
	flag.IntVar(&cfg.settings.Height, "height", getEnvIntOrDefault("SNEK_HEIGHT", rules.DefaultSettings.Height), "Board height")
	flag.IntVar(&cfg.settings.MinimumCandy, "candy", getEnvIntOrDefault("SNEK_CANDY", rules.DefaultSettings.MinimumCandy), "Candies kept on the board")
	flag.IntVar(&cfg.settings.CandySpawnChance, "candy-chance", getEnvIntOrDefault("SNEK_CANDY_CHANCE", rules.DefaultSettings.CandySpawnChance), "Percent chance per tick of an extra candy")
	flag.IntVar(&cfg.settings.Obstacles, "obstacles", getEnvIntOrDefault("SNEK_OBSTACLES", rules.DefaultSettings.Obstacles), "Obstacles placed each round")
	flag.Int64Var(&cfg.seed, "seed", int64(getEnvIntOrDefault("SNEK_SEED", 0)), "Random seed; 0 uses the clock, -1 derives one from the settings")
	flag.BoolVar(&cfg.headless, "headless", getEnvBoolOrDefault("SNEK_HEADLESS", false), "Run without the terminal UI")
	flag.IntVar(&cfg.ticks, "ticks", getEnvIntOrDefault("SNEK_TICKS", 1000), "Ticks to play headless; 0 runs until interrupted")
	flag.DurationVar(&cfg.interval, "interval", getEnvDurationOrDefault("SNEK_INTERVAL", tui.DefaultInterval), "Time per tick; headless runs default to 0 (as fast as possible)")
	flag.StringVar(&cfg.pilot, "autopilot", getEnvOrDefault("SNEK_AUTOPILOT", ""), "Steer with greedy or model; empty means keyboard (headless defaults to greedy)")
	flag.StringVar(&cfg.modelPath, "model", getEnvOrDefault("SNEK_MODEL", "models/snek3d.onnx"), "ONNX model for -autopilot model")
	flag.IntVar(&cfg.onnxSessions, "onnx-sessions", getEnvIntOrDefault("SNEK_ONNX_SESSIONS", 1), "ONNX Runtime sessions")
	flag.StringVar(&cfg.recordDir, "record", getEnvOrDefault("SNEK_RECORD_DIR", ""), "Directory to record ticks to as parquet")
	flag.StringVar(&cfg.spectateAddr, "spectate", getEnvOrDefault("SNEK_SPECTATE_ADDR", ""), "Address to serve the spectator view on, e.g. :8080")
	logFormat := flag.String("log-format", getEnvOrDefault("SNEK_LOG_FORMAT", "text"), "Log format: text, json or pretty")
	logLevel := flag.String("log-level", getEnvOrDefault("SNEK_LOG_LEVEL", "info"), "Log level")
	logFile := flag.String("log-file", getEnvOrDefault("SNEK_LOG_FILE", "snek3d.log"), "Log file used while the terminal UI runs")
	flag.Parse()

	explicit := os.Getenv("SNEK_INTERVAL") != ""
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "interval" {
			explicit = true
		}
	})
	cfg.interval = resolveInterval(cfg.headless, explicit, cfg.interval)

	// The terminal UI owns stdout.
	var logOut io.Writer = os.Stderr
	if !cfg.headless {
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		defer f.Close()
		logOut = f
		log.SetOutput(f)
	}
	logger, err := logging.New(logOut, *logFormat, *logLevel)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatalf("snek3d: %v", err)
	}
}

// resolveInterval drops the terminal pacing from headless runs unless an
// interval was asked for.
func resolveInterval(headless, explicit bool, d time.Duration) time.Duration {
	if headless && !explicit {
		return 0
	}
	return d
}

func newRNG(seed int64) *rand.Rand {
	switch seed {
	case -1:
		return nil
	case 0:
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func buildPolicy(cfg config, logger *slog.Logger) (autopilot.Policy, io.Closer, error) {
	switch cfg.pilot {
	case "":
		return nil, nil, nil
	case "greedy":
		return autopilot.Greedy{}, nil, nil
	case "model":
		pool, err := inference.NewOnnxPool(cfg.modelPath, cfg.onnxSessions, inference.OnnxClientConfig{
			Width:  cfg.settings.Width,
			Height: cfg.settings.Height,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("load model: %w", err)
		}
		return autopilot.Fallback{Primary: autopilot.Model{Predictor: pool}, Secondary: autopilot.Greedy{}}, pool, nil
	}
	return nil, nil, fmt.Errorf("unknown autopilot %q", cfg.pilot)
}

func run(ctx context.Context, cfg config, logger *slog.Logger) error {
	if cfg.headless && cfg.pilot == "" {
		cfg.pilot = "greedy"
	}
	policy, closer, err := buildPolicy(cfg, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	tracker := tui.NewTracker()
	sess, err := rules.NewSession(cfg.settings, newRNG(cfg.seed), tracker, logger)
	if err != nil {
		return err
	}

	var rec *store.Recorder
	recording := cfg.recordDir != ""
	if recording {
		source := "keyboard"
		if cfg.pilot != "" {
			source = cfg.pilot
		}
		rec, err = store.NewRecorder(cfg.recordDir, source)
		if err != nil {
			return err
		}
		logger.Info("recording", slog.String("game_id", rec.GameID()), slog.String("path", rec.OutPath()))
		defer func() {
			path, rows, err := rec.Finalize()
			if err != nil {
				logger.Error("finalize recording", slog.Any("error", err))
				return
			}
			if path == "" {
				return
			}
			logger.Info("recording written", slog.String("path", path), slog.Int("rows", rows))
			idx, err := store.OpenIndex(cfg.recordDir)
			if err != nil {
				logger.Error("open recordings index", slog.Any("error", err))
				return
			}
			defer idx.Close()
			if err := idx.Append(store.IndexEntry{GameID: rec.GameID(), Path: path, Rows: rows}); err != nil {
				logger.Error("index recording", slog.Any("error", err))
			}
		}()
	}

	var hub *spectate.Hub
	if cfg.spectateAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		hub = spectate.NewHub()
		srv := spectate.NewServer(hub, logger)
		srvCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := srv.ListenAndServe(srvCtx, cfg.spectateAddr); err != nil {
				logger.Error("spectate server stopped", slog.Any("error", err))
			}
		}()
		hub.Publish(spectate.NewFrame(rules.Outcome{}, sess.Snapshot()))
	}

	steer := func(snap *game.Snapshot) {
		if policy == nil {
			return
		}
		d, err := policy.Next(ctx, snap)
		if err != nil {
			logger.Warn("autopilot failed", slog.Int("turn", snap.Turn), slog.Any("error", err))
			return
		}
		sess.RequestDirection(d)
	}
	hook := func(out rules.Outcome, snap *game.Snapshot) {
		if recording {
			if err := rec.Record(out, snap); err != nil {
				logger.Error("record tick", slog.Any("error", err))
				recording = false
			}
		}
		if hub != nil {
			hub.Publish(spectate.NewFrame(out, snap))
		}
		steer(snap)
	}
	steer(sess.Snapshot())

	if !cfg.headless {
		p := tea.NewProgram(tui.New(sess, tracker, cfg.interval, hook), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}
	return runHeadless(ctx, sess, cfg, hook, logger)
}

func runHeadless(ctx context.Context, sess *rules.Session, cfg config, hook tui.StepHook, logger *slog.Logger) error {
	start := time.Now()
	for i := 0; cfg.ticks <= 0 || i < cfg.ticks; i++ {
		if ctx.Err() != nil {
			break
		}
		out := sess.Step()
		hook(out, sess.Snapshot())
		if cfg.interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.interval):
			}
		}
	}
	snap := sess.Snapshot()
	logger.Info("headless run finished",
		slog.Int("turns", snap.Turn),
		slog.Int("rounds", snap.Round),
		slog.Int("eaten", snap.Eaten),
		slog.Int("deaths", snap.Deaths),
		slog.Int("length", len(snap.Body)),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}
