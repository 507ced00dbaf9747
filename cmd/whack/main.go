package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/whack/audio"
	"github.com/lixenwraith/whack/config"
	"github.com/lixenwraith/whack/core"
	"github.com/lixenwraith/whack/engine"
	"github.com/lixenwraith/whack/httpapi"
	"github.com/lixenwraith/whack/metrics"
	"github.com/lixenwraith/whack/round"
	"github.com/lixenwraith/whack/score"
	"github.com/lixenwraith/whack/storage"
	"github.com/lixenwraith/whack/ui"
)

var (
	configFlag = flag.String("config", "", "Path to a TOML config file")
	debugFlag  = flag.Bool("debug", false, "Write debug logs to the log directory")
	httpFlag   = flag.String("http", "", "Status server address, e.g. :8080 (disabled when empty)")
	storeFlag  = flag.String("store", "", "Leaderboard storage: memory, file, sqlite, redis")
)

func main() {
	// Panic recovery on the main goroutine, the terminal is restored by the crash handler
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "whack: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.Load(*configFlag)
	if err != nil {
		return err
	}
	applyFlags(&settings)

	log, logFile := setupLogging(settings.Log.Debug, settings.Log.Dir, settings.LogLevel())
	if logFile != nil {
		defer logFile.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, settings.Storage, log)
	if err != nil {
		log.Warn().Err(err).Msg("storage unavailable, high scores will not persist")
		store = storage.NewMemoryStore()
	}
	defer store.Close()
	scores := score.NewLeaderboard(store, settings.Round.MaxLeaderboardEntries, log)
	// Round-end saves run off the UI goroutine so a slow store never freezes the screen
	finalizer := score.NewAsyncFinalizer(scores)

	sound := audio.NewSoundManager(settings.Audio)
	if err := sound.Initialize(); err != nil {
		log.Warn().Err(err).Msg("audio initialization failed, continuing without sound")
	}
	defer sound.Cleanup()

	recorder := metrics.NewRecorder()

	loop := engine.NewLoop(64)
	defer loop.Close()

	view := ui.NewView(settings.Round.Rows, settings.Round.Cols, settings.Round.RoundSeconds)
	ctrl, err := round.NewController(settings.Round, round.Options{
		Scheduler:   loop,
		Listener:    view,
		Effects:     round.MultiEffects{sound, recorder},
		Leaderboard: finalizer,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.SetStyle(tcell.StyleDefault)
	screen.EnableMouse()
	screen.HideCursor()

	// Crashes in any goroutine started through core.Go restore the terminal first
	core.SetCrashHandler(screen.Fini)

	app := ui.NewApp(screen, loop, ctrl, view, scores, sound, log)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		defer recoverCrash()
		return app.Run(gctx)
	})

	if settings.HTTP.Addr != "" {
		srv := httpapi.New(loopStatus{loop: loop, ctrl: ctrl}, scores, recorder.Handler(), log)
		g.Go(func() error {
			defer recoverCrash()
			log.Info().Str("addr", settings.HTTP.Addr).Msg("status server listening")
			return srv.Serve(gctx, settings.HTTP.Addr)
		})
	}

	err = g.Wait()

	// The UI goroutine owned the controller and has exited, timers are dropped without a leaderboard write
	ctrl.Reset()
	finalizer.Wait()
	log.Info().Msg("shutdown")
	return err
}

// applyFlags lets command-line flags override file and environment settings
func applyFlags(s *config.Settings) {
	if *debugFlag {
		s.Log.Debug = true
		s.Log.Level = zerolog.DebugLevel.String()
	}
	if *httpFlag != "" {
		s.HTTP.Addr = *httpFlag
	}
	if *storeFlag != "" {
		s.Storage.Driver = *storeFlag
	}
}

func recoverCrash() {
	if r := recover(); r != nil {
		core.HandleCrash(r)
	}
}

// loopStatus reads controller snapshots on the loop goroutine
type loopStatus struct {
	loop *engine.Loop
	ctrl *round.Controller
}

func (s loopStatus) Snapshot(ctx context.Context) (round.Snapshot, error) {
	return engine.Call(ctx, s.loop, s.ctrl.Snapshot)
}
