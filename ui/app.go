package ui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/whack/core"
	"github.com/lixenwraith/whack/engine"
	"github.com/lixenwraith/whack/round"
)

const frameInterval = 33 * time.Millisecond

// Controls is the subset of the round controller driven by input
type Controls interface {
	Start()
	Stop()
	TogglePause()
	Reset()
	RegisterHit(cell int)
	RegisterMiss()
	Phase() round.Phase
}

// ScoreSource lists stored high scores
type ScoreSource interface {
	Entries() []int
}

// Muter toggles sound output
type Muter interface {
	ToggleMute() bool
}

// App owns the terminal event loop
// Terminal events, scheduler tasks and frames are all handled on the goroutine running Run
type App struct {
	screen tcell.Screen
	loop   *engine.Loop
	ctrl   Controls
	view   *View
	scores ScoreSource
	sound  Muter
	log    zerolog.Logger

	layout  Layout
	buttons tcell.ButtonMask
	back    Screen
}

// NewApp wires input to ctrl, scores and sound may be nil
func NewApp(screen tcell.Screen, loop *engine.Loop, ctrl Controls, view *View, scores ScoreSource, sound Muter, log zerolog.Logger) *App {
	a := &App{
		screen: screen,
		loop:   loop,
		ctrl:   ctrl,
		view:   view,
		scores: scores,
		sound:  sound,
		log:    log.With().Str("component", "ui").Logger(),
	}
	a.resize()
	return a
}

// Layout returns the current layout
func (a *App) Layout() Layout {
	return a.layout
}

// Run processes events until quit, ctx cancellation or a closed event stream
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)

	core.Go(func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	})

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok || !a.HandleEvent(ev) {
				return nil
			}

		case task := <-a.loop.Tasks():
			task()

		case <-ticker.C:
			a.draw()
		}
	}
}

// HandleEvent applies one terminal event, returns false to quit
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.resize()
		a.screen.Sync()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		return a.goBack()
	case tcell.KeyEnter:
		a.startStop()
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return false
	case 's', 'S':
		a.startStop()
	case 'p', 'P', ' ':
		if a.view.Screen() == ScreenPlay {
			a.ctrl.TogglePause()
		}
	case 'r', 'R':
		a.ctrl.Reset()
		a.view.SetScreen(ScreenPlay)
	case 'l', 'L':
		a.view.SetLeaderboard(a.entries())
		a.open(ScreenLeaderboard)
	case 'h', 'H', '?':
		a.open(ScreenHelp)
	case 'm', 'M':
		if a.sound != nil {
			a.view.SetMuted(a.sound.ToggleMute())
		}
	}
	return true
}

// startStop is the single start/stop control
func (a *App) startStop() {
	switch a.ctrl.Phase() {
	case round.Running, round.Paused:
		a.ctrl.Stop()
	default:
		a.ctrl.Start()
	}
	a.view.SetScreen(ScreenPlay)
}

// open shows an overlay screen, pausing a running round first
func (a *App) open(s Screen) {
	if a.ctrl.Phase() == round.Running {
		a.ctrl.TogglePause()
	}
	if cur := a.view.Screen(); cur == ScreenMenu || cur == ScreenPlay {
		a.back = cur
	}
	a.view.SetScreen(s)
}

// goBack leaves an overlay, or the play screen for the menu; esc on the menu quits
func (a *App) goBack() bool {
	switch a.view.Screen() {
	case ScreenMenu:
		return false
	case ScreenPlay:
		if a.ctrl.Phase() == round.Running {
			a.ctrl.TogglePause()
		}
		a.view.SetScreen(ScreenMenu)
	default:
		a.view.SetScreen(a.back)
	}
	return true
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	prev := a.buttons
	a.buttons = ev.Buttons()

	// Act on the press edge only, drags and releases are ignored
	if a.buttons&tcell.Button1 == 0 || prev&tcell.Button1 != 0 {
		return
	}
	if a.view.Screen() != ScreenPlay {
		return
	}

	x, y := ev.Position()
	a.Click(x, y)
}

// Click routes a primary click at (x, y)
// A click on a cell drawn with a target is a hit, any other click inside the board is a miss
func (a *App) Click(x, y int) {
	if !a.layout.InBoard(x, y) {
		return
	}
	if cell, ok := a.layout.CellAt(x, y); ok && a.view.Occupied(cell) {
		a.ctrl.RegisterHit(cell)
		return
	}
	a.ctrl.RegisterMiss()
}

func (a *App) entries() []int {
	if a.scores == nil {
		return nil
	}
	return a.scores.Entries()
}

func (a *App) resize() {
	w, h := a.screen.Size()
	a.layout = ComputeLayout(w, h, a.view.rows, a.view.cols)
	a.log.Debug().Int("width", w).Int("height", h).Msg("layout")
}

func (a *App) draw() {
	a.view.Draw(a.screen, a.layout, a.ctrl.Phase())
}
