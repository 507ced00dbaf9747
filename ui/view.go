package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/whack/round"
)

// Screen selects what the view draws
type Screen int

const (
	ScreenMenu Screen = iota
	ScreenPlay
	ScreenHelp
	ScreenLeaderboard
)

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleScore   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	stylePaused  = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleHole    = tcell.StyleDefault.Background(tcell.NewRGBColor(40, 30, 20)).Foreground(tcell.NewRGBColor(90, 70, 50))
	styleMole    = tcell.StyleDefault.Background(tcell.NewRGBColor(139, 90, 43)).Foreground(tcell.ColorWhite).Bold(true)
	styleCard    = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
)

var helpText = []string{
	"Moles pop out of random holes and hide again after a moment.",
	"Click a mole to whack it for points.",
	"Clicking an empty hole or letting a mole escape costs points.",
	"Your score never drops below zero.",
	"",
	"enter/s  start or stop a round",
	"p/space  pause or resume",
	"r        reset, closes the round-over card",
	"l        high scores",
	"m        mute sound",
	"esc      back",
	"q        quit",
}

// View holds what the player sees and draws it
// It implements round.Listener and is the source of truth for which cells are rendered occupied
type View struct {
	rows, cols int
	occupied   []bool

	score     int
	remaining int
	paused    bool
	final     int

	screen      Screen
	leaderboard []int
	muted       bool
}

// NewView creates a view for a rows x cols grid
func NewView(rows, cols, remaining int) *View {
	return &View{
		rows:      rows,
		cols:      cols,
		occupied:  make([]bool, rows*cols),
		remaining: remaining,
	}
}

func (v *View) ScoreChanged(score int) { v.score = score }

func (v *View) TimeChanged(remaining int, paused bool) {
	v.remaining = remaining
	v.paused = paused
}

func (v *View) TargetSpawned(cell int) {
	if cell >= 0 && cell < len(v.occupied) {
		v.occupied[cell] = true
	}
}

func (v *View) TargetCleared(cell int) {
	if cell >= 0 && cell < len(v.occupied) {
		v.occupied[cell] = false
	}
}

func (v *View) RoundEnded(finalScore int) {
	v.final = finalScore
	v.paused = false
}

// Occupied reports whether cell is currently drawn with a target
func (v *View) Occupied(cell int) bool {
	return cell >= 0 && cell < len(v.occupied) && v.occupied[cell]
}

func (v *View) Screen() Screen         { return v.screen }
func (v *View) SetScreen(s Screen)     { v.screen = s }
func (v *View) SetLeaderboard(e []int) { v.leaderboard = e }
func (v *View) SetMuted(m bool)        { v.muted = m }

// Draw renders the current screen for phase
func (v *View) Draw(s tcell.Screen, l Layout, phase round.Phase) {
	s.Clear()

	switch v.screen {
	case ScreenMenu:
		v.drawMenu(s, l)
	case ScreenHelp:
		v.drawHelp(s, l)
	case ScreenLeaderboard:
		v.drawLeaderboard(s, l)
	default:
		v.drawPlay(s, l, phase)
	}

	s.Show()
}

func (v *View) drawMenu(s tcell.Screen, l Layout) {
	y := max(0, l.Height/2-4)
	drawCentered(s, l.Width, y, styleTitle, "W H A C K")
	drawCentered(s, l.Width, y+1, styleDim, "a terminal whack-a-mole")
	drawCentered(s, l.Width, y+3, styleDefault, "[enter] play")
	drawCentered(s, l.Width, y+4, styleDefault, "[h] how to play")
	drawCentered(s, l.Width, y+5, styleDefault, "[l] high scores")
	drawCentered(s, l.Width, y+6, styleDefault, "[q] quit")
}

func (v *View) drawHelp(s tcell.Screen, l Layout) {
	drawCentered(s, l.Width, 1, styleTitle, "How to play")
	width := 0
	for _, line := range helpText {
		width = max(width, len(line))
	}
	x := max(0, (l.Width-width)/2)
	for i, line := range helpText {
		drawText(s, x, 3+i, styleDefault, line)
	}
	v.drawFooter(s, l, "[esc] back")
}

func (v *View) drawLeaderboard(s tcell.Screen, l Layout) {
	drawCentered(s, l.Width, 1, styleTitle, "High Scores")
	if len(v.leaderboard) == 0 {
		drawCentered(s, l.Width, 3, styleDim, "No high scores yet!")
	}
	for i, score := range v.leaderboard {
		drawCentered(s, l.Width, 3+i, styleDefault, fmt.Sprintf("%2d. %6d", i+1, score))
	}
	v.drawFooter(s, l, "[esc] back")
}

func (v *View) drawPlay(s tcell.Screen, l Layout, phase round.Phase) {
	// HUD
	drawText(s, marginX, 0, styleScore, fmt.Sprintf("Score: %d", v.score))
	timeText := fmt.Sprintf("Time: %ds", v.remaining)
	timeStyle := styleDefault
	if v.paused {
		timeText += " (Paused)"
		timeStyle = stylePaused
	}
	drawText(s, l.Width-marginX-len(timeText), 0, timeStyle, timeText)

	var status string
	switch phase {
	case round.Idle:
		status = "Press enter to start"
	case round.Running:
		status = "Whack the moles!"
	case round.Paused:
		status = "Paused, press p to resume"
	case round.Ended:
		status = "Round over"
	}
	drawCentered(s, l.Width, 1, styleDim, status)

	for i, r := range l.Cells {
		if v.Occupied(i) {
			fillRect(s, r, ' ', styleMole)
			drawCentered(s, r.W, r.Y+r.H/2, styleMole, moleFace(r.W), r.X)
		} else {
			fillRect(s, r, '.', styleHole)
		}
	}

	footer := "[enter] start  [p] pause  [r] reset  [l] scores  [h] help  [q] quit"
	if v.muted {
		footer += "  (muted)"
	}
	v.drawFooter(s, l, footer)

	if phase == round.Ended {
		v.drawEndCard(s, l)
	}
}

func (v *View) drawEndCard(s tcell.Screen, l Layout) {
	lines := []string{
		"",
		"Round over",
		fmt.Sprintf("Final score: %d", v.final),
		"",
		"[r] close   [enter] play again",
		"",
	}
	w := 0
	for _, line := range lines {
		w = max(w, len(line))
	}
	w += 4
	card := Rect{X: max(0, (l.Width-w)/2), Y: max(0, (l.Height-len(lines))/2), W: w, H: len(lines)}
	fillRect(s, card, ' ', styleCard)
	for i, line := range lines {
		drawCentered(s, card.W, card.Y+i, styleCard, line, card.X)
	}
}

func (v *View) drawFooter(s tcell.Screen, l Layout, text string) {
	drawCentered(s, l.Width, l.Height-1, styleDim, text)
}

func moleFace(w int) string {
	switch {
	case w >= 5:
		return "(o.o)"
	case w >= 3:
		return "o.o"
	default:
		return "o"
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// drawCentered centres text in a span of width starting at the optional x offset
func drawCentered(s tcell.Screen, width, y int, style tcell.Style, text string, offset ...int) {
	x := (width - len([]rune(text))) / 2
	if len(offset) > 0 {
		x += offset[0]
	}
	drawText(s, max(0, x), y, style, text)
}

func fillRect(s tcell.Screen, r Rect, ch rune, style tcell.Style) {
	row := strings.Repeat(string(ch), r.W)
	for y := r.Y; y < r.Y+r.H; y++ {
		drawText(s, r.X, y, style, row)
	}
}
