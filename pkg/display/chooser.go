package display

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/frankcappelle/xterm1/pkg/serialport"
)

// choice is the outcome of a modal chooser
type choice struct {
	index     int
	cancelled bool
}

// chooserState is the modal overlay presented by Choose. Key events are
// routed to it instead of the input subscription while it is active.
type chooserState struct {
	prompt   string
	options  []string
	selected int
	decided  bool
	result   chan choice
}

// Choose presents a modal list over the scrollback and blocks until the
// user selects an entry or backs out. Backing out returns
// serialport.ErrCancelled. Must not be called from the event goroutine.
func (t *Terminal) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, serialport.ErrNoDevice
	}

	c := &chooserState{
		prompt:  prompt,
		options: options,
		result:  make(chan choice, 1),
	}

	t.mu.Lock()
	t.modal = c
	t.dirty = true
	t.mu.Unlock()

	r := <-c.result

	t.mu.Lock()
	t.modal = nil
	t.dirty = true
	t.mu.Unlock()

	if r.cancelled {
		return 0, serialport.ErrCancelled
	}
	return r.index, nil
}

// handleChooserKey processes one key event for the active modal. Runs on
// the event goroutine.
func (t *Terminal) handleChooserKey(c *chooserState, ev *tcell.EventKey) {
	if c.decided {
		return
	}

	decide := func(r choice) {
		c.decided = true
		c.result <- r
	}

	// selected is read by the render goroutine under t.mu
	move := func(delta int) {
		t.mu.Lock()
		c.selected = (c.selected + delta + len(c.options)) % len(c.options)
		t.dirty = true
		t.mu.Unlock()
	}

	switch ev.Key() {
	case tcell.KeyEsc, tcell.KeyCtrlC:
		decide(choice{cancelled: true})
	case tcell.KeyEnter:
		decide(choice{index: c.selected})
	case tcell.KeyUp:
		move(-1)
	case tcell.KeyDown:
		move(1)
	case tcell.KeyRune:
		switch r := ev.Rune(); {
		case r == 'q':
			decide(choice{cancelled: true})
		case r == 'k':
			move(-1)
		case r == 'j':
			move(1)
		case r >= '1' && r <= '9' && int(r-'1') < len(c.options):
			decide(choice{index: int(r - '1')})
		}
	}
}

// renderChooser draws the modal box centered on the screen. Caller holds
// t.mu.
func (t *Terminal) renderChooser(c *chooserState, width, height int) {
	const hint = "Enter: select   Esc: cancel"

	boxWidth := runewidth.StringWidth(c.prompt)
	if w := runewidth.StringWidth(hint); w > boxWidth {
		boxWidth = w
	}
	for i, opt := range c.options {
		if w := runewidth.StringWidth(fmt.Sprintf("%d. %s", i+1, opt)); w > boxWidth {
			boxWidth = w
		}
	}
	boxWidth += 4
	if boxWidth > width {
		boxWidth = width
	}
	boxHeight := len(c.options) + 5
	if boxHeight > height {
		boxHeight = height
	}

	x0 := (width - boxWidth) / 2
	y0 := (height - boxHeight) / 2

	style := tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite)
	selectedStyle := tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)

	for y := y0; y < y0+boxHeight; y++ {
		for x := x0; x < x0+boxWidth; x++ {
			t.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	drawText := func(x, y int, text string, st tcell.Style) {
		for _, r := range text {
			w := runewidth.RuneWidth(r)
			if w == 0 || x+w > x0+boxWidth-1 {
				break
			}
			t.screen.SetContent(x, y, r, nil, st)
			x += w
		}
	}

	drawText(x0+2, y0+1, c.prompt, style.Bold(true))

	for i, opt := range c.options {
		st := style
		if i == c.selected {
			st = selectedStyle
		}
		drawText(x0+2, y0+3+i, fmt.Sprintf("%d. %s", i+1, opt), st)
	}

	drawText(x0+2, y0+boxHeight-1, hint, style.Dim(true))
}
