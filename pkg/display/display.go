// Package display provides the terminal display widget: a tcell-backed
// scrollback view with a status line, an input subscription that yields
// keystrokes as text, and a debounced viewport fitter.
package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Surface is the display contract consumed by the controller and relays
type Surface interface {
	// Write appends text to the scrollback, interpreting CR, LF, BS and
	// TAB and ignoring ANSI escape sequences.
	Write(text string)

	// Writeln writes text followed by a line break.
	Writeln(text string)

	// Focus snaps the view back to the live bottom of the scrollback.
	Focus()

	// OnData registers the single subscriber for input text produced by
	// keystrokes. The returned function cancels the registration.
	OnData(handler func(text string)) (cancel func())
}

// Options configures the display widget
type Options struct {
	CursorBlink bool
	// ConvertEOL treats a lone LF as a full line break (CR+LF).
	ConvertEOL bool
	// FontSize is advisory; the host terminal controls cell size.
	FontSize int
	// Scrollback is the maximum number of retained lines.
	Scrollback int
}

// DefaultOptions returns the stock widget configuration
func DefaultOptions() Options {
	return Options{
		CursorBlink: true,
		ConvertEOL:  true,
		FontSize:    12,
		Scrollback:  2000,
	}
}

// escape parser states
const (
	parseText = iota
	parseEsc
	parseCSI
	parseOSC
	parseOSCEsc
)

const tabWidth = 8

// Terminal is the tcell-backed display widget
type Terminal struct {
	opts Options

	screen tcell.Screen

	mu        sync.Mutex
	lines     []string
	cur       []rune
	col       int
	scroll    int
	status    string
	dirty     bool
	parse     int
	width     int
	height    int
	handler   func(string)
	handlerID int
	bindings  map[tcell.Key]func()
	resizeFn  func()
	modal     *chooserState

	quitRender chan struct{}
	renderDone chan struct{}
	eventDone  chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

// New creates a display widget; Open must be called before Run
func New(opts Options) *Terminal {
	if opts.Scrollback <= 0 {
		opts.Scrollback = DefaultOptions().Scrollback
	}

	return &Terminal{
		opts:       opts,
		bindings:   make(map[tcell.Key]func()),
		quitRender: make(chan struct{}),
		renderDone: make(chan struct{}),
		eventDone:  make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Open acquires the host terminal screen. Failure to do so is fatal for
// the caller: the widget has no surface to render into.
func (t *Terminal) Open() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}

	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault.
		Background(tcell.ColorReset).
		Foreground(tcell.ColorReset))
	screen.Clear()

	if t.opts.CursorBlink {
		screen.SetCursorStyle(tcell.CursorStyleBlinkingBlock)
	} else {
		screen.SetCursorStyle(tcell.CursorStyleSteadyBlock)
	}

	t.mu.Lock()
	t.screen = screen
	t.width, t.height = screen.Size()
	t.dirty = true
	t.mu.Unlock()

	return nil
}

// Run starts the event and render loops and blocks until Stop. Bound key
// handlers run on the event goroutine; handlers that call Stop or block on
// the display must hop to their own goroutine.
func (t *Terminal) Run() error {
	t.mu.Lock()
	screen := t.screen
	t.mu.Unlock()

	if screen == nil {
		return fmt.Errorf("display is not open")
	}

	go t.eventLoop()
	go t.renderLoop()

	<-t.done
	return nil
}

// Stop restores the host terminal and ends Run. Safe to call more than
// once, from any goroutine except the event loop itself.
func (t *Terminal) Stop() {
	t.stopOnce.Do(func() {
		close(t.quitRender)
		<-t.renderDone

		// Fini unblocks PollEvent, which then returns nil.
		t.screen.Fini()
		<-t.eventDone

		close(t.done)
	})
}

// BindKey routes a named (non-rune) key to fn instead of the input
// subscription. Must be set up before Run.
func (t *Terminal) BindKey(key tcell.Key, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.bindings[key] = fn
}

// OnResize registers the single observer of window resize notifications
func (t *Terminal) OnResize(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.resizeFn = fn
}

// OnData registers the input subscriber; see Surface
func (t *Terminal) OnData(handler func(string)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.handlerID++
	id := t.handlerID
	t.handler = handler

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if t.handlerID == id {
			t.handler = nil
		}
	}
}

// SetStatus sets the status line text shown on the bottom row
func (t *Terminal) SetStatus(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = text
	t.dirty = true
}

// Write appends text to the scrollback; see Surface
func (t *Terminal) Write(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range text {
		t.put(r)
	}
	t.dirty = true
}

// Writeln writes text followed by a line break; see Surface
func (t *Terminal) Writeln(text string) {
	t.Write(text + "\r\n")
}

// Focus snaps the view to the bottom; see Surface
func (t *Terminal) Focus() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.scroll = 0
	t.dirty = true
}

// Fit re-measures the viewport against the host terminal and reflows the
// view. Called by the layout fitter after a resize burst settles.
func (t *Terminal) Fit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.screen == nil {
		return
	}

	t.width, t.height = t.screen.Size()
	t.screen.Sync()
	t.dirty = true
}

// put feeds one rune through the escape-sequence parser into the line
// buffer. Caller holds t.mu.
func (t *Terminal) put(r rune) {
	switch t.parse {
	case parseEsc:
		switch r {
		case '[':
			t.parse = parseCSI
		case ']':
			t.parse = parseOSC
		default:
			t.parse = parseText
		}
		return
	case parseCSI:
		if r >= 0x40 && r <= 0x7e {
			t.parse = parseText
		}
		return
	case parseOSC:
		switch r {
		case '\a':
			t.parse = parseText
		case 0x1b:
			t.parse = parseOSCEsc
		}
		return
	case parseOSCEsc:
		if r == '\\' {
			t.parse = parseText
		} else {
			t.parse = parseOSC
		}
		return
	}

	switch {
	case r == 0x1b:
		t.parse = parseEsc
	case r == '\n':
		col := t.col
		t.commitLine()
		if !t.opts.ConvertEOL {
			// A bare LF moves down but keeps the column.
			for t.col < col {
				t.putRune(' ')
			}
		}
	case r == '\r':
		t.col = 0
	case r == '\b':
		if t.col > 0 {
			t.col--
		}
	case r == '\t':
		for {
			t.putRune(' ')
			if t.col%tabWidth == 0 {
				break
			}
		}
	case r == '\a':
		if t.screen != nil {
			_ = t.screen.Beep()
		}
	case r < 0x20:
		// other control bytes are dropped
	default:
		t.putRune(r)
	}
}

// putRune writes a printable rune at the current column, overwriting when
// the carriage has been returned. Caller holds t.mu.
func (t *Terminal) putRune(r rune) {
	if t.col < len(t.cur) {
		t.cur[t.col] = r
	} else {
		t.cur = append(t.cur, r)
	}
	t.col++
}

// commitLine moves the current line into the scrollback. Caller holds t.mu.
func (t *Terminal) commitLine() {
	t.lines = append(t.lines, string(t.cur))
	t.cur = t.cur[:0]
	t.col = 0

	if len(t.lines) > t.opts.Scrollback {
		t.lines = t.lines[len(t.lines)-t.opts.Scrollback:]
	}
}

// eventLoop polls tcell events until the screen is finalized
func (t *Terminal) eventLoop() {
	defer close(t.eventDone)

	for {
		event := t.screen.PollEvent()
		if event == nil {
			return
		}

		switch ev := event.(type) {
		case *tcell.EventResize:
			t.mu.Lock()
			fn := t.resizeFn
			t.mu.Unlock()
			if fn != nil {
				fn()
			}
		case *tcell.EventKey:
			t.handleKey(ev)
		}
	}
}

// renderLoop repaints dirty state at a fixed cadence
func (t *Terminal) renderLoop() {
	defer close(t.renderDone)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-t.quitRender:
			return
		case <-ticker.C:
			t.render()
		}
	}
}

// handleKey routes one key event: modal chooser first, then named-key
// bindings, then view scrolling, and finally the input subscription.
func (t *Terminal) handleKey(ev *tcell.EventKey) {
	t.mu.Lock()
	modal := t.modal
	t.mu.Unlock()

	if modal != nil {
		t.handleChooserKey(modal, ev)
		return
	}

	t.mu.Lock()
	binding := t.bindings[ev.Key()]
	t.mu.Unlock()
	if binding != nil {
		binding()
		return
	}

	switch ev.Key() {
	case tcell.KeyPgUp:
		t.scrollBy(t.pageSize())
		return
	case tcell.KeyPgDn:
		t.scrollBy(-t.pageSize())
		return
	}

	data := encodeKey(ev)
	if len(data) == 0 {
		return
	}

	t.mu.Lock()
	handler := t.handler
	t.mu.Unlock()
	if handler != nil {
		handler(string(data))
	}
}

// pageSize is the number of rows one PgUp/PgDn moves the view
func (t *Terminal) pageSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := t.height - 2
	if size < 1 {
		size = 1
	}
	return size
}

// scrollBy moves the view offset; clamping happens at render time
func (t *Terminal) scrollBy(rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.scroll += rows
	if t.scroll < 0 {
		t.scroll = 0
	}
	t.dirty = true
}

// render repaints the scrollback view, status line, cursor and any modal
func (t *Terminal) render() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.dirty || t.screen == nil {
		return
	}

	width, height := t.width, t.height
	if width <= 0 || height <= 0 {
		return
	}

	contentRows := height - 1
	rows := t.wrapAll(width)

	maxScroll := len(rows) - contentRows
	if maxScroll < 0 {
		maxScroll = 0
	}
	if t.scroll > maxScroll {
		t.scroll = maxScroll
	}

	start := len(rows) - contentRows - t.scroll
	if start < 0 {
		start = 0
	}

	t.screen.Clear()

	y := 0
	for i := start; i < len(rows) && y < contentRows; i++ {
		x := 0
		for _, r := range rows[i] {
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			if x+w > width {
				break
			}
			t.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
			x += w
		}
		y++
	}

	t.renderStatus(width, height)

	if t.scroll == 0 && t.modal == nil {
		cx := runewidth.StringWidth(string(t.cur[:min(t.col, len(t.cur))])) % max(width, 1)
		cy := y - 1
		if cy >= 0 && cy < contentRows {
			t.screen.ShowCursor(cx, cy)
		} else {
			t.screen.HideCursor()
		}
	} else {
		t.screen.HideCursor()
	}

	if t.modal != nil {
		t.renderChooser(t.modal, width, height)
	}

	t.screen.Show()
	t.dirty = false
}

// renderStatus draws the status line on the bottom row. Caller holds t.mu.
func (t *Terminal) renderStatus(width, height int) {
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range " " + t.status {
		w := runewidth.RuneWidth(r)
		if w == 0 || x+w > width {
			continue
		}
		t.screen.SetContent(x, height-1, r, nil, style)
		x += w
	}
	for ; x < width; x++ {
		t.screen.SetContent(x, height-1, ' ', nil, style)
	}
}

// wrapAll flattens scrollback plus the current line into display rows of at
// most width cells. Caller holds t.mu.
func (t *Terminal) wrapAll(width int) [][]rune {
	var rows [][]rune
	for _, line := range t.lines {
		rows = append(rows, wrapLine([]rune(line), width)...)
	}
	rows = append(rows, wrapLine(t.cur, width)...)
	return rows
}

// wrapLine splits one logical line into rows of at most width cells
func wrapLine(line []rune, width int) [][]rune {
	if width < 1 {
		width = 1
	}
	if len(line) == 0 {
		return [][]rune{nil}
	}

	var rows [][]rune
	var row []rune
	cells := 0

	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if cells+w > width {
			rows = append(rows, row)
			row = nil
			cells = 0
		}
		row = append(row, r)
		cells += w
	}
	rows = append(rows, row)

	return rows
}
