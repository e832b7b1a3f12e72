package display

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestWrite_Lines(t *testing.T) {
	term := New(DefaultOptions())

	term.Write("hello\r\nworld")

	if len(term.lines) != 1 || term.lines[0] != "hello" {
		t.Errorf("committed lines = %v, want [hello]", term.lines)
	}
	if string(term.cur) != "world" {
		t.Errorf("current line = %q, want world", string(term.cur))
	}
}

func TestWriteln(t *testing.T) {
	term := New(DefaultOptions())

	term.Writeln("one")
	term.Writeln("two")

	if len(term.lines) != 2 || term.lines[0] != "one" || term.lines[1] != "two" {
		t.Errorf("lines = %v, want [one two]", term.lines)
	}
	if len(term.cur) != 0 {
		t.Errorf("current line = %q, want empty", string(term.cur))
	}
}

func TestWrite_CarriageReturnOverwrites(t *testing.T) {
	term := New(DefaultOptions())

	term.Write("progress: 10%\rprogress: 99%")

	if got := string(term.cur); got != "progress: 99%" {
		t.Errorf("current line = %q, want the overwritten text", got)
	}
}

func TestWrite_ConvertEOL(t *testing.T) {
	tests := []struct {
		name    string
		convert bool
		wantCur string
		wantCol int
	}{
		{name: "lone LF resets the column", convert: true, wantCur: "cd", wantCol: 2},
		{name: "lone LF keeps the column", convert: false, wantCur: "  cd", wantCol: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.ConvertEOL = tt.convert
			term := New(opts)

			term.Write("ab\ncd")

			if len(term.lines) != 1 || term.lines[0] != "ab" {
				t.Fatalf("scrollback = %q, want [ab]", term.lines)
			}
			if got := string(term.cur); got != tt.wantCur {
				t.Errorf("current line = %q, want %q", got, tt.wantCur)
			}
			if term.col != tt.wantCol {
				t.Errorf("column = %d, want %d", term.col, tt.wantCol)
			}
		})
	}
}

func TestWrite_BackspaceMovesColumn(t *testing.T) {
	term := New(DefaultOptions())

	term.Write("abc\b\bXY")

	if got := string(term.cur); got != "aXY" {
		t.Errorf("current line = %q, want aXY", got)
	}
}

func TestWrite_TabExpands(t *testing.T) {
	term := New(DefaultOptions())

	term.Write("a\tb")

	got := string(term.cur)
	if !strings.HasPrefix(got, "a") || !strings.HasSuffix(got, "b") {
		t.Fatalf("current line = %q", got)
	}
	if len(got) != tabWidth+1 {
		t.Errorf("tab expanded to %d columns total, want %d", len(got), tabWidth+1)
	}
}

func TestWrite_StripsEscapeSequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"sgr color", "\x1b[31mred\x1b[0m", "red"},
		{"cursor move", "\x1b[2Jtext", "text"},
		{"osc title bel", "\x1b]0;title\atext", "text"},
		{"osc title st", "\x1b]0;title\x1b\\text", "text"},
		{"bare escape", "\x1bMtext", "text"},
		{"multi param", "\x1b[1;32mok\x1b[m", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := New(DefaultOptions())
			term.Write(tt.input)

			if got := string(term.cur); got != tt.want {
				t.Errorf("current line = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrite_EscapeSplitAcrossChunks(t *testing.T) {
	term := New(DefaultOptions())

	// parser state must survive chunk boundaries
	term.Write("\x1b[3")
	term.Write("1mred")

	if got := string(term.cur); got != "red" {
		t.Errorf("current line = %q, want red", got)
	}
}

func TestWrite_ScrollbackTrimmed(t *testing.T) {
	opts := DefaultOptions()
	opts.Scrollback = 10
	term := New(opts)

	for i := 0; i < 50; i++ {
		term.Writeln("line")
	}

	if len(term.lines) != 10 {
		t.Errorf("retained %d lines, want 10", len(term.lines))
	}
}

func TestOnData_SingleSubscriber(t *testing.T) {
	term := New(DefaultOptions())

	var got []string
	cancel := term.OnData(func(s string) { got = append(got, s) })

	term.handleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	if len(got) != 1 || got[0] != "x" {
		t.Fatalf("subscriber saw %v, want [x]", got)
	}

	cancel()
	term.handleKey(tcell.NewEventKey(tcell.KeyRune, 'y', tcell.ModNone))
	if len(got) != 1 {
		t.Errorf("subscriber saw %v after cancel, want no new events", got)
	}
}

func TestOnData_CancelOfStaleRegistration(t *testing.T) {
	term := New(DefaultOptions())

	var first, second []string
	cancelFirst := term.OnData(func(s string) { first = append(first, s) })
	term.OnData(func(s string) { second = append(second, s) })

	// cancelling a superseded registration must not detach the current one
	cancelFirst()

	term.handleKey(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone))
	if len(first) != 0 {
		t.Errorf("stale subscriber saw %v", first)
	}
	if len(second) != 1 {
		t.Errorf("current subscriber saw %v, want one event", second)
	}
}

func TestBindKey_InterceptsInput(t *testing.T) {
	term := New(DefaultOptions())

	toggled := 0
	term.BindKey(tcell.KeyCtrlT, func() { toggled++ })

	var data []string
	term.OnData(func(s string) { data = append(data, s) })

	term.handleKey(tcell.NewEventKey(tcell.KeyCtrlT, 0, tcell.ModCtrl))

	if toggled != 1 {
		t.Errorf("binding ran %d times, want 1", toggled)
	}
	if len(data) != 0 {
		t.Errorf("bound key leaked to the input subscription: %v", data)
	}
}

func TestEncodeKey(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		mods tcell.ModMask
		want []byte
	}{
		{"rune", tcell.KeyRune, 'a', tcell.ModNone, []byte{'a'}},
		{"utf8 rune", tcell.KeyRune, 'é', tcell.ModNone, []byte{0xc3, 0xa9}},
		{"alt rune", tcell.KeyRune, 'f', tcell.ModAlt, []byte{0x1b, 'f'}},
		{"enter", tcell.KeyEnter, 0, tcell.ModNone, []byte{'\r'}},
		{"tab", tcell.KeyTab, 0, tcell.ModNone, []byte{'\t'}},
		{"backtab", tcell.KeyBacktab, 0, tcell.ModShift, []byte{0x1b, '[', 'Z'}},
		{"backspace", tcell.KeyBackspace, 0, tcell.ModNone, []byte{0x7f}},
		{"backspace2", tcell.KeyBackspace2, 0, tcell.ModNone, []byte{0x7f}},
		{"escape", tcell.KeyEsc, 0, tcell.ModNone, []byte{0x1b}},
		{"delete", tcell.KeyDelete, 0, tcell.ModNone, []byte{0x1b, '[', '3', '~'}},
		{"up", tcell.KeyUp, 0, tcell.ModNone, []byte{0x1b, '[', 'A'}},
		{"down", tcell.KeyDown, 0, tcell.ModNone, []byte{0x1b, '[', 'B'}},
		{"right", tcell.KeyRight, 0, tcell.ModNone, []byte{0x1b, '[', 'C'}},
		{"left", tcell.KeyLeft, 0, tcell.ModNone, []byte{0x1b, '[', 'D'}},
		{"home", tcell.KeyHome, 0, tcell.ModNone, []byte{0x1b, '[', 'H'}},
		{"end", tcell.KeyEnd, 0, tcell.ModNone, []byte{0x1b, '[', 'F'}},
		{"f1", tcell.KeyF1, 0, tcell.ModNone, []byte{0x1b, 'O', 'P'}},
		{"f5", tcell.KeyF5, 0, tcell.ModNone, []byte{0x1b, '[', '1', '5', '~'}},
		{"f12", tcell.KeyF12, 0, tcell.ModNone, []byte{0x1b, '[', '2', '4', '~'}},
		{"ctrl-c", tcell.KeyCtrlC, 0, tcell.ModCtrl, []byte{0x03}},
		{"ctrl-d", tcell.KeyCtrlD, 0, tcell.ModCtrl, []byte{0x04}},
		{"ctrl-z", tcell.KeyCtrlZ, 0, tcell.ModCtrl, []byte{0x1a}},
		{"ctrl-space", tcell.KeyCtrlSpace, 0, tcell.ModCtrl, []byte{0x00}},
		{"ctrl-underscore", tcell.KeyCtrlUnderscore, 0, tcell.ModCtrl, []byte{0x1f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := tcell.NewEventKey(tt.key, tt.r, tt.mods)
			got := encodeKey(ev)

			if len(got) != len(tt.want) {
				t.Fatalf("encodeKey() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("encodeKey() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestWrapLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		width int
		rows  []string
	}{
		{"empty", "", 10, []string{""}},
		{"fits", "hello", 10, []string{"hello"}},
		{"exact", "0123456789", 10, []string{"0123456789"}},
		{"wraps", "0123456789ab", 10, []string{"0123456789", "ab"}},
		{"wraps twice", "0123456789abcdefghijxy", 10, []string{"0123456789", "abcdefghij", "xy"}},
		{"wide runes", "你好世界", 4, []string{"你好", "世界"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := wrapLine([]rune(tt.line), tt.width)

			if len(rows) != len(tt.rows) {
				t.Fatalf("wrapLine() produced %d rows, want %d", len(rows), len(tt.rows))
			}
			for i := range rows {
				if string(rows[i]) != tt.rows[i] {
					t.Errorf("row[%d] = %q, want %q", i, string(rows[i]), tt.rows[i])
				}
			}
		})
	}
}

func TestScrollBy_ClampsAtBottom(t *testing.T) {
	term := New(DefaultOptions())
	term.height = 10

	term.scrollBy(-5)
	if term.scroll != 0 {
		t.Errorf("scroll = %d, want 0", term.scroll)
	}

	term.scrollBy(8)
	if term.scroll != 8 {
		t.Errorf("scroll = %d, want 8", term.scroll)
	}

	term.Focus()
	if term.scroll != 0 {
		t.Errorf("scroll after Focus = %d, want 0", term.scroll)
	}
}
