// Package relay contains the two one-directional forwarders between the
// device session and the display: the read relay (decoded chunks to the
// display) and the write relay (display input to the encode pipe).
package relay

import (
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/frankcappelle/xterm1/pkg/display"
	"github.com/frankcappelle/xterm1/pkg/serialport"
	"github.com/frankcappelle/xterm1/pkg/session"
)

// ChunkSource is the read side of a device session as seen by the read
// relay. *session.Session implements it.
type ChunkSource interface {
	AcquireReader() error
	ReleaseReader()
	ReadChunk() (string, error)
}

// TextSink is the write side of a device session as seen by the write
// relay. *session.Session implements it.
type TextSink interface {
	WriteText(text string) error
}

// RunReader claims the session's decode pipe and forwards every non-empty
// decoded chunk verbatim, in order, to the display. It blocks until the
// stream ends. A graceful end of stream or a benign disconnect error
// returns nil; any other error is surfaced on the display, logged, and
// returned. The read claim is released on every exit path.
func RunReader(source ChunkSource, disp display.Surface, log *zap.Logger) error {
	if err := source.AcquireReader(); err != nil {
		return err
	}
	defer source.ReleaseReader()

	for {
		chunk, err := source.ReadChunk()
		if chunk != "" {
			disp.Write(chunk)
		}

		if err != nil {
			if errors.Is(err, io.EOF) || serialport.IsBenignDisconnect(err) {
				return nil
			}

			log.Error("serial read failed", zap.Error(err))
			disp.Writeln("Serial read error: " + err.Error())
			return err
		}
	}
}

// Writer is the write relay. It is registered once per connection as the
// display's input subscription and forwards each input event's text to the
// session's encode pipe while a live sink exists. After Detach every event
// is a silent no-op, which guards against input arriving once teardown has
// started.
type Writer struct {
	mu   sync.Mutex
	sink TextSink
	log  *zap.Logger
}

// NewWriter creates a write relay bound to the given sink
func NewWriter(sink TextSink, log *zap.Logger) *Writer {
	return &Writer{
		sink: sink,
		log:  log,
	}
}

// OnData forwards one input event's text to the sink, if one is live
func (w *Writer) OnData(text string) {
	w.mu.Lock()
	sink := w.sink
	w.mu.Unlock()

	if sink == nil {
		return
	}

	if err := sink.WriteText(text); err != nil {
		// A write racing session shutdown is expected noise.
		if errors.Is(err, session.ErrWriterClosed) {
			return
		}
		w.log.Warn("serial write failed", zap.Error(err))
	}
}

// Detach disconnects the relay from its sink. Subsequent input events are
// dropped.
func (w *Writer) Detach() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sink = nil
}
