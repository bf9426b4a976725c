package trace

import (
	"io"
	"os"
	"sync"
)

// StreamTracer writes every admitted event as soon as it is emitted. Write
// errors are dropped: a closed pipe must not fail a recompile.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
	chrome *chromeWriter // set for FormatChrome
}

// NewStreamTracer creates a tracer writing format to w. Chrome output is a
// single document; Close writes its footer.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	st := &StreamTracer{w: w, level: level, format: format}
	if format == FormatChrome {
		st.chrome = newChromeWriter(w)
		_ = st.chrome.header() //nolint:errcheck
	}
	return st
}

// Emit writes ev when the level admits it.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.admits(ev) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ev.Seq = NextSeq()
	if t.chrome != nil {
		_ = t.chrome.write(ev) //nolint:errcheck
		return
	}
	_, _ = t.w.Write(FormatEvent(ev, t.format)) //nolint:errcheck
}

// Flush flushes the writer when it buffers.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close terminates chrome output, flushes, and closes the writer unless it is
// stdout or stderr.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.chrome != nil {
		_ = t.chrome.footer() //nolint:errcheck
		t.chrome = nil
	}
	t.mu.Unlock()

	if err := t.Flush(); err != nil {
		return err
	}
	if t.w == io.Writer(os.Stderr) || t.w == io.Writer(os.Stdout) {
		return nil
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
