// Package notice carries single-line user-visible messages out of the core.
package notice

import (
	"fmt"
	"io"
	"sync"
)

// Notifier receives user-visible notices.
type Notifier interface {
	Notify(msg string)
}

// Func adapts a function to Notifier.
type Func func(msg string)

// Notify calls f(msg).
func (f Func) Notify(msg string) { f(msg) }

// Writer prints each notice on its own line.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter creates a Writer printing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Notify writes msg followed by a newline.
func (w *Writer) Notify(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintln(w.out, msg)
}

// Recorder keeps notices in memory.
type Recorder struct {
	mu   sync.Mutex
	msgs []string
}

// Notify appends msg.
func (r *Recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// Messages returns a copy of the recorded notices.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

// Discard drops every notice.
var Discard Notifier = Func(func(string) {})
