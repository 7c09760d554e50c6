// Package progrock provides the Progrock implementation of the tracer
// adapter, rendering one vertex per solve or projection task.
package progrock

import (
	"context"
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/lox/internal/core/ports"
)

// Tracer implements ports.Tracer using the progrock library.
type Tracer struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Tracer with a default tape.
func New() ports.Tracer {
	tape := progrock.NewTape()
	return NewTracer(tape)
}

// NewTracer creates a new Tracer with the given writer.
func NewTracer(w progrock.Writer) *Tracer {
	return &Tracer{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start begins recording a new vertex.
func (t *Tracer) Start(ctx context.Context, name string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	d := digest.FromString(name)
	v := t.rec.Vertex(d, name)
	return ctx, &Span{vertex: v}
}

// EmitPlan records the planned units as a single grouping vertex.
func (t *Tracer) EmitPlan(_ context.Context, units []string) {
	for _, unit := range units {
		d := digest.FromString("plan:" + unit)
		v := t.rec.Vertex(d, unit)
		v.Done(nil)
	}
}

// Close flushes and closes the recording session.
func (t *Tracer) Close() error {
	if c, ok := t.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Span implements ports.Span wrapping *progrock.VertexRecorder. The error
// recorded last is reported when the span ends.
type Span struct {
	vertex *progrock.VertexRecorder
	err    error
}

// End completes the vertex, reporting any recorded error.
func (s *Span) End() {
	s.vertex.Done(s.err)
}

// RecordError stores the error reported at End.
func (s *Span) RecordError(err error) {
	s.err = err
}

// SetAttribute writes the pair to the vertex output stream.
func (s *Span) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}

// Write forwards to the vertex output stream.
func (s *Span) Write(p []byte) (int, error) {
	return s.vertex.Stdout().Write(p)
}
