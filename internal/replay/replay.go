// Package replay records the events of a run and lets a player move over
// them frame by frame.
//
// A frame is any event except a phase marker, tagged with the phase it was
// emitted in. Playback never moves past an error: once a frame holding an
// ErrorMessage has been shown, the cursor refuses to advance further.
package replay

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/born-ml/gradgraph/internal/autodiff"
	"github.com/born-ml/gradgraph/internal/matrix"
)

// Cursor errors.
var (
	// ErrEnd is returned by Next at the end of the recording.
	ErrEnd = errors.New("replay: end of recording")

	// ErrBlocked is returned when an error precedes the requested frame.
	ErrBlocked = errors.New("replay: blocked by error")

	// ErrOutOfRange is returned by Goto for frames outside the recording.
	ErrOutOfRange = errors.New("replay: frame out of range")
)

// Frame is one recorded event.
type Frame struct {
	Phase autodiff.Phase
	Event autodiff.Event
}

// Edge identifies a parent to child edge.
type Edge struct {
	From int
	To   int
}

// Output describes a terminal node and the shape of its computed value.
type Output struct {
	Index int
	Name  string
	Shape matrix.Shape

	// Known is false when the node has no value.
	Known bool
}

// Recording is an immutable list of frames.
type Recording struct {
	frames []Frame
}

// Record drains seq.
func Record(seq iter.Seq[autodiff.Event]) *Recording {
	rec := &Recording{}
	phase := autodiff.PhaseInit
	for ev := range seq {
		if m, ok := ev.(autodiff.PhaseMarker); ok {
			phase = m.Phase
			continue
		}
		rec.frames = append(rec.frames, Frame{Phase: phase, Event: ev})
	}
	return rec
}

// Len returns the number of frames.
func (r *Recording) Len() int {
	return len(r.frames)
}

// Frame returns frame i.
func (r *Recording) Frame(i int) Frame {
	return r.frames[i]
}

// Frames returns all frames.
func (r *Recording) Frames() []Frame {
	return slices.Clone(r.frames)
}

// FirstError returns the first error among the frames before frame.
func (r *Recording) FirstError(frame int) (autodiff.ErrorMessage, bool) {
	for _, f := range r.frames[:max(0, min(frame, len(r.frames)))] {
		if e, ok := f.Event.(autodiff.ErrorMessage); ok {
			return e, true
		}
	}
	return autodiff.ErrorMessage{}, false
}

// Snapshot folds the node updates of frames [0, frame] by node index.
func (r *Recording) Snapshot(frame int) map[int]autodiff.NodeUpdate {
	nodes := make(map[int]autodiff.NodeUpdate)
	for _, f := range r.upTo(frame) {
		if u, ok := f.Event.(autodiff.NodeUpdate); ok {
			nodes[u.Index] = u
		}
	}
	return nodes
}

// Edges folds the edge labels of frames [0, frame].
func (r *Recording) Edges(frame int) map[Edge]string {
	edges := make(map[Edge]string)
	for _, f := range r.upTo(frame) {
		if e, ok := f.Event.(autodiff.EdgeAnnotation); ok {
			edges[Edge{From: e.From, To: e.To}] = e.Label
		}
	}
	return edges
}

// OutputShapes lists the terminal nodes in index order with the shape of
// their final value. Rule names are used where a rule is bound.
func (r *Recording) OutputShapes() []Output {
	last := r.Snapshot(r.Len() - 1)
	consumed := make(map[int]bool)
	names := make(map[int]string)
	for _, f := range r.frames {
		switch e := f.Event.(type) {
		case autodiff.NodeUpdate:
			for _, c := range e.Children {
				consumed[c] = true
			}
		case autodiff.RuleGrouping:
			if _, ok := names[e.Index]; !ok {
				names[e.Index] = e.Name
			}
		}
	}

	var out []Output
	for i, u := range last {
		if consumed[i] {
			continue
		}
		name, ok := names[i]
		if !ok {
			name = u.DisplayName
		}
		out = append(out, Output{Index: i, Name: name, Shape: u.Value.Shape(), Known: !u.Value.IsZero()})
	}
	slices.SortFunc(out, func(a, b Output) int { return a.Index - b.Index })
	return out
}

func (r *Recording) upTo(frame int) []Frame {
	if frame < 0 {
		return nil
	}
	return r.frames[:min(frame+1, len(r.frames))]
}

// Cursor walks a recording. Position is the number of frames shown.
type Cursor struct {
	rec *Recording
	pos int
}

// Cursor returns a cursor at the start of the recording.
func (r *Recording) Cursor() *Cursor {
	return &Cursor{rec: r}
}

// Position returns the number of frames shown so far.
func (c *Cursor) Position() int {
	return c.pos
}

// Next shows the next frame.
func (c *Cursor) Next() (Frame, error) {
	if c.pos >= c.rec.Len() {
		return Frame{}, ErrEnd
	}
	if err := c.blocked(c.pos); err != nil {
		return Frame{}, err
	}
	f := c.rec.frames[c.pos]
	c.pos++
	return f, nil
}

// Goto moves to position frame, so that frames [0, frame) are shown.
func (c *Cursor) Goto(frame int) error {
	if frame < 0 || frame > c.rec.Len() {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, frame, c.rec.Len())
	}
	if err := c.blocked(frame - 1); err != nil {
		return err
	}
	c.pos = frame
	return nil
}

// Restart moves back to the start.
func (c *Cursor) Restart() {
	c.pos = 0
}

func (c *Cursor) blocked(frame int) error {
	if e, ok := c.rec.FirstError(frame); ok {
		return fmt.Errorf("%w: %s", ErrBlocked, e.Text)
	}
	return nil
}
