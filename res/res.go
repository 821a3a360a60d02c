// Package res holds the GPU-backed resource types that the runtime
// manages: textures, geometries, materials and shader definitions.
// Textures and geometries carry an explicit load state and per-frame
// usage bookkeeping; the collector in core owns the bookkeeping, the
// loader owns the state transitions.
package res

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// package errors
var (
	ErrDisposed = errors.New("resource already disposed")
	ErrNotReady = errors.New("resource not ready")
)

// LoadState describes where a resource is in its load lifecycle.
type LoadState int32

const (
	// Pending means the backing data is still being fetched or decoded.
	// A pending resource is fully attachable: it may sit in materials
	// and scenes and will start rendering once it becomes Ready.
	Pending LoadState = iota

	// Ready means the resource has its data and can be uploaded/drawn.
	Ready

	// Failed means the load settled with an error. The resource stays
	// attached wherever it was placed but never produces output.
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", int32(s))
	}
}

// Disposer releases the GPU side of a resource. The active renderer
// implements it; the collector calls it during sweeps.
type Disposer interface {
	DisposeTexture(*Texture) error
	DisposeGeometry(*Geometry) error
}

// state is the settle-once load state machine shared by Texture and
// Geometry. Only the load completion transitions it, exactly once;
// everything else just reads.
type state struct {
	code atomic.Int32
	err  error
	done chan struct{}
}

func newState() state {
	return state{done: make(chan struct{})}
}

func newSettledState() state {
	s := state{done: make(chan struct{})}
	s.code.Store(int32(Ready))
	close(s.done)
	return s
}

// State reports the current load state. Safe from any goroutine.
func (s *state) State() LoadState { return LoadState(s.code.Load()) }

// Err returns the settlement error, if any. Valid after Done is closed.
func (s *state) Err() error { return s.err }

// Done is closed once the resource settles, in either direction.
func (s *state) Done() <-chan struct{} { return s.done }

// settle moves Pending to Ready or Failed. Panics on a second call;
// a resource settles once.
func (s *state) settle(err error) {
	if LoadState(s.code.Load()) != Pending {
		panic("res: resource settled twice")
	}
	if err != nil {
		s.err = err
		s.code.Store(int32(Failed))
	} else {
		s.code.Store(int32(Ready))
	}
	close(s.done)
}

// Wait blocks until the resource settles or ctx ends. On settlement it
// returns the load error, nil if the resource came up Ready.
func (s *state) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// usage is per-frame mark bookkeeping. A frame stamp instead of a
// reset pass keeps re-marking within one frame idempotent. Touched
// only on the frame timeline.
type usage struct {
	frame uint64
	count uint32
}

// mark records a use in the given frame. Reports true on the first
// mark of that frame.
func (u *usage) mark(frame uint64) bool {
	if u.frame != frame {
		u.frame = frame
		u.count = 0
	}
	u.count++
	return u.count == 1
}

// usedIn reports whether the resource was marked during frame.
func (u *usage) usedIn(frame uint64) bool {
	return u.frame == frame && u.count > 0
}

// useCount returns how many times the resource was marked in frame.
func (u *usage) useCount(frame uint64) uint32 {
	if u.frame != frame {
		return 0
	}
	return u.count
}
