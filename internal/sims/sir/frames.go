package sir

import "epigrid/internal/core"

// DefaultMaxFrames is the default cap on retained snapshots per run.
const DefaultMaxFrames = 512

// Frame is a retained grid snapshot at time T.
type Frame struct {
	T    int
	Grid *core.Grid
}

// FrameBuffer retains at most max snapshots of a run. It keeps every frame
// whose time is a multiple of the current stride; when it overflows it drops
// every other frame and doubles the stride, so the retained set always starts
// at t=0 and covers the whole run at an even spacing.
type FrameBuffer struct {
	max    int
	stride int
	frames []Frame
}

// NewFrameBuffer returns a buffer holding at most max frames. max < 1 is
// treated as 1.
func NewFrameBuffer(max int) *FrameBuffer {
	if max < 1 {
		max = 1
	}
	return &FrameBuffer{max: max, stride: 1}
}

// Offer stores a copy of g when t falls on the current stride.
func (b *FrameBuffer) Offer(t int, g *core.Grid) {
	if b == nil || t%b.stride != 0 {
		return
	}
	b.frames = append(b.frames, Frame{T: t, Grid: g.Clone()})
	if len(b.frames) <= b.max {
		return
	}
	kept := b.frames[:0]
	for i := 0; i < len(b.frames); i += 2 {
		kept = append(kept, b.frames[i])
	}
	clear(b.frames[len(kept):])
	b.frames = kept
	b.stride *= 2
}

// Frames returns the retained snapshots in time order.
func (b *FrameBuffer) Frames() []Frame {
	if b == nil {
		return nil
	}
	return b.frames
}

// Stride reports the current spacing between retained frames.
func (b *FrameBuffer) Stride() int {
	if b == nil {
		return 0
	}
	return b.stride
}

// Cap returns the configured maximum.
func (b *FrameBuffer) Cap() int {
	if b == nil {
		return 0
	}
	return b.max
}
