// Package graph is a small Web-Audio style processing graph: nodes with
// automatable parameters, connected by edges and pulled one frame at a time
// from a single destination. Control code schedules parameter changes in
// context time (seconds); the audio side renders frames and fires timers
// between render blocks.
package graph

import (
	"errors"
	"math"
	"sync"
)

// MaxDelaySeconds bounds every Delay node's buffer.
const MaxDelaySeconds = 5.0

const renderChunk = 512

type Context struct {
	mu         sync.Mutex
	sampleRate float64
	frame      int64
	dest       *Destination
	delays     []*Delay
	ending     []*Oscillator
	timers     timerQueue
	timerSeq   uint64
	scratch    []float32
}

func NewContext(sampleRate int) (*Context, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	c := &Context{sampleRate: float64(sampleRate)}
	c.dest = &Destination{}
	c.dest.init(c, c.dest)
	return c, nil
}

func (c *Context) SampleRate() int { return int(c.sampleRate) }

func (c *Context) Destination() *Destination { return c.dest }

// CurrentTime returns the context time in seconds of the next frame to be
// rendered.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowLocked()
}

func (c *Context) nowLocked() float64 {
	return float64(c.frame) / c.sampleRate
}

func (c *Context) frameAt(t float64) int64 {
	return int64(math.Ceil(t*c.sampleRate - 1e-9))
}

// Render fills dst with interleaved stereo frames. Timers due inside the
// requested span fire between blocks, on the calling goroutine, with the
// graph unlocked so they may schedule further changes.
func (c *Context) Render(dst []float32) {
	frames := len(dst) / 2
	done := 0
	for done < frames {
		c.runDueTimers()
		c.mu.Lock()
		n := frames - done
		if next, ok := c.timers.peekFrame(); ok && next > c.frame && int(next-c.frame) < n {
			n = int(next - c.frame)
		}
		for i := 0; i < n; i++ {
			v := float32(clamp(c.renderFrameLocked(), -1, 1))
			dst[(done+i)*2] = v
			dst[(done+i)*2+1] = v
		}
		c.reapLocked()
		c.mu.Unlock()
		done += n
	}
	c.runDueTimers()
}

// Advance renders and discards the given span of audio. It is the offline
// way of letting context time pass and must not race with Render.
func (c *Context) Advance(seconds float64) {
	frames := int(math.Round(seconds * c.sampleRate))
	for frames > 0 {
		n := min(frames, renderChunk)
		if cap(c.scratch) < n*2 {
			c.scratch = make([]float32, renderChunk*2)
		}
		c.Render(c.scratch[:n*2])
		frames -= n
	}
	c.runDueTimers()
}

func (c *Context) renderFrameLocked() float64 {
	f := c.frame
	v := c.dest.output(f)
	for _, d := range c.delays {
		d.write(f)
	}
	c.frame++
	return v
}

// reapLocked detaches oscillators whose stop time has passed.
func (c *Context) reapLocked() {
	if len(c.ending) == 0 {
		return
	}
	kept := c.ending[:0]
	for _, o := range c.ending {
		if o.stopFrame <= c.frame {
			o.detachLocked()
			continue
		}
		kept = append(kept, o)
	}
	for i := len(kept); i < len(c.ending); i++ {
		c.ending[i] = nil
	}
	c.ending = kept
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
