package graph

import (
	"math"

	"github.com/cbegin/polysynth-go/internal/wave"
)

// Destination is the context's sink; everything audible is connected to it.
type Destination struct {
	node
}

func (d *Destination) process(f int64, _ float64) float64 {
	return d.sumInputs(f)
}

// Gain scales its summed input by the Gain param.
type Gain struct {
	node
	Gain *Param
}

func (c *Context) NewGain(gain float64) *Gain {
	g := &Gain{}
	g.init(c, g)
	g.Gain = g.param("gain", gain)
	return g
}

func (g *Gain) process(f int64, t float64) float64 {
	if len(g.inputs) == 0 {
		return 0
	}
	return g.sumInputs(f) * g.Gain.computedLocked(f, t)
}

// Oscillator is a periodic source. Detune is in cents and is applied on top
// of Frequency, so pitch modulation connects to Detune.
type Oscillator struct {
	node
	Frequency *Param
	Detune    *Param

	shape      wave.Shape
	phase      float64
	startFrame int64
	stopFrame  int64
	stopping   bool
}

func (c *Context) NewOscillator(shape wave.Shape, frequency float64) *Oscillator {
	o := &Oscillator{shape: shape, startFrame: -1, stopFrame: math.MaxInt64}
	o.init(c, o)
	o.Frequency = o.param("frequency", frequency)
	o.Detune = o.param("detune", 0)
	return o
}

func (o *Oscillator) Shape() wave.Shape {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.shape
}

func (o *Oscillator) SetShape(s wave.Shape) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	o.shape = s
}

// Start begins output at context time t (or immediately if t has passed).
// Starting twice is a no-op.
func (o *Oscillator) Start(t float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	if o.startFrame >= 0 {
		return
	}
	o.startFrame = max(o.ctx.frameAt(t), o.ctx.frame)
}

// Stop ends output at context time t. Once that time has been rendered the
// oscillator detaches itself from the graph. A later Stop replaces an
// earlier one that has not happened yet.
func (o *Oscillator) Stop(t float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	if o.stopFrame <= o.ctx.frame {
		return
	}
	o.stopFrame = max(o.ctx.frameAt(t), o.ctx.frame)
	if !o.stopping {
		o.stopping = true
		o.ctx.ending = append(o.ctx.ending, o)
	}
}

// Ended reports whether the oscillator's stop time has been rendered.
func (o *Oscillator) Ended() bool {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.stopFrame <= o.ctx.frame
}

func (o *Oscillator) process(f int64, t float64) float64 {
	if o.startFrame < 0 || f < o.startFrame || f >= o.stopFrame {
		return 0
	}
	freq := o.Frequency.computedLocked(f, t)
	if cents := o.Detune.computedLocked(f, t); cents != 0 {
		freq *= math.Pow(2, cents/1200)
	}
	v := o.shape.Sample(o.phase)
	o.phase += freq / o.ctx.sampleRate
	o.phase -= math.Floor(o.phase)
	return v
}

// Filter is a resonant biquad lowpass.
type Filter struct {
	node
	Frequency *Param
	Q         *Param

	lastFreq, lastQ    float64
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (c *Context) NewFilter(frequency, q float64) *Filter {
	fl := &Filter{lastFreq: -1}
	fl.init(c, fl)
	fl.Frequency = fl.param("frequency", frequency)
	fl.Q = fl.param("q", q)
	return fl
}

func (fl *Filter) process(f int64, t float64) float64 {
	in := fl.sumInputs(f)
	freq := clamp(fl.Frequency.computedLocked(f, t), 10, fl.ctx.sampleRate*0.49)
	q := math.Max(fl.Q.computedLocked(f, t), 0.0001)
	if freq != fl.lastFreq || q != fl.lastQ {
		fl.design(freq, q)
	}
	y := fl.b0*in + fl.b1*fl.x1 + fl.b2*fl.x2 - fl.a1*fl.y1 - fl.a2*fl.y2
	fl.x2, fl.x1 = fl.x1, in
	fl.y2, fl.y1 = fl.y1, y
	return y
}

// design computes RBJ cookbook lowpass coefficients normalised by a0.
func (fl *Filter) design(freq, q float64) {
	fl.lastFreq, fl.lastQ = freq, q
	w0 := 2 * math.Pi * freq / fl.ctx.sampleRate
	cosW, sinW := math.Cos(w0), math.Sin(w0)
	alpha := sinW / (2 * q)
	a0 := 1 + alpha
	fl.b0 = (1 - cosW) / 2 / a0
	fl.b1 = (1 - cosW) / a0
	fl.b2 = fl.b0
	fl.a1 = -2 * cosW / a0
	fl.a2 = (1 - alpha) / a0
}

// Delay outputs its input DelayTime seconds later. Its output never pulls
// its input within the same frame, which is what makes feedback cycles
// through a Delay legal.
type Delay struct {
	node
	DelayTime *Param

	buf []float64
}

func (c *Context) NewDelay(delaySeconds float64) *Delay {
	d := &Delay{buf: make([]float64, int(MaxDelaySeconds*c.sampleRate)+2)}
	d.init(c, d)
	d.DelayTime = d.param("delayTime", delaySeconds)
	c.mu.Lock()
	c.delays = append(c.delays, d)
	c.mu.Unlock()
	return d
}

func (d *Delay) process(f int64, t float64) float64 {
	n := int64(len(d.buf))
	samples := clamp(d.DelayTime.computedLocked(f, t)*d.ctx.sampleRate, 1, float64(n-2))
	pos := float64(f) - samples
	if pos < 0 {
		return 0
	}
	i0 := int64(pos)
	frac := pos - float64(i0)
	a := d.buf[i0%n]
	b := d.buf[(i0+1)%n]
	return a + (b-a)*frac
}

func (d *Delay) write(f int64) {
	d.buf[f%int64(len(d.buf))] = d.sumInputs(f)
}
