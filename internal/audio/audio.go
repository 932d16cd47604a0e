package audio

import (
	"errors"
	"io"
	"math"
	"math/cmplx"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/ballsim/internal/physics"
	"github.com/san-kum/ballsim/internal/sim"
)

const (
	SampleRate = 44100
	BufferSize = 1024

	// Kinetic energy below 10^energyFloor keeps the pad filter closed, and
	// the filter is fully open energySpan decades above that.
	energyFloor = 6.0
	energySpan  = 6.0

	minCutoff  = 300.0
	maxCutoff  = 1200.0
	clickFreq  = 880.0
	clickDecay = 0.03
	maxClicks  = 4
)

// Pad chord: G2, Bb2, D3, F3, A3.
var padFreqs = []float64{98.00, 116.54, 146.83, 174.61, 220.00}

// Processor renders a stereo ambient pad whose low-pass filter opens with
// the kinetic energy of the simulation, plus a short click per collision.
// It implements sim.Observer.
type Processor struct {
	stream *portaudio.Stream
	logger *log.Logger

	mu     sync.Mutex
	energy float64
	hits   int
	low    float64
	mid    float64
	high   float64

	// audio thread state
	time         float64
	energySmooth float64
	filter       [2]float64
	delay        [2][]float64
	head         int
	clickEnv     float64
	last         []float64

	active bool
}

var _ sim.Observer = (*Processor)(nil)

func NewProcessor(logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	delayLen := int(float64(SampleRate) * 0.6)
	return &Processor{
		logger: logger,
		delay:  [2][]float64{make([]float64, delayLen), make([]float64, delayLen)},
		last:   make([]float64, BufferSize),
	}
}

// Start opens the default output device. Input is never opened.
func (p *Processor) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, p.Render)
	if err != nil {
		portaudio.Terminate()
		p.logger.Error("audio output unavailable", "err", err)
		return err
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		p.logger.Error("audio stream failed to start", "err", err)
		return err
	}

	p.logger.Info("audio started", "rate", SampleRate, "buffer", BufferSize)
	p.stream = stream
	p.active = true
	return nil
}

func (p *Processor) Stop() error {
	if !p.active {
		return nil
	}
	p.active = false
	err := errors.Join(p.stream.Stop(), p.stream.Close())
	return errors.Join(err, portaudio.Terminate())
}

func (p *Processor) Active() bool { return p.active }

// OnStep feeds the pad with the total kinetic energy and queues one click
// per contact or wall hit.
func (p *Processor) OnStep(balls []*physics.Ball, r sim.Report) {
	e := physics.TotalKineticEnergy(balls)
	p.mu.Lock()
	p.energy = e
	p.hits += r.Contacts + r.WallHits
	p.mu.Unlock()
}

// Bands returns smoothed low, mid and high levels of the rendered output.
func (p *Processor) Bands() (low, mid, high float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.low, p.mid, p.high
}

// Brightness maps kinetic energy onto [0, 1] on a log scale.
func Brightness(energy float64) float64 {
	b := (math.Log10(1+max(energy, 0)) - energyFloor) / energySpan
	return min(max(b, 0), 1)
}

// Cutoff is the pad filter frequency for a given energy.
func Cutoff(energy float64) float64 {
	return minCutoff + Brightness(energy)*(maxCutoff-minCutoff)
}

// Triangle Wave: Smooth, flute-like, no harsh buzz
func triangle(phase float64) float64 {
	ph := phase - math.Floor(phase)
	return 4.0*math.Abs(ph-0.5) - 1.0
}

// Low Pass Filter (One Pole)
func lpf(sample, cutoff, dt, state float64) float64 {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	return state + alpha*(sample-state)
}

// Render fills out with one block of stereo samples. It is the portaudio
// callback and runs on the audio thread.
func (p *Processor) Render(out [][]float32) {
	p.mu.Lock()
	target := p.energy
	hits := p.hits
	p.hits = 0
	p.mu.Unlock()

	if hits > 0 {
		p.clickEnv = min(p.clickEnv+0.25*float64(min(hits, maxClicks)), 1)
	}

	p.energySmooth = p.energySmooth*0.995 + target*0.005
	cutoff := Cutoff(p.energySmooth)
	dt := 1.0 / float64(SampleRate)
	decay := math.Exp(-dt / clickDecay)
	vol := 0.252

	n := len(out[0])
	if len(p.last) != n {
		p.last = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		sampleL, sampleR := 0.0, 0.0
		g := 1.0 / float64(len(padFreqs))
		for j, f := range padFreqs {
			lfo := math.Sin(p.time*0.2 + float64(j))
			sampleL += triangle(p.time*f*0.999) * g * (0.7 + 0.3*lfo)
			sampleR += triangle(p.time*f*1.001) * g * (0.7 + 0.3*lfo)
		}

		p.filter[0] = lpf(sampleL, cutoff, dt, p.filter[0])
		p.filter[1] = lpf(sampleR, cutoff, dt, p.filter[1])

		click := math.Sin(2*math.Pi*clickFreq*p.time) * p.clickEnv * 0.3
		p.clickEnv *= decay

		delayL := p.delay[0][p.head]
		delayR := p.delay[1][p.head]
		mixL := p.filter[0] + click + delayL*0.3 + delayR*0.1
		mixR := p.filter[1] + click + delayR*0.3 + delayL*0.1
		p.delay[0][p.head] = mixL * 0.7
		p.delay[1][p.head] = mixR * 0.7
		p.head = (p.head + 1) % len(p.delay[0])

		out[0][i] = float32(mixL * vol)
		out[1][i] = float32(mixR * vol)
		p.last[i] = mixL * vol

		p.time += dt
	}

	p.analyze()
}

// analyze splits the last block into three bands and smooths them.
func (p *Processor) analyze() {
	n := len(p.last)
	if n == 0 {
		return
	}
	block := append([]float64(nil), p.last...)
	window.Apply(block, window.Hann)
	bins := fft.FFTReal(block)

	var low, mid, high float64
	for i := 1; i < n/2; i++ {
		mag := cmplx.Abs(bins[i]) / float64(n)
		switch hz := float64(i) * SampleRate / float64(n); {
		case hz < 250:
			low += mag
		case hz < 2000:
			mid += mag
		default:
			high += mag
		}
	}

	p.mu.Lock()
	p.low = p.low*0.9 + min(low, 1)*0.1
	p.mid = p.mid*0.9 + min(mid, 1)*0.1
	p.high = p.high*0.9 + min(high, 1)*0.1
	p.mu.Unlock()
}
