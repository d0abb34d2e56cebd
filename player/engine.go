// SPDX-License-Identifier: EPL-2.0

package player

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audplayer/audio"
)

// Defaults used by New for zero Options fields.
const (
	DefaultBufferSamples = 200000
	DefaultPollInterval  = 10 * time.Millisecond
	DefaultQuality       = audio.QualityBest
	DefaultNotifyDelta   = 0.1 // seconds
	MaxVolume            = 2.0

	// TrackMix selects the mix of the stereo pairs instead of one channel.
	TrackMix = -1
)

// Options configures an Engine.
type Options struct {
	// OutputRate is the sample rate of the render step. Required.
	OutputRate int
	// BufferSamples is the capacity of each half of the double buffer, in
	// interleaved samples.
	BufferSamples int
	// PollInterval is how often the producer checks for work.
	PollInterval time.Duration
	// Quality is the initial conversion quality.
	Quality audio.Quality
	// Registry resolves file extensions to decoders. Required.
	Registry *audio.Registry
	// Logger receives producer and control-surface logs. Defaults to
	// slog.Default().
	Logger *slog.Logger
	// Level, when set, is switched between debug and info by SetDebug.
	Level *slog.LevelVar
	// Notify, when set, receives changes of the transport and control
	// values. It is called from the producer goroutine of the open file.
	Notify NotifyFunc
}

// Engine streams one audio file at a time into a real-time render step.
//
// The control surface methods may be called from any goroutine. Render is
// called by a single real-time goroutine and takes no locks.
type Engine struct {
	rate    int
	bufSize int
	poll    time.Duration
	reg     *audio.Registry
	log     *slog.Logger
	level   *slog.LevelVar
	notify  NotifyFunc

	buffers [2]*Buffer
	info    atomic.Pointer[StreamInfo]

	// mu serialises Open and Close.
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	playState  atomic.Uint32
	seekState  atomic.Uint32
	seekGen    atomic.Uint64
	seekTarget atomic.Int64 // output frames
	position   atomic.Int64 // output frames; written by Render, or by the producer while a seek gates Render
	epoch      atomic.Uint64
	more       atomic.Bool
	loop       atomic.Bool
	volume     atomic.Uint32 // float32 bits
	quality    atomic.Uint32
	debug      atomic.Bool
	loopStart  atomic.Int64 // source frames
	loopEnd    atomic.Int64 // source frames
	trackA     atomic.Int32
	trackB     atomic.Int32
	notifyPos  atomic.Uint64 // float64 seconds bits

	// Owned by Render. active is atomic only so the producer can read it.
	active    atomic.Int32
	cursor    int
	seenEpoch uint64

	stats counters
}

// New builds an idle engine and allocates both buffers.
func New(opts Options) (*Engine, error) {
	if opts.OutputRate <= 0 {
		return nil, ErrInvalidOutputRate
	}
	if opts.Registry == nil {
		return nil, ErrNoRegistry
	}
	if opts.BufferSamples < 0 {
		return nil, ErrInvalidBufferSize
	}
	if opts.BufferSamples == 0 {
		opts.BufferSamples = DefaultBufferSamples
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if !opts.Quality.Valid() {
		return nil, audio.ErrInvalidQuality
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Engine{
		rate:    opts.OutputRate,
		bufSize: opts.BufferSamples,
		poll:    opts.PollInterval,
		reg:     opts.Registry,
		log:     opts.Logger.With("component", "player"),
		level:   opts.Level,
		notify:  opts.Notify,
	}
	e.buffers[0] = newBuffer(opts.BufferSamples)
	e.buffers[1] = newBuffer(opts.BufferSamples)
	e.volume.Store(math.Float32bits(1))
	e.quality.Store(uint32(opts.Quality))
	e.notifyPos.Store(math.Float64bits(DefaultNotifyDelta))

	return e, nil
}

// OutputRate returns the render sample rate.
func (e *Engine) OutputRate() int { return e.rate }

// Open closes any open file, then opens path and starts its producer.
// Playback starts stopped at position 0. On failure the engine is left
// closed.
func (e *Engine) Open(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closeLocked()

	src, err := OpenSource(path, e.reg, e.rate, e.ConversionQuality(), e.bufSize)
	if err != nil {
		e.log.Warn("open failed", "file", path, "err", err)
		return err
	}

	p := e.attach(src)
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	go p.run(ctx, e.done)

	info := src.Info()
	e.log.Info("opened",
		"file", path,
		"format", info.Format,
		"rate", info.SampleRate,
		"channels", info.Channels,
		"frames", info.Frames,
		"ratio", src.Ratio(),
	)
	return nil
}

// attach resets the transport for src and returns its producer, not yet
// running.
func (e *Engine) attach(src *Source) *producer {
	e.buffers[0].reset()
	e.buffers[1].reset()
	e.playState.Store(uint32(Stopped))
	e.position.Store(0)
	e.more.Store(true)

	e.seekTarget.Store(0)
	e.seekGen.Add(1)
	e.seekState.Store(uint32(SeekSeeking))

	info := src.Info()
	e.loopStart.Store(0)
	e.loopEnd.Store(info.Frames)
	e.trackA.Store(0)
	e.trackB.Store(0)
	if info.Channels > 1 {
		e.trackB.Store(1)
	}
	e.info.Store(&info)

	return newProducer(e, src)
}

// Close stops playback, joins the producer and releases the file. It is
// a no-op when nothing is open.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked()
}

func (e *Engine) closeLocked() {
	if e.cancel == nil {
		return
	}

	e.Stop()
	name := e.Filename()
	e.info.Store(nil)
	e.cancel()
	<-e.done
	e.cancel = nil
	e.done = nil

	e.playState.Store(uint32(Stopped))
	e.seekState.Store(uint32(SeekIdle))
	e.log.Info("closed", "file", name)
}

func (e *Engine) stream() (StreamInfo, bool) {
	info := e.info.Load()
	if info == nil {
		return StreamInfo{}, false
	}
	return *info, true
}

// IsOpen reports whether a file is open.
func (e *Engine) IsOpen() bool { return e.info.Load() != nil }

// Filename returns the open file's path, or "".
func (e *Engine) Filename() string {
	info, _ := e.stream()
	return info.Filename
}

// Duration returns the open file's length in seconds, or 0.
func (e *Engine) Duration() float64 {
	info, _ := e.stream()
	return info.Duration()
}

// SampleRate returns the open file's sample rate, or 0.
func (e *Engine) SampleRate() int {
	info, _ := e.stream()
	return info.SampleRate
}

// Channels returns the open file's channel count, or 0.
func (e *Engine) Channels() int {
	info, _ := e.stream()
	return info.Channels
}

// Frames returns the open file's length in source frames, or 0.
func (e *Engine) Frames() int64 {
	info, _ := e.stream()
	return info.Frames
}

// Format returns the open file's container format, or "".
func (e *Engine) Format() string {
	info, _ := e.stream()
	return info.Format
}

// ratio returns outputRate/sourceRate for the open file.
func (e *Engine) ratio(info StreamInfo) float64 {
	if info.SampleRate <= 0 {
		return 1
	}
	return float64(e.rate) / float64(info.SampleRate)
}

// SetPosition requests a seek to seconds, clamped to the file. It is
// ignored when nothing is open. The render step outputs silence until the
// producer has refilled the buffers from the new position.
func (e *Engine) SetPosition(seconds float64) {
	info, ok := e.stream()
	if !ok || math.IsNaN(seconds) {
		return
	}

	limit := math.Round(float64(info.Frames) * e.ratio(info))
	target := int64(max(0, min(math.Round(seconds*float64(e.rate)), limit)))

	e.seekTarget.Store(target)
	e.seekGen.Add(1)
	e.seekState.Store(uint32(SeekSeeking))

	if e.debug.Load() {
		e.log.Debug("seek requested", "seconds", seconds, "frame", target)
	}
}

// Position returns the playback position in seconds. While a seek is in
// progress it reports the requested position.
func (e *Engine) Position() float64 {
	frame := e.position.Load()
	if SeekState(e.seekState.Load()) != SeekIdle {
		frame = e.seekTarget.Load()
	}
	return float64(frame) / float64(e.rate)
}

// SetLoop enables or disables looping. Enabling it after the end of the
// file was reached lets the producer restart from the beginning.
func (e *Engine) SetLoop(on bool) {
	e.loop.Store(on)
	if on {
		e.more.Store(true)
	}
}

// Loop reports whether looping is enabled.
func (e *Engine) Loop() bool { return e.loop.Load() }

// SetLoopStart sets the point looping restarts from, in seconds. It is
// rejected when nothing is open or the point is not before the loop end.
func (e *Engine) SetLoopStart(seconds float64) bool {
	info, ok := e.stream()
	if !ok || math.IsNaN(seconds) || seconds < 0 {
		return false
	}

	frame := int64(seconds * float64(info.SampleRate))
	if frame >= e.loopEnd.Load() {
		return false
	}
	e.loopStart.Store(frame)

	if e.Position() < seconds {
		e.SetPosition(e.Position())
	}
	return true
}

// LoopStart returns the loop start in seconds, or 0.
func (e *Engine) LoopStart() float64 {
	info, ok := e.stream()
	if !ok || info.SampleRate <= 0 {
		return 0
	}
	return float64(e.loopStart.Load()) / float64(info.SampleRate)
}

// SetLoopEnd sets the point looping wraps at, in seconds. It is rejected
// when nothing is open or the point is not after the loop start and
// within the file.
func (e *Engine) SetLoopEnd(seconds float64) bool {
	info, ok := e.stream()
	if !ok || math.IsNaN(seconds) || seconds < 0 {
		return false
	}

	frame := int64(seconds * float64(info.SampleRate))
	if frame <= e.loopStart.Load() || frame > info.Frames {
		return false
	}
	e.loopEnd.Store(frame)

	if e.Position() > seconds {
		e.SetPosition(e.Position())
	}
	return true
}

// LoopEnd returns the loop end in seconds, or 0.
func (e *Engine) LoopEnd() float64 {
	info, ok := e.stream()
	if !ok || info.SampleRate <= 0 {
		return 0
	}
	return float64(e.loopEnd.Load()) / float64(info.SampleRate)
}

// SetTrackA selects the file channel played on output A, or TrackMix for
// the mix of the even channels. Mono files always play channel 0.
func (e *Engine) SetTrackA(track int) bool { return e.setTrack(&e.trackA, track) }

// SetTrackB selects the file channel played on output B, or TrackMix for
// the mix of the odd channels.
func (e *Engine) SetTrackB(track int) bool { return e.setTrack(&e.trackB, track) }

func (e *Engine) setTrack(dst *atomic.Int32, track int) bool {
	info, ok := e.stream()
	if !ok || track < TrackMix || track >= info.Channels {
		return false
	}
	if info.Channels == 1 {
		track = 0
	}
	dst.Store(int32(track))
	return true
}

// TrackA returns the selection for output A, or 0 when nothing is open.
func (e *Engine) TrackA() int {
	if !e.IsOpen() {
		return 0
	}
	return int(e.trackA.Load())
}

// TrackB returns the selection for output B, or 0 when nothing is open.
func (e *Engine) TrackB() int {
	if !e.IsOpen() {
		return 0
	}
	return int(e.trackB.Load())
}

// SetPositionNotifyDelta sets how far, in seconds, the position must move
// before it is notified again. Negative values are rejected.
func (e *Engine) SetPositionNotifyDelta(seconds float64) bool {
	if !(seconds >= 0) {
		return false
	}
	e.notifyPos.Store(math.Float64bits(seconds))
	return true
}

// PositionNotifyDelta returns the position notification threshold in seconds.
func (e *Engine) PositionNotifyDelta() float64 {
	return math.Float64frombits(e.notifyPos.Load())
}

// Play starts playback on the next render period. It is ignored when
// nothing is open or the engine is already playing.
func (e *Engine) Play() {
	if !e.IsOpen() {
		return
	}
	for {
		s := e.playState.Load()
		if PlayState(s) == Playing || PlayState(s) == Starting {
			return
		}
		if e.playState.CompareAndSwap(s, uint32(Starting)) {
			return
		}
	}
}

// Stop silences output from the next render period. Stopping a stopped
// engine does nothing.
func (e *Engine) Stop() {
	for {
		s := e.playState.Load()
		if PlayState(s) == Stopped || PlayState(s) == Stopping {
			return
		}
		if e.playState.CompareAndSwap(s, uint32(Stopping)) {
			return
		}
	}
}

// PlayState returns the transport state.
func (e *Engine) PlayState() PlayState { return PlayState(e.playState.Load()) }

// SeekState returns the state of the seek handshake.
func (e *Engine) SeekState() SeekState { return SeekState(e.seekState.Load()) }

// SetVolume sets the output level. Values outside 0..MaxVolume are
// rejected and leave the level unchanged.
func (e *Engine) SetVolume(level float32) bool {
	if !(level >= 0 && level <= MaxVolume) {
		return false
	}
	e.volume.Store(math.Float32bits(level))
	return true
}

// Volume returns the output level.
func (e *Engine) Volume() float32 { return math.Float32frombits(e.volume.Load()) }

// SetConversionQuality selects the converter used for files opened from
// now on. Invalid values are rejected.
func (e *Engine) SetConversionQuality(q audio.Quality) bool {
	if !q.Valid() {
		return false
	}
	e.quality.Store(uint32(q))
	return true
}

// ConversionQuality returns the quality used for the next opened file.
func (e *Engine) ConversionQuality() audio.Quality { return audio.Quality(e.quality.Load()) }

// SetDebug toggles verbose logging.
func (e *Engine) SetDebug(on bool) {
	e.debug.Store(on)
	if e.level == nil {
		return
	}
	if on {
		e.level.Set(slog.LevelDebug)
	} else {
		e.level.Set(slog.LevelInfo)
	}
}

// Debug reports whether verbose logging is on.
func (e *Engine) Debug() bool { return e.debug.Load() }

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats { return e.stats.snapshot() }

// Formats lists the file extensions the engine can open.
func (e *Engine) Formats() []string { return e.reg.Formats() }

// FileDuration probes path with the engine's registry.
func (e *Engine) FileDuration(path string) float64 { return FileDuration(path, e.reg) }

// FileInfo reads tag key of path with the engine's registry.
func (e *Engine) FileInfo(path, key string) string { return FileInfo(path, key, e.reg) }
