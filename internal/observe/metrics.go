// SPDX-License-Identifier: EPL-2.0

// Package observe exports engine counters and transport state as
// OpenTelemetry metrics.
//
// Every instrument is asynchronous: values are read from the engine when a
// reader collects, so the render path never touches the SDK. A Prometheus
// exporter bridge is available via [InitProvider]; tests pass their own
// [metric.MeterProvider] to [Register].
package observe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/ik5/audplayer/player"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/ik5/audplayer"

// Engine is the part of player.Engine that is observed.
type Engine interface {
	Stats() player.Stats
	PlayState() player.PlayState
	Position() float64
	Volume() float32
}

// DropCounter reports discarded control messages, as midi.Queue does.
type DropCounter interface {
	Dropped() uint64
}

// Register creates the audplayer instruments on mp and binds them to e.
// drops may be nil. Unregister the returned registration to detach.
func Register(mp metric.MeterProvider, e Engine, drops DropCounter) (metric.Registration, error) {
	m := mp.Meter(meterName)

	counters := []struct {
		name, desc, unit string
		value            func(player.Stats) uint64
		inst             metric.Int64ObservableCounter
	}{
		{name: "audplayer.render.periods", desc: "Render periods processed.", unit: "{period}", value: func(s player.Stats) uint64 { return s.Periods }},
		{name: "audplayer.render.frames", desc: "Frames rendered from file data.", unit: "{frame}", value: func(s player.Stats) uint64 { return s.Frames }},
		{name: "audplayer.render.xruns", desc: "Buffer underruns.", unit: "{xrun}", value: func(s player.Stats) uint64 { return s.Xruns }},
		{name: "audplayer.producer.fills", desc: "Buffers filled by the producer.", unit: "{buffer}", value: func(s player.Stats) uint64 { return s.Fills }},
		{name: "audplayer.producer.seeks", desc: "Repositions performed.", unit: "{seek}", value: func(s player.Stats) uint64 { return s.Seeks }},
		{name: "audplayer.producer.loops", desc: "Loop restarts.", unit: "{loop}", value: func(s player.Stats) uint64 { return s.Loops }},
		{name: "audplayer.producer.errors", desc: "Read and seek failures.", unit: "{error}", value: func(s player.Stats) uint64 { return s.Errors }},
	}

	observables := make([]metric.Observable, 0, len(counters)+4)
	for i := range counters {
		c := &counters[i]
		inst, err := m.Int64ObservableCounter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("observe: %s: %w", c.name, err)
		}
		c.inst = inst
		observables = append(observables, inst)
	}

	position, err := m.Float64ObservableGauge("audplayer.playback.position",
		metric.WithDescription("Playback position."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: position: %w", err)
	}
	volume, err := m.Float64ObservableGauge("audplayer.playback.volume",
		metric.WithDescription("Output level, 0 to 2."),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: volume: %w", err)
	}
	state, err := m.Int64ObservableGauge("audplayer.playback.state",
		metric.WithDescription("Transport state: 0 stopped, 1 starting, 2 playing, 3 stopping."),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: state: %w", err)
	}
	dropped, err := m.Int64ObservableCounter("audplayer.midi.dropped",
		metric.WithDescription("Control messages dropped because the queue was full."),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: dropped: %w", err)
	}
	observables = append(observables, position, volume, state, dropped)

	return m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := e.Stats()
		for _, c := range counters {
			o.ObserveInt64(c.inst, int64(c.value(stats)))
		}
		o.ObserveFloat64(position, e.Position())
		o.ObserveFloat64(volume, float64(e.Volume()))
		o.ObserveInt64(state, int64(e.PlayState()))
		if drops != nil {
			o.ObserveInt64(dropped, int64(drops.Dropped()))
		}
		return nil
	}, observables...)
}
