// Package stats wraps go-metrics to give the orchestrator and both search
// drivers a StatsReceiver they can scope per component and use to report
// iteration/generation counts, fitness gauges, and step latency, without
// coupling callers to a particular metrics backend.
//
// Original license: github.com/rcrowley/go-metrics/blob/master/LICENSE
package stats

import (
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
)

// For testing.
var Time StatsTime = DefaultStatsTime()

// StatsReceiver is a namespaced source of the instruments the orchestrator
// and search drivers report through: an event Counter, a float-valued
// GaugeFloat, and a Latency timer.
//
// Hierarchical names are stored using a '/' path separator. Variadic name
// elements passed to any method have '/' characters in their names replaced
// by "_SLASH_" before use, since scopes are sometimes dynamically generated.
type StatsReceiver interface {
	// Scope returns a receiver that namespaces every instrument it creates
	// with the given scope args.
	//
	//   statsReceiver.Scope("pso").Counter("iterations") // same stat as
	//   statsReceiver.Counter("pso", "iterations")
	Scope(scope ...string) StatsReceiver

	// Counter provides an event counter.
	Counter(name ...string) Counter

	// GaugeFloat holds a float64 value that can be set arbitrarily.
	GaugeFloat(name ...string) GaugeFloat

	// Latency times a callsite, in nanoseconds.
	Latency(name ...string) Latency
}

// DefaultStatsReceiver returns a StatsReceiver backed by a fresh go-metrics
// registry.
func DefaultStatsReceiver() StatsReceiver {
	return &defaultStatsReceiver{registry: metrics.NewRegistry()}
}

type defaultStatsReceiver struct {
	registry metrics.Registry
	scope    []string
}

func (s *defaultStatsReceiver) Scope(scope ...string) StatsReceiver {
	return &defaultStatsReceiver{s.registry, s.scoped(scope...)}
}

func (s *defaultStatsReceiver) Counter(name ...string) Counter {
	return s.registry.GetOrRegister(s.scopedName(name...), metrics.NewCounter).(metrics.Counter)
}

func (s *defaultStatsReceiver) GaugeFloat(name ...string) GaugeFloat {
	return s.registry.GetOrRegister(s.scopedName(name...), metrics.NewGaugeFloat64).(metrics.GaugeFloat64)
}

func (s *defaultStatsReceiver) Latency(name ...string) Latency {
	return s.registry.GetOrRegister(s.scopedName(name...), newLatency).(Latency)
}

// Append to existing scope and scrub slashes.
func (s *defaultStatsReceiver) scoped(scope ...string) []string {
	for i, e := range scope {
		scope[i] = strings.Replace(e, "/", "_SLASH_", -1)
	}
	return append(s.scope[:], scope...)
}

// Append to the existing scope and convert to slash-delimited string.
func (s *defaultStatsReceiver) scopedName(scope ...string) string {
	return strings.Join(s.scoped(scope...), "/")
}

// NilStatsReceiver discards every update. Drivers and the orchestrator fall
// back to it whenever a caller passes a nil StatsReceiver.
func NilStatsReceiver(scope ...string) StatsReceiver {
	return &nilStatsReceiver{}
}

type nilStatsReceiver struct{}

func (s *nilStatsReceiver) Scope(scope ...string) StatsReceiver { return s }
func (s *nilStatsReceiver) Counter(name ...string) Counter       { return &metrics.NilCounter{} }
func (s *nilStatsReceiver) GaugeFloat(name ...string) GaugeFloat {
	return &metrics.NilGaugeFloat64{}
}
func (s *nilStatsReceiver) Latency(name ...string) Latency { return newNilLatency() }

// Counter mirrors the subset of go-metrics' Counter this module reports
// through.
type Counter interface {
	Count() int64
	Inc(int64)
}

// GaugeFloat mirrors go-metrics' GaugeFloat64.
type GaugeFloat interface {
	Update(float64)
	Value() float64
}

// Latency records callsite duration into an underlying histogram. Time()
// marks the start; Stop() records the elapsed duration and returns.
type Latency interface {
	Time() Latency
	Stop()
}

type metricLatency struct {
	metrics.Histogram
	start time.Time
}

func (l *metricLatency) Time() Latency { l.start = Time.Now(); return l }
func (l *metricLatency) Stop()         { l.Update(Time.Since(l.start).Nanoseconds()) }
func newLatency() Latency {
	return &metricLatency{Histogram: metrics.NewHistogram(metrics.NewUniformSample(1000))}
}

type nilLatency struct{}

func (l *nilLatency) Time() Latency { return l }
func (l *nilLatency) Stop()         {}
func newNilLatency() Latency        { return &nilLatency{} }
