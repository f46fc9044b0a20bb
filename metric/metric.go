// Package metric captures per-stage counters of a conversion.
package metric

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metric contains stage Meters.
type Metric struct {
	m      sync.Mutex
	meters map[string]map[string]*atomic.Value
}

// Measure is a snapshot of full metric with all counters.
type Measure map[string]map[string]interface{}

// addCounters to the metric. Metric used to generate measures for all counters.
//
// If id matches with existing counters, those will be replaced with the new one.
// If no match found, new counters is added and returned.
func (m *Metric) addCounters(id string, counters ...string) map[string]*atomic.Value {
	m.m.Lock()
	defer m.m.Unlock()

	if m.meters == nil {
		m.meters = make(map[string]map[string]*atomic.Value)
	} else {
		delete(m.meters, id)
	}

	meter := make(map[string]*atomic.Value)
	for _, counter := range counters {
		meter[counter] = &atomic.Value{}
	}

	m.meters[id] = meter
	return meter
}

// Measure returns Metric's measures.
func (m *Metric) Measure() Measure {
	if m == nil {
		return nil
	}
	r := make(map[string]map[string]interface{})
	m.m.Lock()
	defer m.m.Unlock()

	for meterName, meter := range m.meters {
		meterValues := make(map[string]interface{})
		for counterName, counter := range meter {
			meterValues[counterName] = counter.Load()
		}
		r[meterName] = meterValues
	}

	return r
}

// Meter creates new meter with stage counters. Nil metric returns nil
// meter, all Meter methods are safe to call on nil.
func (m *Metric) Meter(stage string, sampleRate int) *Meter {
	if m == nil {
		return nil
	}
	meter := Meter{
		sampleRate: sampleRate,
		startedAt:  time.Now(),
	}

	meter.counters = m.addCounters(stage, stageCounters...)
	store(meter.counters, StartCounter, meter.startedAt)

	return &meter
}

// Meter contains all stage counters.
type Meter struct {
	counters   map[string]*atomic.Value
	sampleRate int
	startedAt  time.Time     // StartCounter
	blocks     int64         // BlockCounter
	samples    int64         // SampleCounter
	bytes      int64         // ByteCounter
	elapsed    time.Duration // ElapsedCounter
	duration   time.Duration // DurationCounter
}

// Block captures metrics after a block of s samples per channel is processed.
func (m *Meter) Block(s int) *Meter {
	if m == nil {
		return nil
	}
	m.blocks++
	m.samples = m.samples + int64(s)
	m.duration = DurationOf(m.sampleRate, m.samples)
	m.elapsed = time.Since(m.startedAt)

	store(m.counters, BlockCounter, m.blocks)
	store(m.counters, SampleCounter, m.samples)
	store(m.counters, DurationCounter, m.duration)
	store(m.counters, ElapsedCounter, m.elapsed)
	return m
}

// Bytes captures amount of produced bytes.
func (m *Meter) Bytes(n int) *Meter {
	if m == nil {
		return nil
	}
	m.bytes = m.bytes + int64(n)
	store(m.counters, ByteCounter, m.bytes)
	return m
}

// Done fixes elapsed time of the stage.
func (m *Meter) Done() {
	if m == nil {
		return
	}
	m.elapsed = time.Since(m.startedAt)
	store(m.counters, ElapsedCounter, m.elapsed)
}

// DurationOf returns time duration of samples at given sample rate.
func DurationOf(sampleRate int, samples int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

const (
	// BlockCounter measures number of processed blocks.
	BlockCounter = "Blocks"
	// SampleCounter measures number of samples per channel.
	SampleCounter = "Samples"
	// ByteCounter measures number of produced bytes.
	ByteCounter = "Bytes"
	// StartCounter fixes when stage started.
	StartCounter = "Start"
	// ElapsedCounter measures time spent in stage.
	ElapsedCounter = "Elapsed"
	// DurationCounter counts what's the duration of signal.
	DurationCounter = "Duration"
)

var stageCounters = []string{BlockCounter, SampleCounter, ByteCounter, StartCounter, ElapsedCounter, DurationCounter}

// Store new counter value.
func store(m map[string]*atomic.Value, c string, v interface{}) {
	if counter, ok := m[c]; ok {
		counter.Store(v)
	}
}
