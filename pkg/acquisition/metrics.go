/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package acquisition

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

const meterName = "github.com/HWQuantum/coincidence-counter/pkg/acquisition"

type metrics struct {
	records       metric.Int64Counter
	bursts        metric.Int64Counter
	events        metric.Int64Counter
	overflows     metric.Int64Counter
	unhandled     metric.Int64Counter
	idlePolls     metric.Int64Counter
	fifoOverflows metric.Int64Counter
	runs          metric.Int64Counter
	runLatency    metric.Float64Histogram
	attrs         metric.MeasurementOption
}

// newMetrics falls back to the global provider when mp is nil
func newMetrics(mp metric.MeterProvider, attrs ...attribute.KeyValue) (*metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)
	m := &metrics{attrs: metric.WithAttributes(attrs...)}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.records, "acquisition.records", "Raw T2 records read from the FIFO"},
		{&m.bursts, "acquisition.bursts", "Non-empty FIFO reads"},
		{&m.events, "acquisition.events", "Decoded channel and sync events"},
		{&m.overflows, "acquisition.overflow_markers", "Overflow marker records"},
		{&m.unhandled, "acquisition.unhandled_markers", "Marker records that carry no event"},
		{&m.idlePolls, "acquisition.idle_polls", "FIFO reads that returned no records while running"},
		{&m.fifoOverflows, "acquisition.fifo_overflows", "Runs aborted by a full FIFO"},
		{&m.runs, "acquisition.runs", "Completed acquisition runs"},
	}
	var err error
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	m.runLatency, err = meter.Float64Histogram("acquisition.run.latency_ms",
		metric.WithDescription("Wall time of completed runs in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// burst records the difference between two accumulator snapshots
func (m *metrics) burst(ctx context.Context, prev, cur t2.Stats) {
	m.bursts.Add(ctx, 1, m.attrs)
	m.records.Add(ctx, int64(cur.Records-prev.Records), m.attrs)
	m.events.Add(ctx, int64(cur.Events-prev.Events), m.attrs)
	m.overflows.Add(ctx, int64(cur.Overflows-prev.Overflows), m.attrs)
	m.unhandled.Add(ctx, int64(cur.Unhandled-prev.Unhandled), m.attrs)
}
