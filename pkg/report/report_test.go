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

package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
	"github.com/HWQuantum/coincidence-counter/pkg/store"
	"github.com/HWQuantum/coincidence-counter/pkg/t2"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleCounts() (coincidence.Singles, coincidence.Coincidences) {
	s := coincidence.Singles{100, 250, 0, 7}
	var c coincidence.Coincidences
	c[coincidence.PairIndex(0, 1)] = 12
	c[coincidence.PairIndex(3, 0)] = 3
	c[coincidence.PairIndex(6, 7)] = 1
	return s, c
}

func TestPairTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePairTable(&buf))
	newGoldie(t).Assert(t, "pairs", buf.Bytes())
}

func TestCountsTable(t *testing.T) {
	var buf bytes.Buffer
	s, c := sampleCounts()
	require.NoError(t, WriteCounts(&buf, s, c))
	newGoldie(t).Assert(t, "counts", buf.Bytes())
}

func TestAllCoincidences(t *testing.T) {
	var buf bytes.Buffer
	_, c := sampleCounts()
	require.NoError(t, WriteCoincidences(&buf, c, true))
	assert.Equal(t, coincidence.NumPairs+1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestWriteRun(t *testing.T) {
	s, c := sampleCounts()
	run := &store.Run{
		ID:           "abc",
		Seq:          4,
		Device:       "sim",
		Started:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		DurationMs:   200,
		Window:       100000,
		Policy:       "all-pairs",
		Singles:      s,
		Coincidences: c,
		Stats:        t2.Stats{Records: 400, Events: 360, Overflows: 40},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRun(&buf, run))
	out := buf.String()
	assert.Contains(t, out, "run abc (#4) on sim at 2024-05-01T12:00:00Z\n")
	assert.Contains(t, out, "records 400, events 360, overflow markers 40, unhandled 0\n")
	assert.Contains(t, out, "0-3   3\n")

	buf.Reset()
	require.NoError(t, WriteRuns(&buf, []*store.Run{run}))
	assert.Contains(t, buf.String(), "abc")
	assert.Contains(t, buf.String(), "357")
}

func TestSummarize(t *testing.T) {
	var runs []Counts
	for _, n := range []uint64{10, 12, 14} {
		var r Counts
		r.Singles[1] = n
		r.Coincidences[coincidence.PairIndex(0, 1)] = n / 2
		runs = append(runs, r)
	}
	s := Summarize(runs)
	assert.Equal(t, 3, s.Runs)
	assert.InDelta(t, 12, s.SinglesMean[1], 1e-9)
	assert.InDelta(t, 2, s.SinglesStd[1], 1e-9)
	assert.InDelta(t, 6, s.CoincidencesMean[0], 1e-9)
	assert.InDelta(t, 1, s.CoincidencesStd[0], 1e-9)
	assert.Zero(t, s.SinglesMean[0])

	one := Summarize(runs[:1])
	assert.Zero(t, one.SinglesStd[1])
	assert.Equal(t, 0, Summarize(nil).Runs)

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s))
	assert.Equal(t, "3 runs\nchannel  mean  stddev\n1        12.0  2.0\n\npair  mean  stddev\n0-1   6.0   1.0\n", buf.String())
}

func TestAccidentals(t *testing.T) {
	s := coincidence.Singles{1000, 2000, 500}
	// 1 s of ps tags, 1 ns window
	acc := Accidentals(s, 1000, 1000, coincidence.AllPairs, 0)
	assert.InDelta(t, 2*1000*2000*1e3/1e12, acc[coincidence.PairIndex(0, 1)], 1e-15)
	assert.InDelta(t, 2*2000*500*1e3/1e12, acc[coincidence.PairIndex(1, 2)], 1e-15)

	acc = Accidentals(s, 1000, 1000, coincidence.SyncRelative, 0)
	assert.InDelta(t, 1000*2000*1e3/1e12, acc[coincidence.PairIndex(0, 1)], 1e-15)
	assert.Zero(t, acc[coincidence.PairIndex(1, 2)])

	assert.Zero(t, Accidentals(s, 1000, 0, coincidence.AllPairs, 0)[0])
}
