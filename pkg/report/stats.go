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
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"

	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
)

// Counts is the outcome of one run
type Counts struct {
	Singles      coincidence.Singles
	Coincidences coincidence.Coincidences
}

// Summary holds mean and sample standard deviation over repeated runs
type Summary struct {
	Runs             int
	SinglesMean      [coincidence.NumChannels]float64
	SinglesStd       [coincidence.NumChannels]float64
	CoincidencesMean [coincidence.NumPairs]float64
	CoincidencesStd  [coincidence.NumPairs]float64
}

func meanStd(x []float64) (float64, float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}

func Summarize(runs []Counts) Summary {
	s := Summary{Runs: len(runs)}
	if len(runs) == 0 {
		return s
	}
	x := make([]float64, len(runs))
	for ch := 0; ch < coincidence.NumChannels; ch++ {
		for i, r := range runs {
			x[i] = float64(r.Singles[ch])
		}
		s.SinglesMean[ch], s.SinglesStd[ch] = meanStd(x)
	}
	for p := 0; p < coincidence.NumPairs; p++ {
		for i, r := range runs {
			x[i] = float64(r.Coincidences[p])
		}
		s.CoincidencesMean[p], s.CoincidencesStd[p] = meanStd(x)
	}
	return s
}

// WriteSummary skips channels and pairs that never counted
func WriteSummary(w io.Writer, s Summary) error {
	fmt.Fprintf(w, "%d runs\n", s.Runs)
	t := newTable(w)
	fmt.Fprintln(t, "channel\tmean\tstddev")
	for ch := range s.SinglesMean {
		if s.SinglesMean[ch] == 0 {
			continue
		}
		fmt.Fprintf(t, "%d\t%.1f\t%.1f\n", ch, s.SinglesMean[ch], s.SinglesStd[ch])
	}
	if err := t.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	t = newTable(w)
	fmt.Fprintln(t, "pair\tmean\tstddev")
	for p := range s.CoincidencesMean {
		if s.CoincidencesMean[p] == 0 {
			continue
		}
		fmt.Fprintf(t, "%s\t%.1f\t%.1f\n", pairName(p), s.CoincidencesMean[p], s.CoincidencesStd[p])
	}
	return t.Flush()
}

// Accidentals estimates the coincidences expected from uncorrelated events
// for a run of durationMs with time tags in ps. The all-pairs policy counts
// both orderings of a pair, the sync-relative one only events after a sync.
func Accidentals(s coincidence.Singles, window uint64, durationMs int32, policy coincidence.Policy, syncChannel uint8) [coincidence.NumPairs]float64 {
	var acc [coincidence.NumPairs]float64
	if durationMs <= 0 {
		return acc
	}
	span := float64(durationMs) * 1e9
	for p := range acc {
		a, b := coincidence.IndexToPair(p)
		rate := float64(s[a]) * float64(s[b]) * float64(window) / span
		switch policy {
		case coincidence.AllPairs:
			acc[p] = 2 * rate
		case coincidence.SyncRelative:
			if a == syncChannel || b == syncChannel {
				acc[p] = rate
			}
		}
	}
	return acc
}
