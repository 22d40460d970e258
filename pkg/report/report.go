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

// Package report formats counts as plain text tables
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
	"github.com/HWQuantum/coincidence-counter/pkg/store"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func pairName(index int) string {
	a, b := coincidence.IndexToPair(index)
	return fmt.Sprintf("%d-%d", a, b)
}

// WritePairTable prints the mapping between pair indices and channels
func WritePairTable(w io.Writer) error {
	t := newTable(w)
	fmt.Fprintln(t, "index\tpair")
	for i := 0; i < coincidence.NumPairs; i++ {
		fmt.Fprintf(t, "%d\t%s\n", i, pairName(i))
	}
	return t.Flush()
}

func WriteSingles(w io.Writer, s coincidence.Singles) error {
	t := newTable(w)
	fmt.Fprintln(t, "channel\tsingles")
	for ch, n := range s {
		fmt.Fprintf(t, "%d\t%d\n", ch, n)
	}
	return t.Flush()
}

// WriteCoincidences prints the pairs with counts, every pair if all is set
func WriteCoincidences(w io.Writer, c coincidence.Coincidences, all bool) error {
	t := newTable(w)
	fmt.Fprintln(t, "pair\tcoincidences")
	for i, n := range c {
		if n == 0 && !all {
			continue
		}
		fmt.Fprintf(t, "%s\t%d\n", pairName(i), n)
	}
	return t.Flush()
}

func WriteCounts(w io.Writer, s coincidence.Singles, c coincidence.Coincidences) error {
	if err := WriteSingles(w, s); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return WriteCoincidences(w, c, false)
}

func WriteRun(w io.Writer, run *store.Run) error {
	fmt.Fprintf(w, "run %s (#%d) on %s at %s\n", run.ID, run.Seq, run.Device, run.Started.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(w, "duration %d ms, window %d, policy %s, sync channel %d\n",
		run.DurationMs, run.Window, run.Policy, run.SyncChannel)
	fmt.Fprintf(w, "records %d, events %d, overflow markers %d, unhandled %d\n\n",
		run.Stats.Records, run.Stats.Events, run.Stats.Overflows, run.Stats.Unhandled)
	return WriteCounts(w, run.Singles, run.Coincidences)
}

// WriteRuns prints one line per run
func WriteRuns(w io.Writer, runs []*store.Run) error {
	t := newTable(w)
	fmt.Fprintln(t, "seq\tid\tdevice\tstarted\tduration_ms\tsingles\tcoincidences")
	for _, r := range runs {
		fmt.Fprintf(t, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n", r.Seq, r.ID, r.Device,
			r.Started.Format("2006-01-02T15:04:05Z07:00"), r.DurationMs, r.Singles.Total(), r.Coincidences.Total())
	}
	return t.Flush()
}
