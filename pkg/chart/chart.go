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

// Package chart renders counts and run history as images
package chart

import (
	"errors"
	"fmt"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/HWQuantum/coincidence-counter/pkg/coincidence"
	"github.com/HWQuantum/coincidence-counter/pkg/store"
)

const (
	Width  = 8 * vg.Inch
	Height = 4 * vg.Inch
)

// Singles saves a bar chart of one run's singles. The format follows the
// extension of file.
func Singles(s coincidence.Singles, title, file string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "channel"
	p.Y.Label.Text = "singles"

	values := make(plotter.Values, len(s))
	names := make([]string, len(s))
	for ch, n := range s {
		values[ch] = float64(n)
		names[ch] = strconv.Itoa(ch)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("singles bars: %w", err)
	}
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(Width, Height, file); err != nil {
		return fmt.Errorf("save singles plot: %w", err)
	}
	return nil
}

// History saves the coincidence counts of the given pair indices across
// runs, oldest run first.
func History(runs []*store.Run, pairs []int, file string) error {
	if len(runs) == 0 {
		return errors.New("no runs to plot")
	}
	p := plot.New()
	p.Title.Text = "coincidences per run"
	p.X.Label.Text = "run"
	p.Y.Label.Text = "coincidences"

	for i, index := range pairs {
		if index < 0 || index >= coincidence.NumPairs {
			return fmt.Errorf("pair index %d out of range", index)
		}
		pts := make(plotter.XYs, 0, len(runs))
		for _, r := range runs {
			pts = append(pts, plotter.XY{X: float64(r.Seq), Y: float64(r.Coincidences[index])})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("pair %d line: %w", index, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		a, b := coincidence.IndexToPair(index)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%d-%d", a, b), line)
	}

	if err := p.Save(Width, Height, file); err != nil {
		return fmt.Errorf("save history plot: %w", err)
	}
	return nil
}

// ActivePairs returns the indices of pairs that counted in any run
func ActivePairs(runs []*store.Run) []int {
	var active []int
	for i := 0; i < coincidence.NumPairs; i++ {
		for _, r := range runs {
			if r.Coincidences[i] > 0 {
				active = append(active, i)
				break
			}
		}
	}
	return active
}
