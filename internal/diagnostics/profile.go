// Package diagnostics renders per-track views of an endpoint result: a
// PNG deposition profile along the principal axis and an interactive HTML
// scatter of the track.
package diagnostics

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/matcha/internal/endpoint"
	"github.com/banshee-data/matcha/internal/monitoring"
)

var (
	startColor = color.RGBA{R: 0x1f, G: 0x9e, B: 0x89, A: 255}
	endColor   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}
)

// ProfileFileName returns the PNG name used for a track's profile.
func ProfileFileName(trackID int64) string {
	return fmt.Sprintf("track_%06d_profile.png", trackID)
}

// PlotDepositionProfile plots each point's deposition against its
// first-axis projection score and marks the labelled start and end. The
// running deposition sum along the axis is overlaid as a line. The plot is
// written to dir and its path returned.
func PlotDepositionProfile(dir string, trackID int64, cloud endpoint.PointCloud, res endpoint.Result) (string, error) {
	scores := res.Projection.Scores
	if len(scores) != cloud.Len() {
		return "", errors.New("projection scores do not match the cloud")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Track %d - Deposition Profile", trackID)
	p.X.Label.Text = "Projection on principal axis"
	p.Y.Label.Text = "Deposition"

	deps := cloud.Depositions()
	pts := make(plotter.XYs, len(scores))
	for i, s := range scores {
		pts[i] = plotter.XY{X: s, Y: deps[i]}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return "", err
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)
	p.Legend.Add("points", scatter)

	// Running sum along the axis, scaled to the largest deposition so it
	// shares the y range.
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })
	var total, maxDep float64
	for _, d := range deps {
		total += d
		if d > maxDep {
			maxDep = d
		}
	}
	if total > 0 {
		cum := make(plotter.XYs, len(order))
		var run float64
		for i, idx := range order {
			run += deps[idx]
			cum[i] = plotter.XY{X: scores[idx], Y: run / total * maxDep}
		}
		line, err := plotter.NewLine(cum)
		if err != nil {
			return "", err
		}
		line.Width = vg.Points(1)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
		p.Legend.Add("cumulative (scaled)", line)
	}

	for _, m := range []struct {
		label string
		d     endpoint.Density
		c     color.Color
	}{
		{"start", res.Start, startColor},
		{"end", res.End, endColor},
	} {
		marker, err := plotter.NewScatter(plotter.XYs{{X: scores[m.d.Index], Y: deps[m.d.Index]}})
		if err != nil {
			return "", err
		}
		marker.GlyphStyle.Color = m.c
		marker.GlyphStyle.Radius = vg.Points(6)
		marker.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("%s (score %.3g)", m.label, m.d.Score), marker)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	file := filepath.Join(dir, ProfileFileName(trackID))
	if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return "", fmt.Errorf("failed to save profile plot: %w", err)
	}
	monitoring.Logf("wrote deposition profile for track %d to %s", trackID, file)
	return file, nil
}
