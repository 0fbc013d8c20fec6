package diagnostics

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/matcha/internal/endpoint"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// RenderTrackHTML writes an HTML page with the track's points in the x-z
// plane coloured by deposition, plus the start and end points.
func RenderTrackHTML(w io.Writer, trackID int64, cloud endpoint.PointCloud, pair endpoint.EndpointPair) error {
	data := make([]opts.ScatterData, 0, cloud.Len())
	maxDep := 0.0
	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for i := 0; i < cloud.Len(); i++ {
		p, d := cloud.Point(i), cloud.Deposition(i)
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Z, d}})
		maxDep = math.Max(maxDep, d)
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minZ, maxZ = math.Min(minZ, p.Z), math.Max(maxZ, p.Z)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: fmt.Sprintf("Track %d", trackID), Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Track %d", trackID), Subtitle: fmt.Sprintf("points=%d x=[%.1f, %.1f] z=[%.1f, %.1f]", cloud.Len(), minX, maxX, minZ, maxZ)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Z", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxDep),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)

	scatter.AddSeries("deposits", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("start", []opts.ScatterData{{Value: []interface{}{pair.Start.X, pair.Start.Z}}},
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#1f9e89"}))
	scatter.AddSeries("end", []opts.ScatterData{{Value: []interface{}{pair.End.X, pair.End.Z}}},
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 14}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#d62728"}))

	return scatter.Render(w)
}
