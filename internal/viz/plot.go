package viz

import (
	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green,
	asciigraph.HotPink,
	asciigraph.DodgerBlue,
	asciigraph.Gold,
	asciigraph.MediumPurple,
	asciigraph.Turquoise,
	asciigraph.Orange,
	asciigraph.LightCoral,
}

// PlotSeries draws several series on one set of axes. NaN values leave gaps.
func PlotSeries(series [][]float64, caption string, height, width int) string {
	data := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s) > 0 {
			data = append(data, s)
		}
	}
	if len(data) == 0 {
		return ""
	}

	colors := make([]asciigraph.AnsiColor, len(data))
	for i := range colors {
		colors[i] = seriesColors[i%len(seriesColors)]
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.PlotMany(data, opts...)
}

// PlotFrequencies draws allele frequency paths on a fixed [0, 1] axis.
func PlotFrequencies(paths [][]float64, caption string, height, width int) string {
	if len(paths) == 0 {
		return ""
	}
	colors := make([]asciigraph.AnsiColor, len(paths))
	for i := range colors {
		colors[i] = seriesColors[i%len(seriesColors)]
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	return asciigraph.PlotMany(paths, opts...)
}
