package chart

import (
	"bytes"
	"math"
	"sort"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	background = drawing.ColorFromHex("0a0a0f")
	foreground = drawing.ColorFromHex("ffffff")
	fallback   = drawing.ColorFromHex("ffffff")
)

// typeColors matches the badge colours used for system types on the board.
var typeColors = map[string]drawing.Color{
	"CoT":             drawing.ColorFromHex("ff00ff"),
	"CoT + Synthesis": drawing.ColorFromHex("00ffff"),
	"Base LLM":        drawing.ColorFromHex("ffff00"),
	"Custom":          drawing.ColorFromHex("ff6600"),
	"N/A":             drawing.ColorFromHex("ffffff"),
}

func ColorFor(systemType string) drawing.Color {
	if c, ok := typeColors[systemType]; ok {
		return c
	}
	return fallback
}

// Scatter renders ARC-AGI-1 against ARC-AGI-2 as a PNG, one series per
// system type. Missing scores are plotted at zero.
func Scatter(entries []*domain.Entry, width, height int) ([]byte, error) {
	groups := make(map[string]*gochart.ContinuousSeries)
	xMax, yMax := 100.0, 10.0
	for _, e := range entries {
		s, ok := groups[e.SystemType]
		if !ok {
			color := ColorFor(e.SystemType)
			s = &gochart.ContinuousSeries{
				Name: seriesName(e.SystemType),
				Style: gochart.Style{
					StrokeWidth: gochart.Disabled,
					DotWidth:    5,
					DotColor:    color.WithAlpha(204),
				},
			}
			groups[e.SystemType] = s
		}
		s.XValues = append(s.XValues, orZero(e.ARCAGI1))
		s.YValues = append(s.YValues, orZero(e.ARCAGI2))
		xMax = math.Max(xMax, math.Ceil(orZero(e.ARCAGI1)/10)*10)
		yMax = math.Max(yMax, math.Ceil(orZero(e.ARCAGI2)/10)*10)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	series := make([]gochart.Series, 0, len(names))
	for _, name := range names {
		series = append(series, *groups[name])
	}
	if len(series) == 0 {
		series = append(series, gochart.ContinuousSeries{
			Style:   gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 0},
			XValues: []float64{0, 100},
			YValues: []float64{0, 0},
		})
	}

	axisStyle := gochart.Style{FontColor: foreground, StrokeColor: foreground}
	graph := gochart.Chart{
		Width:      width,
		Height:     height,
		Background: gochart.Style{FillColor: background, Padding: gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		Canvas:     gochart.Style{FillColor: background},
		XAxis: gochart.XAxis{
			Name:      "ARC-AGI-1 (%)",
			NameStyle: axisStyle,
			Style:     axisStyle,
			Range:     &gochart.ContinuousRange{Min: 0, Max: xMax},
		},
		YAxis: gochart.YAxis{
			Name:      "ARC-AGI-2 (%)",
			NameStyle: axisStyle,
			Style:     axisStyle,
			Range:     &gochart.ContinuousRange{Min: 0, Max: yMax},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.LegendLeft(&graph, gochart.Style{
		FillColor: background,
		FontColor: foreground,
	})}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func seriesName(systemType string) string {
	if systemType == "" {
		return "Unspecified"
	}
	return systemType
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
