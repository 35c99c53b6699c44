package materialize

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"sort"

	"github.com/kasugagym/allocator/internal/domain"
)

// No image/chart library appears anywhere in this module's retrieved
// dependency corpus, so the zone-load chart is rendered with the
// standard library's image/draw rather than a third-party plotting
// package (see DESIGN.md).

const (
	chartWidth     = 640
	chartBarHeight = 18
	chartBarGap    = 10
	chartMargin    = 16
	chartLabelW    = 120
)

var zoneColors = map[domain.Zone]color.RGBA{
	domain.ZoneMorning: {R: 0xE6, G: 0x7A, B: 0x3C, A: 0xFF},
	domain.ZoneDaytime: {R: 0x4C, G: 0xA6, B: 0xE0, A: 0xFF},
	domain.ZoneEvening: {R: 0x6A, G: 0x4C, B: 0x93, A: 0xFF},
	domain.ZoneNight:   {R: 0x2B, G: 0x2B, B: 0x44, A: 0xFF},
}

// RenderZoneChart draws a stacked horizontal bar per team, one segment
// per zone, proportional to that zone's share of the team's monthly
// total. It is the artifact suppressed by --no-gantt.
func RenderZoneChart(rows []SummaryRow) image.Image {
	sorted := make([]SummaryRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Team < sorted[j].Team })

	height := chartMargin*2 + len(sorted)*(chartBarHeight+chartBarGap)
	if height < chartMargin*2+chartBarHeight {
		height = chartMargin*2 + chartBarHeight
	}
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	barAreaWidth := chartWidth - chartMargin - chartLabelW
	for i, row := range sorted {
		y0 := chartMargin + i*(chartBarHeight+chartBarGap)
		y1 := y0 + chartBarHeight
		drawLabel(img, chartMargin, y0+chartBarHeight-4, string(row.Team))

		total := row.MonthlyMins
		if total <= 0 {
			continue
		}
		x := chartMargin + chartLabelW
		for _, z := range domain.AllZones {
			share := row.ZoneMins[z]
			if share <= 0 {
				continue
			}
			w := share * barAreaWidth / total
			if w <= 0 {
				continue
			}
			rect := image.Rect(x, y0, x+w, y1)
			draw.Draw(img, rect, &image.Uniform{C: zoneColors[z]}, image.Point{}, draw.Src)
			x += w
		}
	}
	return img
}

// drawLabel renders a team name as a coarse bitmap: one filled cell per
// character, legible enough to tell rows apart without pulling in a
// font-rendering dependency.
func drawLabel(img *image.RGBA, x, y int, text string) {
	const cell = 7
	ink := color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
	for i, r := range text {
		if i*cell >= chartLabelW-cell {
			break
		}
		if r == ' ' {
			continue
		}
		cx := x + i*cell
		rect := image.Rect(cx, y-cell, cx+cell-2, y)
		draw.Draw(img, rect, &image.Uniform{C: ink}, image.Point{}, draw.Src)
	}
}

// WriteZoneChartPNG renders and saves the chart to path.
func WriteZoneChartPNG(path string, rows []SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating zone chart: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, RenderZoneChart(rows)); err != nil {
		return fmt.Errorf("encoding zone chart: %w", err)
	}
	return nil
}
