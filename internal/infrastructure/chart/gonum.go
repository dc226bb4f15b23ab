// Package chart draws price charts with gonum/plot.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/vitos/coin_dashboard/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

type Options struct {
	WidthInches  float64
	HeightInches float64
	DPI          int
	TickColor    string
}

// GonumRenderer implements domain.ChartRenderer. It holds no state between calls.
type GonumRenderer struct {
	opts Options
}

func NewGonumRenderer(opts Options) *GonumRenderer {
	if opts.WidthInches <= 0 {
		opts.WidthInches = 7
	}
	if opts.HeightInches <= 0 {
		opts.HeightInches = 3
	}
	if opts.DPI <= 0 {
		opts.DPI = 130
	}
	if opts.TickColor == "" {
		opts.TickColor = domain.ColorNeutral
	}
	return &GonumRenderer{opts: opts}
}

func (r *GonumRenderer) RenderLine(spec domain.ChartSpec) ([]byte, error) {
	if len(spec.Points) == 0 {
		return nil, errors.New("chart: empty series")
	}
	lineColor, err := ParseHexColor(spec.Color)
	if err != nil {
		return nil, err
	}
	tickColor, err := ParseHexColor(r.opts.TickColor)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.BackgroundColor = color.Transparent
	p.Title.Text = spec.Title
	p.Title.TextStyle.Color = lineColor
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.Title.Padding = vg.Points(10)

	xys := make(plotter.XYs, len(spec.Points))
	for i, pt := range spec.Points {
		xys[i].X = float64(pt.Time.Unix())
		xys[i].Y = pt.Price
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}
	line.LineStyle.Color = lineColor
	line.LineStyle.Width = vg.Points(1.8)
	p.Add(line)

	if len(spec.Ticks) > 0 {
		ticks := make(plot.ConstantTicks, 0, len(spec.Ticks))
		for _, t := range spec.Ticks {
			ticks = append(ticks, plot.Tick{Value: float64(t.Time.Unix()), Label: t.Label})
		}
		p.X.Tick.Marker = ticks
	}

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = lineColor
		ax.LineStyle.Width = vg.Points(1.2)
		ax.Tick.Label.Color = tickColor
		ax.Tick.LineStyle.Color = tickColor
	}
	p.X.Tick.Label.Font.Size = vg.Points(8)
	p.Y.Tick.Label.Font.Size = vg.Points(9)

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(r.opts.WidthInches)*vg.Inch, vg.Length(r.opts.HeightInches)*vg.Inch),
		vgimg.UseDPI(r.opts.DPI),
		vgimg.UseBackgroundColor(color.Transparent),
	)
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseHexColor parses "#rgb" or "#rrggbb".
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("chart: invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("chart: invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
