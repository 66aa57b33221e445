package plot

import (
	"bytes"
	"fmt"
	"math"

	"github.com/pivolan/data_visualizer/domain/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	coolColor    = drawing.Color{R: 59, G: 76, B: 192, A: 255}
	neutralColor = drawing.Color{R: 221, G: 221, B: 221, A: 255}
	warmColor    = drawing.Color{R: 180, G: 4, B: 38, A: 255}
	nanColor     = drawing.ColorWhite
)

// coolwarm maps a coefficient in [-1, 1] onto a diverging blue-red scale.
func coolwarm(v float64) drawing.Color {
	if math.IsNaN(v) {
		return nanColor
	}
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return blend(neutralColor, coolColor, -v)
	}
	return blend(neutralColor, warmColor, v)
}

func blend(from, to drawing.Color, t float64) drawing.Color {
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return drawing.Color{R: mix(from.R, to.R), G: mix(from.G, to.G), B: mix(from.B, to.B), A: 255}
}

// textColorFor keeps annotations readable on dark cells.
func textColorFor(bg drawing.Color) drawing.Color {
	luminance := 0.299*float64(bg.R) + 0.587*float64(bg.G) + 0.114*float64(bg.B)
	if luminance < 128 {
		return drawing.ColorWhite
	}
	return drawing.ColorBlack
}

// DrawHeatmap draws an annotated grid of coefficients. go-chart has no
// heatmap series, so cells are painted on the raw PNG renderer.
func DrawHeatmap(art models.ChartArtifact, width, height int) ([]byte, error) {
	n := len(art.Labels)
	if n == 0 {
		return nil, errNoCorrelation
	}

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	r.SetFont(font)

	fillRect(r, chart.Box{Left: 0, Top: 0, Right: width, Bottom: height}, drawing.ColorWhite)

	labelWidth := 0
	r.SetFontSize(10)
	for _, l := range art.Labels {
		if w := r.MeasureText(l).Width(); w > labelWidth {
			labelWidth = w
		}
	}

	const titleHeight = 40
	left := labelWidth + 20
	top := titleHeight + 10
	bottom := height - 20 - labelWidth
	right := width - 20
	cell := int(math.Min(float64(right-left), float64(bottom-top)) / float64(n))
	if cell < 1 {
		return nil, fmt.Errorf("error rendering chart: %d columns do not fit into %dx%d", n, width, height)
	}

	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(14)
	tb := r.MeasureText(art.Title)
	r.Text(art.Title, (width-tb.Width())/2, titleHeight/2+tb.Height()/2)

	fontSize := math.Max(6, math.Min(12, float64(cell)/4))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			box := chart.Box{
				Left:   left + j*cell,
				Top:    top + i*cell,
				Right:  left + (j+1)*cell,
				Bottom: top + (i+1)*cell,
			}
			bg := coolwarm(art.Matrix[i][j])
			fillRect(r, box, bg)

			r.SetFontSize(fontSize)
			r.SetFontColor(textColorFor(bg))
			text := art.Cells[i][j]
			b := r.MeasureText(text)
			r.Text(text, box.Left+(cell-b.Width())/2, box.Top+(cell+b.Height())/2)
		}
	}

	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(10)
	for i, l := range art.Labels {
		b := r.MeasureText(l)
		r.Text(l, left-b.Width()-6, top+i*cell+(cell+b.Height())/2)

		r.SetTextRotation(chart.DegreesToRadians(90))
		r.Text(l, left+i*cell+(cell-b.Height())/2, top+n*cell+6)
		r.ClearTextRotation()
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func fillRect(r chart.Renderer, b chart.Box, color drawing.Color) {
	r.SetFillColor(color)
	r.SetStrokeColor(color)
	r.SetStrokeWidth(0)
	r.MoveTo(b.Left, b.Top)
	r.LineTo(b.Right, b.Top)
	r.LineTo(b.Right, b.Bottom)
	r.LineTo(b.Left, b.Bottom)
	r.Close()
	r.Fill()
}
