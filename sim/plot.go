package sim

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewParamPlot creates a plot of the i-th parameter estimate over iterations.
// If truth is not nil its i-th component is drawn as a reference line.
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * traj is empty
// * i is not a valid parameter index
// * gonum plot fails to be created
func NewParamPlot(traj []mat.Vector, truth mat.Vector, i int) (*plot.Plot, error) {
	if len(traj) == 0 {
		return nil, fmt.Errorf("invalid trajectory supplied")
	}

	if i < 0 || i >= traj[0].Len() || (truth != nil && i >= truth.Len()) {
		return nil, fmt.Errorf("invalid parameter index: %d", i)
	}

	p := plot.New()

	name := fmt.Sprintf("theta%d", i+1)
	p.Title.Text = name
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = name

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	est := make(plotter.XYs, len(traj))
	for k, theta := range traj {
		est[k].X = float64(k)
		est[k].Y = theta.AtVec(i)
	}

	estLine, err := plotter.NewLine(est)
	if err != nil {
		return nil, fmt.Errorf("failed to create estimate line: %v", err)
	}
	estLine.LineStyle.Color = color.RGBA{R: 255, B: 128, A: 255}
	estLine.LineStyle.Width = vg.Points(1.5)

	p.Add(estLine)
	p.Legend.Add("estimated", estLine)

	if truth != nil {
		val := truth.AtVec(i)
		ref := plotter.XYs{{X: 0, Y: val}, {X: float64(len(traj) - 1), Y: val}}

		refLine, err := plotter.NewLine(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to create reference line: %v", err)
		}
		refLine.LineStyle.Color = color.RGBA{R: 169, G: 169, B: 169, A: 255}
		refLine.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}

		p.Add(refLine)
		p.Legend.Add("true", refLine)
	}

	// mark the estimates
	marks, err := plotter.NewScatter(est)
	if err != nil {
		return nil, fmt.Errorf("failed to create scatter: %v", err)
	}
	marks.Shape = draw.CircleGlyph{}
	marks.GlyphStyle.Radius = vg.Points(1.5)
	marks.GlyphStyle.Color = estLine.LineStyle.Color
	p.Add(marks)

	return p, nil
}

// SaveParamPlots saves one PNG plot per parameter named <prefix>_theta<i>.png
// and returns the names of the written files.
func SaveParamPlots(prefix string, traj []mat.Vector, truth mat.Vector) ([]string, error) {
	if len(traj) == 0 {
		return nil, fmt.Errorf("invalid trajectory supplied")
	}

	var names []string
	for i := 0; i < traj[0].Len(); i++ {
		p, err := NewParamPlot(traj, truth, i)
		if err != nil {
			return nil, err
		}

		name := fmt.Sprintf("%s_theta%d.png", prefix, i+1)
		if err := p.Save(8*vg.Inch, 4*vg.Inch, name); err != nil {
			return nil, fmt.Errorf("failed to save plot to %s: %v", name, err)
		}
		names = append(names, name)
	}

	return names, nil
}
