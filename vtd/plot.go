package vtd

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	inputColor  = color.RGBA{B: 255, A: 255}          // blue
	outputColor = color.RGBA{R: 255, G: 165, A: 255}  // orange
	curveColor  = color.RGBA{G: 128, A: 255}          // green
)

// TimeSeriesPlot builds the voltage-vs-time figure with both channels.
func (r Recording) TimeSeriesPlot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Vin vs Vout"
	p.X.Label.Text = "Time [s]"
	p.Y.Label.Text = "Voltage [V]"

	in := make(plotter.XYs, len(r.Samples))
	out := make(plotter.XYs, len(r.Samples))
	for i, s := range r.Samples {
		in[i].X, in[i].Y = s.Elapsed, s.Input
		out[i].X, out[i].Y = s.Elapsed, s.Output
	}
	lin, err := plotter.NewLine(in)
	if err != nil {
		return nil, err
	}
	lin.Color = inputColor
	lout, err := plotter.NewLine(out)
	if err != nil {
		return nil, err
	}
	lout.Color = outputColor
	p.Add(lin, lout)
	p.Legend.Add("V_in", lin)
	p.Legend.Add("V_out", lout)
	return p, nil
}

// TransferPlot builds the voltage transfer diagram, output vs input.
func (r Recording) TransferPlot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "VTD of V_out"
	p.X.Label.Text = "V_in [V]"
	p.Y.Label.Text = "V_out [V]"

	xy := make(plotter.XYs, len(r.Samples))
	for i, s := range r.Samples {
		xy[i].X, xy[i].Y = s.Input, s.Output
	}
	line, err := plotter.NewLine(xy)
	if err != nil {
		return nil, err
	}
	line.Color = curveColor
	p.Add(line)
	p.Legend.Add("V_out", line)
	return p, nil
}

// SavePlots renders both figures to PNG files.
func (r Recording) SavePlots(timeseriesPath, transferPath string) error {
	ts, err := r.TimeSeriesPlot()
	if err != nil {
		return err
	}
	if err := ts.Save(8*vg.Inch, 4*vg.Inch, timeseriesPath); err != nil {
		return err
	}
	tr, err := r.TransferPlot()
	if err != nil {
		return err
	}
	return tr.Save(8*vg.Inch, 4*vg.Inch, transferPath)
}
