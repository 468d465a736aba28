package debug

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"poiseuille/element"
)

// 工作点图默认参数
const (
	curveSamples = 200
	curveWidth   = 6 * vg.Inch
	curveHeight  = 4 * vg.Inch
)

// PlotOperatingPoint 绘制风机曲线与系统曲线，并标出工作点。
// 风机需已求解或已计算工作点；format 为 gonum/plot 支持的格式(png, svg, pdf...)。
func PlotOperatingPoint(w io.Writer, fan *element.PowerCurveFan, format string) error {
	sys, err := fan.SystemCurve()
	if err != nil {
		return err
	}
	q, err := fan.FlowRate()
	if err != nil {
		return err
	}
	dp, err := fan.DP()
	if err != nil {
		return err
	}
	qmax := 2 * math.Max(math.Abs(q), 1)

	p := plot.New()
	p.Title.Text = "Fan operating point"
	if fan.Name() != "" {
		p.Title.Text = fmt.Sprintf("Fan operating point (%s)", fan.Name())
	}
	p.X.Label.Text = "Q"
	p.Y.Label.Text = "Δp"
	p.Add(plotter.NewGrid())

	fanLine := plotter.NewFunction(fan.Curve().Pressure)
	fanLine.Samples = curveSamples
	fanLine.Color = color.RGBA{R: 199, G: 25, B: 121, A: 255}
	fanLine.Width = vg.Points(1.5)
	sysLine := plotter.NewFunction(sys)
	sysLine.Samples = curveSamples
	sysLine.Color = color.RGBA{R: 25, G: 135, B: 199, A: 255}
	sysLine.Width = vg.Points(1.5)
	sysLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	point, err := plotter.NewScatter(plotter.XYs{{X: q, Y: dp}})
	if err != nil {
		return err
	}
	point.Radius = vg.Points(4)

	p.Add(fanLine, sysLine, point)
	p.Legend.Add("fan curve", fanLine)
	p.Legend.Add("system curve", sysLine)
	p.Legend.Add(fmt.Sprintf("operating point Q=%.4g Δp=%.4g", q, dp), point)
	p.Legend.Top = true

	// 函数曲线不提供数据范围，按采样点确定坐标轴
	lo, hi := math.Min(dp, 0), math.Max(dp, 0)
	for i := 0; i <= curveSamples; i++ {
		x := qmax * float64(i) / curveSamples
		for _, y := range []float64{fan.Curve().Pressure(x), sys(x)} {
			if !math.IsNaN(y) && !math.IsInf(y, 0) {
				lo, hi = math.Min(lo, y), math.Max(hi, y)
			}
		}
	}
	p.X.Min, p.X.Max = 0, qmax
	p.Y.Min, p.Y.Max = lo, hi

	wt, err := p.WriterTo(curveWidth, curveHeight, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
