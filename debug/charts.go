package debug

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Charts 网页图表：网络图、残差曲线与未知量曲线
type Charts struct {
	Record
}

// NewCharts 创建图表记录
func NewCharts() *Charts {
	return &Charts{Record: *NewRecord()}
}

func lineOpts(title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithAnimation(true),
	}
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	// 初始化界面
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "流体网络",
			Subtitle: "节点压力与连接流量",
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
	)
	graph.SetSeriesOptions(
		charts.WithEmphasisOpts(opts.Emphasis{
			Label: &opts.Label{
				Show:     opts.Bool(true),
				Color:    "black",
				Position: "left",
			},
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Curveness: 0.3,
		}),
	)
	lineR := charts.NewLine()
	lineR.SetGlobalOptions(lineOpts("残差曲线", "残差无穷范数随迭代变化")...)
	lineX := charts.NewLine()
	lineX.SetGlobalOptions(lineOpts("未知量曲线", "节点压力与风机流量随迭代变化")...)
	// 网络图
	if c.Network != nil {
		nodes := make([]opts.GraphNode, len(c.Network.Nodes))
		for i, n := range c.Network.Nodes {
			category := 0
			if n.Kind == "reservoir" {
				category = 1
			}
			name := n.Name
			if n.Pressure != nil {
				name = fmt.Sprintf("%s p=%.4g", n.Name, *n.Pressure)
			}
			nodes[i] = opts.GraphNode{
				Name:     name,
				Category: category,
				Tooltip:  &opts.Tooltip{Show: opts.Bool(true)},
			}
		}
		links := make([]opts.GraphLink, 0, len(c.Network.Links))
		for _, l := range c.Network.Links {
			link := opts.GraphLink{
				Source: nodes[l.Source].Name,
				Target: nodes[l.Target].Name,
			}
			if l.Flow != nil {
				link.Value = float32(*l.Flow)
			}
			links = append(links, link)
		}
		graph.AddSeries("网络", nodes, links,
			charts.WithGraphChartOpts(opts.GraphChart{
				Categories: []*opts.GraphCategory{
					{Name: "节点", ItemStyle: &opts.ItemStyle{Color: "#1987c7b7"}},
					{Name: "储罐", ItemStyle: &opts.ItemStyle{Color: "#c71979b7"}},
				},
				Roam:               opts.Bool(true),
				Force:              &opts.GraphForce{Repulsion: 80},
				EdgeLabel:          &opts.EdgeLabel{Show: opts.Bool(true)},
				FocusNodeAdjacency: opts.Bool(true),
			}))
	}
	// 残差信息
	lineR.SetXAxis(c.Iter)
	residual := make([]opts.LineData, len(c.Residual))
	for i, r := range c.Residual {
		residual[i] = opts.LineData{Value: r}
	}
	lineR.AddSeries("残差", residual)
	// 未知量信息
	lineX.SetXAxis(c.Iter)
	for i, row := range c.Rows {
		items := make([]opts.LineData, len(c.X))
		for k, x := range c.X {
			if i < len(x) {
				items[k] = opts.LineData{Value: x[i]}
			}
		}
		lineX.AddSeries(row, items)
	}
	// 构建界面
	page := components.NewPage()
	page.AddCharts(
		graph,
		lineR,
		lineX,
	)
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
