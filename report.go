package poiseuille

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"poiseuille/element"
	"poiseuille/system"
)

// Report 求解结果
type Report struct {
	Name       string            `json:"name"`
	Method     string            `json:"method"`
	Iterations int               `json:"iterations"`
	Residual   float64           `json:"residual"`
	Nodes      []NodeResult      `json:"nodes"`
	Connectors []ConnectorResult `json:"connectors"`
	Fans       []FanResult       `json:"fans,omitempty"`
}

// NodeResult 节点压力
type NodeResult struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Pressure float64 `json:"pressure"`
}

// ConnectorResult 连接器流量，由 From 流向 To 为正
type ConnectorResult struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Resistance   string  `json:"resistance"`
	FlowRate     float64 `json:"flow_rate"`
	PressureDrop float64 `json:"pressure_drop"`
}

// FanResult 风机工作点
type FanResult struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	FlowRate float64 `json:"flow_rate"`
	DP       float64 `json:"dp"`
}

// fan 风机公共读数
type fan interface {
	element.Block
	FlowRate() (float64, error)
	DP() (float64, error)
}

// NewReport 读取已求解系统的结果
func NewReport(name string, s *system.IncompressibleSystem) (*Report, error) {
	r := &Report{
		Name:       name,
		Method:     s.Method().String(),
		Iterations: s.Iterations(),
		Residual:   s.Residual(),
	}
	for n := range s.Nodes() {
		p, err := n.Pressure()
		if err != nil {
			return nil, err
		}
		r.Nodes = append(r.Nodes, NodeResult{Name: system.NodeName(n), Kind: n.Kind().String(), Pressure: p})
	}
	for c := range s.Connectors() {
		q, err := c.FlowRate()
		if err != nil {
			return nil, err
		}
		dp, err := c.PressureDrop()
		if err != nil {
			return nil, err
		}
		a, b := c.Endpoints()
		r.Connectors = append(r.Connectors, ConnectorResult{
			From:         system.NodeName(a),
			To:           system.NodeName(b),
			Resistance:   c.Resistance().String(),
			FlowRate:     q,
			PressureDrop: dp,
		})
	}
	for b := range s.Blocks() {
		f, ok := b.(fan)
		if !ok {
			continue
		}
		q, err := f.FlowRate()
		if err != nil {
			return nil, err
		}
		dp, err := f.DP()
		if err != nil {
			return nil, err
		}
		r.Fans = append(r.Fans, FanResult{Name: b.Name(), Kind: b.Kind().String(), FlowRate: q, DP: dp})
	}
	return r, nil
}

// WriteJSON 以 JSON 输出
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)
)

// WriteTable 以表格输出
func (r *Report) WriteTable(w io.Writer) error {
	title := fmt.Sprintf("%s  method=%s iterations=%d residual=%.3e", r.Name, r.Method, r.Iterations, r.Residual)
	nodes := newTable("node", "kind", "pressure")
	for _, n := range r.Nodes {
		nodes.Row(n.Name, n.Kind, number(n.Pressure))
	}
	conns := newTable("from", "to", "resistance", "flow rate", "pressure drop")
	for _, c := range r.Connectors {
		conns.Row(c.From, c.To, c.Resistance, number(c.FlowRate), number(c.PressureDrop))
	}
	out := []string{styleTitle.Render(title), nodes.Render(), conns.Render()}
	if len(r.Fans) > 0 {
		fans := newTable("fan", "kind", "flow rate", "dp")
		for _, f := range r.Fans {
			fans.Row(f.Name, f.Kind, number(f.FlowRate), number(f.DP))
		}
		out = append(out, fans.Render())
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, out...))
	return err
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleCell
		})
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
