// Package debug 记录求解过程，并输出 JSON、网页图表和风机工作点图。
package debug

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"poiseuille/element"
	"poiseuille/system"
	"poiseuille/types"
)

// Record 记录迭代历史
type Record struct {
	ID       string      // 记录标识
	Rows     []string    // 未知量名称
	Iter     []int       // 迭代序号
	Residual []float64   // 残差列
	Damping  []float64   // 阻尼列
	X        [][]float64 // 未知量列
	Err      string      `json:",omitempty"` // 求解错误
	Network  *Network    `json:",omitempty"` // 网络快照
}

// Network 网络快照
type Network struct {
	Nodes []NodeInfo
	Links []LinkInfo
}

// NodeInfo 节点信息
type NodeInfo struct {
	Index    int
	Name     string
	Kind     string
	Pressure *float64 `json:",omitempty"`
}

// LinkInfo 连接信息（连接器或风机）
type LinkInfo struct {
	Source int
	Target int
	Kind   string
	Label  string
	Flow   *float64 `json:",omitempty"`
}

// NewRecord 创建记录
func NewRecord() *Record {
	return &Record{ID: uuid.NewString()}
}

// Init 初始化
func (list *Record) Init(rows []string) {
	list.Rows = rows
	list.Iter = list.Iter[:0]
	list.Residual = list.Residual[:0]
	list.Damping = list.Damping[:0]
	list.X = list.X[:0]
	list.Err = ""
}

func (*Record) IsDebug() bool { return true }

// Update 记录数据
func (list *Record) Update(it types.Iteration) {
	list.Iter = append(list.Iter, it.Iter)
	list.Residual = append(list.Residual, it.Residual)
	list.Damping = append(list.Damping, it.Damping)
	list.X = append(list.X, append([]float64{}, it.X...))
}

func (list *Record) Error(err error) { list.Err = err.Error() }

// Render 格式和输出内容
func (list *Record) Render(w io.Writer) error { return json.NewEncoder(w).Encode(list) }

// Snapshot 记录网络拓扑与求解结果，未求解的值省略。
func (list *Record) Snapshot(s *system.IncompressibleSystem) {
	net := &Network{}
	for n := range s.Nodes() {
		info := NodeInfo{Index: int(n.Index()), Name: system.NodeName(n), Kind: n.Kind().String()}
		if p, err := n.Pressure(); err == nil {
			info.Pressure = &p
		}
		net.Nodes = append(net.Nodes, info)
	}
	for c := range s.Connectors() {
		a, b := c.Endpoints()
		link := LinkInfo{Source: int(a.Index()), Target: int(b.Index()), Kind: "connector", Label: c.Resistance().String()}
		if q, err := c.FlowRate(); err == nil {
			link.Flow = &q
		}
		net.Links = append(net.Links, link)
	}
	for b := range s.Blocks() {
		fan, ok := b.(interface {
			Input() *element.Node
			Output() *element.Node
			FlowRate() (float64, error)
		})
		if !ok {
			continue
		}
		link := LinkInfo{
			Source: int(fan.Input().Index()),
			Target: int(fan.Output().Index()),
			Kind:   b.Kind().String(),
			Label:  b.Name(),
		}
		if q, err := fan.FlowRate(); err == nil {
			link.Flow = &q
		}
		net.Links = append(net.Links, link)
	}
	list.Network = net
}
