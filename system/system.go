// Package system 组装并求解不可压缩流体网络。
package system

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"poiseuille/element"
	"poiseuille/graph"
	"poiseuille/maths"
	"poiseuille/mna"
	"poiseuille/types"
)

// Observer 求解结果观察者（指标采集）。
type Observer interface {
	ObserveSolve(method types.Method, state types.State, iterations int, residual float64, elapsed time.Duration)
}

// Option 系统选项
type Option func(*IncompressibleSystem)

// WithLogger 设置日志
func WithLogger(l *log.Logger) Option {
	return func(s *IncompressibleSystem) { s.logger = l }
}

// WithDebug 设置调试记录
func WithDebug(d types.Debug) Option {
	return func(s *IncompressibleSystem) { s.debug = d }
}

// WithObserver 设置指标采集
func WithObserver(o Observer) Option {
	return func(s *IncompressibleSystem) { s.observer = o }
}

// WithMethod 设置求解方法
func WithMethod(m types.Method) Option {
	return func(s *IncompressibleSystem) { s.method = m }
}

// WithTolerance 设置收敛容差
func WithTolerance(tol float64) Option {
	return func(s *IncompressibleSystem) { s.Tolerance = tol }
}

// WithMaxIterations 设置最大迭代次数
func WithMaxIterations(n int) Option {
	return func(s *IncompressibleSystem) { s.MaxIterations = n }
}

// WithDamping 设置阻尼因子范围
func WithDamping(initial, minimum, maximum float64) Option {
	return func(s *IncompressibleSystem) {
		s.DampingFactor, s.MinDampingFactor, s.MaxDampingFactor = initial, minimum, maximum
	}
}

// IncompressibleSystem 不可压缩稳态流体网络。
// 状态: Constructed → Assembled → Solved | Diverged。
type IncompressibleSystem struct {
	mu       sync.Mutex
	blocks   []element.Block
	graph    *graph.Graph
	mna      mna.UpdateMNA
	lu       maths.LU
	state    types.State
	method   types.Method // 请求的求解方法
	used     types.Method // 上次求解实际使用的方法
	iter     int          // 上次求解迭代次数
	residual float64      // 上次求解最终残差
	warm     []float64    // 上次收敛的解向量
	damping  float64      // 当前阻尼因子
	logger   *log.Logger
	debug    types.Debug
	observer Observer
	// 阻尼Newton-Raphson参数
	Tolerance        float64 // 收敛容差（相对）
	MaxIterations    int     // 最大迭代次数
	DampingFactor    float64 // 初始阻尼因子
	MinDampingFactor float64 // 最小阻尼因子
	MaxDampingFactor float64 // 最大阻尼因子
}

// New 由块列表创建系统。经连接器可达的其他块会在组装时被收养。
func New(blocks []element.Block, opts ...Option) *IncompressibleSystem {
	s := &IncompressibleSystem{
		blocks:           blocks,
		state:            types.StateConstructed,
		method:           types.MethodAuto,
		Tolerance:        types.Tolerance,
		MaxIterations:    types.MaxIterations,
		DampingFactor:    types.DampingFactor,
		MinDampingFactor: types.MinDampingFactor,
		MaxDampingFactor: types.MaxDampingFactor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return s
}

func (s *IncompressibleSystem) State() types.State   { return s.state }
func (s *IncompressibleSystem) Iterations() int      { return s.iter }
func (s *IncompressibleSystem) Residual() float64    { return s.residual }
func (s *IncompressibleSystem) Method() types.Method { return s.used }
func (s *IncompressibleSystem) Graph() *graph.Graph  { return s.graph }

// Nodes 节点序列（按节点索引），组装前为空。
func (s *IncompressibleSystem) Nodes() iter.Seq[*element.Node] {
	return func(yield func(*element.Node) bool) {
		if s.graph == nil {
			return
		}
		for _, n := range s.graph.Nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// Connectors 连接器序列（按连接器索引），组装前为空。
func (s *IncompressibleSystem) Connectors() iter.Seq[*element.Connector] {
	return func(yield func(*element.Connector) bool) {
		if s.graph == nil {
			return
		}
		for _, c := range s.graph.Connectors {
			if !yield(c) {
				return
			}
		}
	}
}

// Blocks 块序列，组装后包含收养的块。
func (s *IncompressibleSystem) Blocks() iter.Seq[element.Block] {
	return func(yield func(element.Block) bool) {
		blocks := s.blocks
		if s.graph != nil {
			blocks = s.graph.Blocks
		}
		for _, b := range blocks {
			if !yield(b) {
				return
			}
		}
	}
}

// Rows 未知量名称（节点压力与支路流量），与解向量一一对应。
func (s *IncompressibleSystem) Rows() []string {
	if s.mna == nil {
		return nil
	}
	rows := make([]string, s.mna.GetNodeNum()+s.mna.GetBranchNum())
	for _, n := range s.graph.Nodes {
		if r := s.mna.Row(n.Index()); r != mna.Unset {
			rows[r] = "p(" + NodeName(n) + ")"
		}
	}
	for _, b := range s.graph.Blocks {
		if f, ok := b.(*element.PowerCurveFan); ok {
			rows[s.mna.BranchRow(f.Branch())] = "Q(" + blockName(b) + ")"
		}
	}
	return rows
}

// NodeName 节点显示名称，所属块未命名时使用节点索引。
func NodeName(n *element.Node) string {
	if n.Block() != nil && n.Block().Name() != "" {
		return n.String()
	}
	return fmt.Sprintf("n%d", n.Index())
}

func blockName(b element.Block) string {
	if b.Name() != "" {
		return b.Name()
	}
	return b.Kind().String()
}

// String 输出结构
func (s *IncompressibleSystem) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "状态: %s 方法: %s 迭代: %d 残差: %.3e\n", s.state, s.used, s.iter, s.residual)
	if s.graph == nil {
		return sb.String()
	}
	sb.WriteString("节点ID: 节点 [类型]\n")
	for _, n := range s.graph.Nodes {
		fmt.Fprintf(&sb, " %d: %s [%s]\n", n.Index(), NodeName(n), n.Kind())
	}
	sb.WriteString("连接器ID: 连接\n")
	for _, c := range s.graph.Connectors {
		fmt.Fprintf(&sb, " %d: %s\n", c.Index(), c)
	}
	if s.mna != nil {
		sb.WriteString(s.mna.String())
	}
	return sb.String()
}
