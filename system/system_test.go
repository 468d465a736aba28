package system

import (
	"io"
	"math"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poiseuille/element"
	"poiseuille/resistance"
	"poiseuille/types"
)

// fanCurve 示例风机曲线
var fanCurve = element.Polynomial{10, 0.023512, -0.102351}

func connect(t *testing.T, r resistance.Function, a, b *element.Node) *element.Connector {
	t.Helper()
	c := element.NewConnector(r)
	require.NoError(t, c.Connect(a, b))
	return c
}

func poiseuille(t *testing.T, radius float64) resistance.Poiseuille {
	t.Helper()
	r, err := resistance.NewPoiseuille(radius)
	require.NoError(t, err)
	return r
}

func linear(t *testing.T, r float64) resistance.Linear {
	t.Helper()
	l, err := resistance.NewLinear(r)
	require.NoError(t, err)
	return l
}

func pressure(t *testing.T, n *element.Node) float64 {
	t.Helper()
	p, err := n.Pressure()
	require.NoError(t, err)
	return p
}

func flow(t *testing.T, c *element.Connector) float64 {
	t.Helper()
	q, err := c.FlowRate()
	require.NoError(t, err)
	return q
}

type ductNetwork struct {
	p1, p2 *element.PressureReservoir
	fan    *element.ConstantDeliveryFan
	c1, c2 *element.Connector
	r1, r2 resistance.Poiseuille
}

// newDuctNetwork 储罐(0) - r=1.34 - 定流量风机 - r=1.12 - 储罐(0)
func newDuctNetwork(t *testing.T, q float64) *ductNetwork {
	n := &ductNetwork{
		p1:  element.NewPressureReservoir(0),
		p2:  element.NewPressureReservoir(0),
		fan: element.NewConstantDeliveryFan(q),
		r1:  poiseuille(t, 1.34),
		r2:  poiseuille(t, 1.12),
	}
	n.c1 = connect(t, n.r1, n.p1.Node(), n.fan.Input())
	n.c2 = connect(t, n.r2, n.fan.Output(), n.p2.Node())
	return n
}

func (n *ductNetwork) blocks() []element.Block {
	return []element.Block{n.p1, n.p2, n.fan}
}

type curveNetwork struct {
	p1, p2 *element.PressureReservoir
	fan    *element.PowerCurveFan
	c1, c2 *element.Connector
}

// newCurveNetwork 储罐(3) - R=1 - 曲线风机 - R=1 - 储罐(2)
func newCurveNetwork(t *testing.T, curve element.FanCurve) *curveNetwork {
	n := &curveNetwork{
		p1:  element.NewPressureReservoir(3),
		p2:  element.NewPressureReservoir(2),
		fan: element.NewPowerCurveFan(curve),
	}
	n.c1 = connect(t, linear(t, 1), n.p1.Node(), n.fan.Input())
	n.c2 = connect(t, linear(t, 1), n.fan.Output(), n.p2.Node())
	return n
}

func (n *curveNetwork) blocks() []element.Block {
	return []element.Block{n.p1, n.p2, n.fan}
}

func TestConstantDeliveryFanNetwork(t *testing.T) {
	n := newDuctNetwork(t, 5)
	s := New(n.blocks())
	require.NoError(t, s.Solve())

	assert.Equal(t, types.StateSolved, s.State())
	assert.Equal(t, types.MethodDirect, s.Method())
	for c := range s.Connectors() {
		assert.InDelta(t, 5, flow(t, c), 1e-9)
	}
	// 每个连接器的压降与其阻力一致
	assert.InDelta(t, -5*n.r1.Resistance(), pressure(t, n.fan.Input()), 1e-9)
	assert.InDelta(t, 5*n.r2.Resistance(), pressure(t, n.fan.Output()), 1e-9)
	dp1, err := n.c1.PressureDrop()
	require.NoError(t, err)
	dp2, err := n.c2.PressureDrop()
	require.NoError(t, err)
	assert.NotEqual(t, dp1, dp2)
	assert.Equal(t, 0.0, pressure(t, n.p1.Node()))
}

func TestPowerCurveFanNetwork(t *testing.T) {
	n := newCurveNetwork(t, fanCurve)
	require.NoError(t, n.fan.UpdateProperties())
	guess, err := n.fan.FlowRate()
	require.NoError(t, err)

	s := New(n.blocks())
	require.NoError(t, s.Solve())
	assert.Equal(t, types.MethodNewton, s.Method())

	q, err := n.fan.FlowRate()
	require.NoError(t, err)
	dp, err := n.fan.DP()
	require.NoError(t, err)
	assert.Greater(t, q, 0.0)
	assert.InDelta(t, guess, q, 1e-8)
	assert.InDelta(t, 4.511451645997526, q, 1e-8)
	// 代入残差方程: 风机压升 = 外部压降 + 储罐压差
	assert.InDelta(t, fanCurve.Pressure(q), dp, 1e-8)
	assert.InDelta(t, 2*q-1, dp, 1e-8)
	for c := range s.Connectors() {
		assert.InDelta(t, q, flow(t, c), 1e-8)
	}
}

func TestNewtonWithoutOperatingPoint(t *testing.T) {
	n := newCurveNetwork(t, fanCurve)
	s := New(n.blocks())
	require.NoError(t, s.Solve())
	q, err := n.fan.FlowRate()
	require.NoError(t, err)
	assert.InDelta(t, 4.511451645997526, q, 1e-8)
	assert.Greater(t, s.Iterations(), 1)
}

func TestDirectNewtonAgreement(t *testing.T) {
	solve := func(method types.Method) []float64 {
		n := newDuctNetwork(t, 3)
		s := New(n.blocks(), WithMethod(method))
		require.NoError(t, s.Solve())
		assert.Equal(t, method, s.Method())
		var ps []float64
		for node := range s.Nodes() {
			ps = append(ps, pressure(t, node))
		}
		return ps
	}
	direct, newton := solve(types.MethodDirect), solve(types.MethodNewton)
	require.Len(t, newton, len(direct))
	for i := range direct {
		assert.InDelta(t, direct[i], newton[i], 1e-9)
	}
}

func TestIdempotentSolve(t *testing.T) {
	n := newCurveNetwork(t, fanCurve)
	s := New(n.blocks())
	require.NoError(t, s.Solve())
	first := map[*element.Node]float64{}
	for node := range s.Nodes() {
		first[node] = pressure(t, node)
	}
	require.NoError(t, s.Solve())
	assert.Equal(t, 0, s.Iterations())
	for node := range s.Nodes() {
		assert.Equal(t, first[node], pressure(t, node))
	}
}

func TestResolveAfterMutation(t *testing.T) {
	n := newCurveNetwork(t, fanCurve)
	s := New(n.blocks())
	require.NoError(t, s.Solve())
	before := pressure(t, n.fan.Input())

	n.p1.SetPressure(5)
	// 重新求解前读取的是上一次的结果
	assert.Equal(t, before, pressure(t, n.fan.Input()))

	require.NoError(t, s.Solve())
	q, err := n.fan.FlowRate()
	require.NoError(t, err)
	dp, err := n.fan.DP()
	require.NoError(t, err)
	// 储罐压差变为 3: Curve(Q) = 2Q - 3
	assert.InDelta(t, 2*q-3, dp, 1e-8)
	assert.InDelta(t, fanCurve.Pressure(q), dp, 1e-8)
	assert.Equal(t, 5.0, pressure(t, n.p1.Node()))
}

func TestDisconnectedNetworkAtAssembly(t *testing.T) {
	p1 := element.NewPressureReservoir(0)
	fan := element.NewConstantDeliveryFan(1)
	connect(t, linear(t, 1), p1.Node(), fan.Input())
	s := New([]element.Block{p1, fan})

	var disc *types.DisconnectedNetworkError
	require.ErrorAs(t, s.Assemble(), &disc)
	assert.Equal(t, types.StateConstructed, s.State())
	require.ErrorAs(t, s.Solve(), &disc)
	_, err := fan.Output().Pressure()
	var unresolved *types.UnresolvedStateError
	assert.ErrorAs(t, err, &unresolved)
}

func TestResolveAfterDisconnect(t *testing.T) {
	n := newDuctNetwork(t, 5)
	obs, dbg := &recordObserver{}, &recordDebug{}
	s := New(n.blocks(), WithObserver(obs), WithDebug(dbg))
	require.NoError(t, s.Solve())
	require.Equal(t, types.StateSolved, s.State())

	// 出口再接一台没有储罐的风机
	floating := element.NewConstantDeliveryFan(1)
	connect(t, linear(t, 1), n.fan.Output(), floating.Input())

	var disc *types.DisconnectedNetworkError
	require.ErrorAs(t, s.Solve(), &disc)
	assert.Equal(t, types.StateDiverged, s.State())
	assert.Empty(t, slices.Collect(s.Nodes()))
	assert.Empty(t, slices.Collect(s.Connectors()))
	assert.Nil(t, s.Rows())
	assert.Equal(t, 2, obs.calls)
	assert.Equal(t, types.StateDiverged, obs.state)
	assert.ErrorAs(t, dbg.err, &disc)

	var unresolved *types.UnresolvedStateError
	_, err := n.fan.Input().Pressure()
	assert.ErrorAs(t, err, &unresolved)
	_, err = n.c1.FlowRate()
	assert.ErrorAs(t, err, &unresolved)
}

func TestAssembleState(t *testing.T) {
	n := newDuctNetwork(t, 1)
	s := New(n.blocks())
	assert.Equal(t, types.StateConstructed, s.State())
	assert.Empty(t, slices.Collect(s.Nodes()))
	require.NoError(t, s.Assemble())
	assert.Equal(t, types.StateAssembled, s.State())
	assert.Len(t, slices.Collect(s.Nodes()), 4)
	assert.Equal(t, []string{"p(n2)", "p(n3)"}, s.Rows())
}

// quadraticNetwork 储罐(0) - 湍流 - 定流量风机(2) - 湍流 - 储罐(1)
func quadraticNetwork(t *testing.T) (*element.ConstantDeliveryFan, []element.Block) {
	p1, p2 := element.NewPressureReservoir(0), element.NewPressureReservoir(1)
	fan := element.NewConstantDeliveryFan(2)
	quad, err := resistance.NewQuadratic(1)
	require.NoError(t, err)
	connect(t, quad, p1.Node(), fan.Input())
	connect(t, quad, fan.Output(), p2.Node())
	return fan, []element.Block{p1, p2, fan}
}

func TestQuadraticResistanceNetwork(t *testing.T) {
	fan, blocks := quadraticNetwork(t)
	s := New(blocks)
	require.NoError(t, s.Solve())
	assert.Equal(t, types.MethodNewton, s.Method())
	// Δp = Q·|Q| = 4
	assert.InDelta(t, -4, pressure(t, fan.Input()), 1e-7)
	assert.InDelta(t, 5, pressure(t, fan.Output()), 1e-7)
	for c := range s.Connectors() {
		assert.InDelta(t, 2, flow(t, c), 1e-8)
	}
}

func TestDivergence(t *testing.T) {
	fan, blocks := quadraticNetwork(t)
	s := New(blocks, WithMaxIterations(2))
	err := s.Solve()
	var conv *types.ConvergenceError
	require.ErrorAs(t, err, &conv)
	assert.Equal(t, 2, conv.Iterations)
	assert.Equal(t, types.StateDiverged, s.State())

	var unresolved *types.UnresolvedStateError
	_, err = fan.Input().Pressure()
	assert.ErrorAs(t, err, &unresolved)
	_, err = fan.DP()
	assert.ErrorAs(t, err, &unresolved)
	for c := range s.Connectors() {
		_, err = c.FlowRate()
		assert.ErrorAs(t, err, &unresolved)
	}
}

func TestMonotonicity(t *testing.T) {
	var last float64
	for i, q := range []float64{1, 2, 5, 8} {
		n := newDuctNetwork(t, q)
		require.NoError(t, New(n.blocks()).Solve())
		p := pressure(t, n.fan.Output())
		if i > 0 {
			assert.Greater(t, p, last)
		}
		last = p
	}
}

var reservoirSteps = []float64{-1, 0, 1, 2, 3, 5, 8, 13}

func TestReservoirMonotonicityColdStart(t *testing.T) {
	last := math.Inf(-1)
	for _, p := range reservoirSteps {
		n := newCurveNetwork(t, fanCurve)
		n.p1.SetPressure(p)
		require.NoError(t, New(n.blocks()).Solve())
		q := flow(t, n.c1)
		assert.GreaterOrEqual(t, q, last, "p1=%g", p)
		last = q
	}
}

func TestReservoirMonotonicityWarmStart(t *testing.T) {
	n := newCurveNetwork(t, fanCurve)
	s := New(n.blocks())
	last := math.Inf(-1)
	for _, p := range reservoirSteps {
		n.p1.SetPressure(p)
		require.NoError(t, s.Solve())
		q := flow(t, n.c1)
		assert.GreaterOrEqual(t, q, last, "p1=%g", p)
		// 储罐压差为 p - 2: Curve(Q) = 2Q - (p - 2)
		assert.InDelta(t, fanCurve.Pressure(q), 2*q-(p-2), 1e-8)
		last = q
	}
}

func TestParallelInletNetwork(t *testing.T) {
	n := newCurveNetwork(t, fanCurve)
	c3 := connect(t, linear(t, 1), n.p1.Node(), n.fan.Input())
	require.NoError(t, n.fan.UpdateProperties())
	guess, err := n.fan.FlowRate()
	require.NoError(t, err)

	s := New(n.blocks())
	require.NoError(t, s.Solve())
	q, err := n.fan.FlowRate()
	require.NoError(t, err)
	assert.InDelta(t, guess, q, 1e-8)
	assert.InDelta(t, q/2, flow(t, n.c1), 1e-8)
	assert.InDelta(t, q/2, flow(t, c3), 1e-8)
	assert.InDelta(t, q, flow(t, n.c2), 1e-8)
}

func TestConcurrentSolve(t *testing.T) {
	n := newCurveNetwork(t, fanCurve)
	s := New(n.blocks())
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.Solve()
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, types.StateSolved, s.State())
}

type recordObserver struct {
	calls int
	state types.State
}

func (o *recordObserver) ObserveSolve(_ types.Method, state types.State, _ int, _ float64, _ time.Duration) {
	o.calls++
	o.state = state
}

type recordDebug struct {
	rows  []string
	iters []types.Iteration
	err   error
}

func (d *recordDebug) Init(rows []string)        { d.rows = rows }
func (d *recordDebug) IsDebug() bool             { return true }
func (d *recordDebug) Update(it types.Iteration) { d.iters = append(d.iters, it) }
func (d *recordDebug) Render(w io.Writer) error  { return nil }
func (d *recordDebug) Error(err error)           { d.err = err }

func TestObserverAndDebug(t *testing.T) {
	n := newCurveNetwork(t, fanCurve)
	n.fan.SetName("fan")
	obs, dbg := &recordObserver{}, &recordDebug{}
	s := New(n.blocks(), WithObserver(obs), WithDebug(dbg))
	require.NoError(t, s.Solve())

	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, types.StateSolved, obs.state)
	assert.Equal(t, []string{"p(fan.input)", "p(fan.output)", "Q(fan)"}, dbg.rows)
	assert.Len(t, dbg.iters, s.Iterations())
	assert.NoError(t, dbg.err)
	last := dbg.iters[len(dbg.iters)-1]
	assert.Less(t, last.Residual, 1e-6)
	assert.False(t, math.IsNaN(last.X[2]))
}
