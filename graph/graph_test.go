package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poiseuille/element"
	"poiseuille/mna"
	"poiseuille/resistance"
	"poiseuille/types"
)

func connect(t *testing.T, a, b *element.Node) *element.Connector {
	t.Helper()
	r, err := resistance.NewLinear(1)
	require.NoError(t, err)
	c := element.NewConnector(r)
	require.NoError(t, c.Connect(a, b))
	return c
}

func TestDiscoveryAdoptsReachableBlocks(t *testing.T) {
	p1, p2 := element.NewPressureReservoir(0), element.NewPressureReservoir(0)
	fan := element.NewConstantDeliveryFan(5)
	connect(t, p1.Node(), fan.Input())
	connect(t, fan.Output(), p2.Node())

	// 只给出风机，两个储罐经连接器被收养
	g, err := NewGraph([]element.Block{fan})
	require.NoError(t, err)
	assert.Len(t, g.Blocks, 3)
	assert.Len(t, g.Nodes, 4)
	assert.Len(t, g.Connectors, 2)
	for i, n := range g.Nodes {
		assert.Equal(t, mna.NodeID(i), n.Index())
	}
	for i, c := range g.Connectors {
		assert.Equal(t, i, c.Index())
	}
	assert.True(t, g.Linear())
}

func TestDuplicateBlocks(t *testing.T) {
	p1 := element.NewPressureReservoir(1)
	fan := element.NewConstantDeliveryFan(1)
	connect(t, p1.Node(), fan.Input())
	connect(t, fan.Output(), p1.Node())
	g, err := NewGraph([]element.Block{p1, fan, p1})
	require.NoError(t, err)
	assert.Len(t, g.Blocks, 2)
	assert.Len(t, g.Nodes, 3)
}

func TestDisconnectedNetwork(t *testing.T) {
	p1 := element.NewPressureReservoir(0)
	fan := element.NewConstantDeliveryFan(5)
	connect(t, p1.Node(), fan.Input())
	// 风机出口悬空
	_, err := NewGraph([]element.Block{p1, fan})
	var disc *types.DisconnectedNetworkError
	require.ErrorAs(t, err, &disc)
	assert.Equal(t, []int{2}, disc.Nodes)

	// 仅发现时不检查压力基准
	g, err := Discover([]element.Block{fan})
	require.NoError(t, err)
	assert.Len(t, g.Components(), 2)
}

func TestPowerCurveFanTransmitsPressure(t *testing.T) {
	p1 := element.NewPressureReservoir(0)
	fan := element.NewPowerCurveFan(element.Polynomial{10, 0, -1})
	other := element.NewConstantDeliveryFan(1)
	connect(t, p1.Node(), fan.Input())
	connect(t, fan.Output(), other.Input())
	connect(t, other.Output(), p1.Node())

	g, err := NewGraph([]element.Block{p1, fan, other})
	require.NoError(t, err)
	assert.Len(t, g.Components(), 1)
	assert.False(t, g.Linear())

	layout := g.Layout()
	assert.Equal(t, 1, layout.Branches)
	assert.True(t, layout.Fixed[p1.Node().Index()])
	assert.False(t, layout.Fixed[fan.Input().Index()])
	assert.Equal(t, mna.BranchID(0), fan.Branch())
}

func TestEmptyAndNilBlocks(t *testing.T) {
	var topo *types.TopologyError
	_, err := NewGraph(nil)
	require.ErrorAs(t, err, &topo)
	_, err = NewGraph([]element.Block{nil})
	require.ErrorAs(t, err, &topo)
}
