package load

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"poiseuille/element"
	"poiseuille/graph"
	"poiseuille/resistance"
)

// Export 将 blocks 可达的网络写为 YAML 描述。
func Export(w io.Writer, name string, blocks []element.Block) error {
	desc, err := Describe(name, blocks)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(desc); err != nil {
		return fmt.Errorf("写出网络描述: %w", err)
	}
	return enc.Close()
}

// Describe 由块列表生成网络描述，未命名的块按类型自动命名。
func Describe(name string, blocks []element.Block) (*Description, error) {
	g, err := graph.Discover(blocks)
	if err != nil {
		return nil, err
	}
	desc := &Description{Name: name}
	names := make(map[element.Block]string, len(g.Blocks))
	used := make(map[string]bool, len(g.Blocks))
	for _, b := range g.Blocks {
		if b.Name() != "" {
			used[b.Name()] = true
		}
	}
	for i, b := range g.Blocks {
		n := b.Name()
		if n == "" {
			n = fmt.Sprintf("%s%d", b.Kind(), i)
			for used[n] {
				n += "_"
			}
			used[n] = true
		}
		names[b] = n
		spec, err := describeBlock(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", n, err)
		}
		spec.Name = n
		desc.Blocks = append(desc.Blocks, spec)
	}
	for _, c := range g.Connectors {
		a, b := c.Endpoints()
		r, err := describeResistance(c.Resistance())
		if err != nil {
			return nil, fmt.Errorf("%s -> %s: %w", a, b, err)
		}
		desc.Connectors = append(desc.Connectors, ConnectorSpec{
			From:       portRef(a, names[a.Block()]),
			To:         portRef(b, names[b.Block()]),
			Resistance: r,
		})
	}
	return desc, nil
}

func describeBlock(b element.Block) (BlockSpec, error) {
	spec := BlockSpec{Kind: b.Kind().String()}
	switch b := b.(type) {
	case *element.PressureReservoir:
		spec.Pressure = b.Pressure()
	case *element.ConstantDeliveryFan:
		spec.FlowRate = b.Delivery()
	case *element.PowerCurveFan:
		p, ok := b.Curve().(element.Polynomial)
		if !ok {
			return spec, fmt.Errorf("性能曲线 %T 无法导出，仅支持多项式", b.Curve())
		}
		spec.Curve = []float64(p)
	default:
		return spec, fmt.Errorf("未知块 %T", b)
	}
	return spec, nil
}

func describeResistance(f resistance.Function) (ResistanceSpec, error) {
	switch r := f.(type) {
	case resistance.Linear:
		return ResistanceSpec{Kind: ResistanceLinear, R: r.R}, nil
	case resistance.Poiseuille:
		spec := ResistanceSpec{Kind: ResistancePoiseuille, Radius: r.Radius}
		if r.K != resistance.DefaultPoiseuilleK {
			spec.K = r.K
		}
		return spec, nil
	case resistance.Quadratic:
		return ResistanceSpec{Kind: ResistanceQuadratic, C: r.C}, nil
	}
	return ResistanceSpec{}, fmt.Errorf("阻力函数 %T 无法导出", f)
}
