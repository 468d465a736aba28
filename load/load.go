// Package load 读取与导出 YAML 网络描述。
//
// 描述由 blocks 与 connectors 两部分组成，连接端口写作 "块名.端口"，
// 储罐只有一个端口，可以省略端口名。
package load

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"poiseuille/element"
	"poiseuille/resistance"
)

// 阻力类型
const (
	ResistanceLinear          = "linear"
	ResistancePoiseuille      = "poiseuille"
	ResistanceHagenPoiseuille = "hagen_poiseuille"
	ResistanceQuadratic       = "quadratic"
)

// Description 网络描述
type Description struct {
	Name       string          `yaml:"name,omitempty"`
	Blocks     []BlockSpec     `yaml:"blocks" validate:"required,min=1,unique=Name,dive"`
	Connectors []ConnectorSpec `yaml:"connectors,omitempty" validate:"dive"`
}

// BlockSpec 边界设备
type BlockSpec struct {
	Name             string    `yaml:"name" validate:"required,excludes=."`
	Kind             string    `yaml:"kind" validate:"required,oneof=reservoir constant_fan curve_fan"`
	Pressure         float64   `yaml:"pressure,omitempty"`          // reservoir
	FlowRate         float64   `yaml:"flow_rate,omitempty"`         // constant_fan
	Curve            []float64 `yaml:"curve,flow,omitempty" validate:"required_if=Kind curve_fan,max=8"`
	UpdateProperties bool      `yaml:"update_properties,omitempty"` // curve_fan 加载后求工作点初值
}

// ConnectorSpec 连接器
type ConnectorSpec struct {
	From       string         `yaml:"from" validate:"required"`
	To         string         `yaml:"to" validate:"required,nefield=From"`
	Exclusive  bool           `yaml:"exclusive,omitempty"`
	Resistance ResistanceSpec `yaml:"resistance"`
}

// ResistanceSpec 阻力函数参数
type ResistanceSpec struct {
	Kind      string  `yaml:"kind" validate:"required,oneof=linear poiseuille hagen_poiseuille quadratic"`
	R         float64 `yaml:"r,omitempty" validate:"required_if=Kind linear,gte=0"`
	Radius    float64 `yaml:"radius,omitempty" validate:"required_if=Kind poiseuille,gte=0"`
	K         float64 `yaml:"k,omitempty" validate:"gte=0"`
	Viscosity float64 `yaml:"viscosity,omitempty" validate:"required_if=Kind hagen_poiseuille,gte=0"`
	Length    float64 `yaml:"length,omitempty" validate:"required_if=Kind hagen_poiseuille,gte=0"`
	C         float64 `yaml:"c,omitempty" validate:"required_if=Kind quadratic,gte=0"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// LoadString 加载网络描述。
func LoadString(s string) (*Network, error) {
	return Load(strings.NewReader(s))
}

// LoadFile 从文件加载网络描述。
func LoadFile(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开网络描述: %w", err)
	}
	defer f.Close()
	network, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return network, nil
}

// Load 解析、校验并构建网络。
func Load(r io.Reader) (*Network, error) {
	desc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return desc.Build()
}

// Parse 解析并校验网络描述，不构建网络。
func Parse(r io.Reader) (*Description, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	desc := &Description{}
	if err := dec.Decode(desc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("网络描述为空")
		}
		return nil, fmt.Errorf("解析网络描述: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

// Validate 按字段标签校验
func (d *Description) Validate() error {
	if err := validate.Struct(d); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	errs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), "Description.")
		switch e.Tag() {
		case "required", "required_if":
			errs = append(errs, fmt.Errorf("%s: 缺少必填字段", field))
		case "oneof":
			errs = append(errs, fmt.Errorf("%s: 取值 %v 不在 [%s] 中", field, e.Value(), e.Param()))
		case "unique":
			errs = append(errs, fmt.Errorf("%s: %s 重复", field, e.Param()))
		case "nefield":
			errs = append(errs, fmt.Errorf("%s: 两端不能相同", field))
		case "min", "gte":
			errs = append(errs, fmt.Errorf("%s: 不能小于 %s", field, e.Param()))
		case "max":
			errs = append(errs, fmt.Errorf("%s: 不能超过 %s", field, e.Param()))
		default:
			errs = append(errs, fmt.Errorf("%s: 校验失败 (%s)", field, e.Tag()))
		}
	}
	return errors.Join(errs...)
}

// Build 创建块与连接器。
func (d *Description) Build() (*Network, error) {
	network := &Network{Name: d.Name, blocks: make(map[string]element.Block, len(d.Blocks))}
	var fans []*element.PowerCurveFan
	for i, spec := range d.Blocks {
		block, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("blocks[%d] %s: %w", i, spec.Name, err)
		}
		block.SetName(spec.Name)
		network.Blocks = append(network.Blocks, block)
		network.blocks[spec.Name] = block
		if fan, ok := block.(*element.PowerCurveFan); ok && spec.UpdateProperties {
			fans = append(fans, fan)
		}
	}
	for i, spec := range d.Connectors {
		c, err := network.connect(spec)
		if err != nil {
			return nil, fmt.Errorf("connectors[%d] %s -> %s: %w", i, spec.From, spec.To, err)
		}
		network.Connectors = append(network.Connectors, c)
	}
	for _, fan := range fans {
		if err := fan.UpdateProperties(); err != nil {
			return nil, fmt.Errorf("%s 工作点初值: %w", fan.Name(), err)
		}
	}
	return network, nil
}

func (spec BlockSpec) build() (element.Block, error) {
	kind, _ := element.ParseKind(spec.Kind)
	switch kind {
	case element.KindPressureReservoir:
		return element.NewPressureReservoir(spec.Pressure), nil
	case element.KindConstantDeliveryFan:
		return element.NewConstantDeliveryFan(spec.FlowRate), nil
	case element.KindPowerCurveFan:
		if len(spec.Curve) == 0 {
			return nil, errors.New("性能曲线系数为空")
		}
		return element.NewPowerCurveFan(element.Polynomial(spec.Curve)), nil
	}
	return nil, fmt.Errorf("未知块类型 %q", spec.Kind)
}

// Function 创建阻力函数
func (spec ResistanceSpec) Function() (resistance.Function, error) {
	switch spec.Kind {
	case ResistanceLinear:
		return resistance.NewLinear(spec.R)
	case ResistancePoiseuille:
		if spec.K == 0 {
			return resistance.NewPoiseuille(spec.Radius)
		}
		return resistance.NewPoiseuilleK(spec.K, spec.Radius)
	case ResistanceHagenPoiseuille:
		return resistance.HagenPoiseuille(spec.Viscosity, spec.Length, spec.Radius)
	case ResistanceQuadratic:
		return resistance.NewQuadratic(spec.C)
	}
	return nil, fmt.Errorf("未知阻力类型 %q", spec.Kind)
}

func (network *Network) connect(spec ConnectorSpec) (*element.Connector, error) {
	from, err := network.Port(spec.From)
	if err != nil {
		return nil, err
	}
	to, err := network.Port(spec.To)
	if err != nil {
		return nil, err
	}
	r, err := spec.Resistance.Function()
	if err != nil {
		return nil, err
	}
	c := element.NewConnector(r)
	if spec.Exclusive {
		err = c.ConnectExclusive(from, to)
	} else {
		err = c.Connect(from, to)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
