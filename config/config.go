// Package config 求解器配置文件(TOML)。
//
// 配置文件查找顺序:
//  1. $POISEUILLE_CONFIG
//  2. ./poiseuille.toml
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"poiseuille/system"
	"poiseuille/types"
)

// DefaultPath 默认配置文件
const DefaultPath = "poiseuille.toml"

// Config 配置
type Config struct {
	Solver SolverConfig `toml:"solver"`
	Log    LogConfig    `toml:"log"`
	Batch  BatchConfig  `toml:"batch"`
}

// SolverConfig 求解参数
type SolverConfig struct {
	Method        string  `toml:"method"`         // auto, direct, newton
	Tolerance     float64 `toml:"tolerance"`      // 相对残差容差
	MaxIterations int     `toml:"max_iterations"` // 最大迭代次数
	Damping       float64 `toml:"damping"`        // 初始阻尼因子
	MinDamping    float64 `toml:"min_damping"`    // 最小阻尼因子
	MaxDamping    float64 `toml:"max_damping"`    // 最大阻尼因子
}

// LogConfig 日志参数
type LogConfig struct {
	Level string `toml:"level"`
}

// BatchConfig 批量求解参数
type BatchConfig struct {
	Workers int `toml:"workers"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// FindConfigPath 查找配置文件，没有则返回空字符串
func FindConfigPath() string {
	if p := os.Getenv("POISEUILLE_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load 加载配置，path 为空时查找默认位置，找不到则使用默认值
func Load(path string) (*Config, error) {
	if path == "" {
		path = FindConfigPath()
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyDefaults 填充缺省值
func (c *Config) applyDefaults() {
	if c.Solver.Method == "" {
		c.Solver.Method = types.MethodAuto.String()
	}
	if c.Solver.Tolerance == 0 {
		c.Solver.Tolerance = types.Tolerance
	}
	if c.Solver.MaxIterations == 0 {
		c.Solver.MaxIterations = types.MaxIterations
	}
	if c.Solver.Damping == 0 {
		c.Solver.Damping = types.DampingFactor
	}
	if c.Solver.MinDamping == 0 {
		c.Solver.MinDamping = types.MinDampingFactor
	}
	if c.Solver.MaxDamping == 0 {
		c.Solver.MaxDamping = types.MaxDampingFactor
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = runtime.GOMAXPROCS(0)
	}
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	var errs []error
	if _, ok := types.ParseMethod(c.Solver.Method); !ok {
		errs = append(errs, fmt.Errorf("unknown solver method %q", c.Solver.Method))
	}
	if c.Solver.Tolerance <= 0 {
		errs = append(errs, fmt.Errorf("tolerance must be positive: %v", c.Solver.Tolerance))
	}
	if c.Solver.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("max_iterations must be at least 1: %d", c.Solver.MaxIterations))
	}
	s := c.Solver
	if !(s.MinDamping > 0 && s.MinDamping <= s.Damping && s.Damping <= s.MaxDamping && s.MaxDamping <= 1) {
		errs = append(errs, fmt.Errorf("damping must satisfy 0 < min <= damping <= max <= 1: %v %v %v", s.MinDamping, s.Damping, s.MaxDamping))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1: %d", c.Batch.Workers))
	}
	return errors.Join(errs...)
}

// Method 求解方法
func (c *Config) Method() types.Method {
	m, _ := types.ParseMethod(c.Solver.Method)
	return m
}

// LogLevel 日志级别，无法解析时为 Info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Options 转换为系统选项
func (c *Config) Options() []system.Option {
	return []system.Option{
		system.WithMethod(c.Method()),
		system.WithTolerance(c.Solver.Tolerance),
		system.WithMaxIterations(c.Solver.MaxIterations),
		system.WithDamping(c.Solver.Damping, c.Solver.MinDamping, c.Solver.MaxDamping),
	}
}
