package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"poiseuille"
	"poiseuille/config"
	"poiseuille/system"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
)

func newRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)
	root := &cobra.Command{
		Use:          "poiseuille",
		Short:        "稳态不可压缩流动网络求解",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			level := cfg.LogLevel()
			if verbose {
				level = log.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "求解器配置文件 (默认 $POISEUILLE_CONFIG 或 ./"+config.DefaultPath+")")

	root.AddCommand(newSolveCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newPlotCmd())
	root.AddCommand(newChartCmd())
	return root
}

// openNetwork 按配置加载网络
func openNetwork(cmd *cobra.Command, path string, extra ...system.Option) (*poiseuille.Network, error) {
	ctx := cmd.Context()
	opts := append(configFromContext(ctx).Options(), system.WithLogger(loggerFromContext(ctx).With("network", path)))
	return poiseuille.Open(path, append(opts, extra...)...)
}
