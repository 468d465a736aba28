package main

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"poiseuille/debug"
)

func newPlotCmd() *cobra.Command {
	var fanName, output string
	cmd := &cobra.Command{
		Use:   "plot <file>",
		Short: "绘制风机曲线、系统曲线与工作点",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fanName == "" {
				return errors.New("需要 --fan 指定性能曲线风机")
			}
			n, err := openNetwork(cmd, args[0])
			if err != nil {
				return err
			}
			if _, err := n.Solve(); err != nil {
				return err
			}
			fan, err := n.PowerCurveFan(fanName)
			if err != nil {
				return err
			}
			format := strings.TrimPrefix(filepath.Ext(output), ".")
			if format == "" {
				format = "png"
			}
			if err := writeFile(output, func(w io.Writer) error {
				return debug.PlotOperatingPoint(w, fan, format)
			}); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("已生成", "file", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&fanName, "fan", "", "性能曲线风机名称")
	cmd.Flags().StringVarP(&output, "output", "o", "operating_point.png", "输出文件 (png, svg, pdf)")
	return cmd
}
