package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"poiseuille/debug"
	"poiseuille/system"
)

type solveOpts struct {
	json   bool   // JSON 输出
	record string // 迭代记录输出文件
}

func newSolveCmd() *cobra.Command {
	var opts solveOpts
	cmd := &cobra.Command{
		Use:   "solve <file>",
		Short: "求解网络并输出节点压力与流量",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args[0], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "以 JSON 输出")
	cmd.Flags().StringVar(&opts.record, "record", "", "将迭代过程写入 JSON 文件")
	return cmd
}

func runSolve(cmd *cobra.Command, path string, opts solveOpts) error {
	logger := loggerFromContext(cmd.Context())
	var extra []system.Option
	var rec *debug.Record
	if opts.record != "" {
		rec = debug.NewRecord()
		extra = append(extra, system.WithDebug(rec))
	}
	n, err := openNetwork(cmd, path, extra...)
	if err != nil {
		return err
	}
	prog := newProgress(logger)
	report, solveErr := n.Solve()
	if rec != nil {
		rec.Snapshot(n.System)
		if err := writeFile(opts.record, rec.Render); err != nil {
			return err
		}
		logger.Debug("迭代记录", "file", opts.record)
	}
	if solveErr != nil {
		return solveErr
	}
	prog.done(fmt.Sprintf("%s: %s %d 次迭代", report.Name, report.Method, report.Iterations))
	if opts.json {
		return report.WriteJSON(cmd.OutOrStdout())
	}
	return report.WriteTable(cmd.OutOrStdout())
}

// writeFile 创建文件并写入
func writeFile(path string, render func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("写入 %s: %w", path, err)
	}
	return f.Close()
}
