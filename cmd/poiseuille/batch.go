package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"poiseuille"
	"poiseuille/metrics"
)

type batchOpts struct {
	workers int  // 并发数
	metrics bool // 输出 prometheus 指标
	json    bool
}

func newBatchCmd() *cobra.Command {
	var opts batchOpts
	cmd := &cobra.Command{
		Use:   "batch <files...>",
		Short: "并发求解多个网络",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "并发数 (默认取配置文件)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "结束后输出求解指标")
	cmd.Flags().BoolVar(&opts.json, "json", false, "以 JSON 输出每个网络的结果")
	return cmd
}

func runBatch(cmd *cobra.Command, paths []string, opts batchOpts) error {
	ctx := cmd.Context()
	cfg := configFromContext(ctx)
	logger := loggerFromContext(ctx)
	if opts.workers <= 0 {
		opts.workers = cfg.Batch.Workers
	}
	reg := metrics.NewRegistry()

	prog := newProgress(logger)
	results, err := poiseuille.Batch(ctx, poiseuille.FileJobs(paths), poiseuille.BatchOptions{
		Workers: opts.workers,
		Options: cfg.Options(),
		Logger:  logger,
		Metrics: reg,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("求解 %d 个网络", len(results)))

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(out, "%s %s %s\n", styleError.Render(iconError), r.Name, styleDim.Render(r.Err.Error()))
			continue
		}
		if opts.json {
			if err := r.Report.WriteJSON(out); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "%s %s %s\n", styleSuccess.Render(iconSuccess), r.Name,
			styleDim.Render(fmt.Sprintf("%s %d 次迭代 残差 %.3e (%s)", r.Report.Method, r.Report.Iterations, r.Report.Residual, r.Elapsed)))
	}
	if opts.metrics {
		if err := reg.WriteText(out); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d 个网络求解失败", failed)
	}
	return nil
}
