package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"poiseuille/debug"
	"poiseuille/metrics"
	"poiseuille/system"
)

type chartOpts struct {
	output string
	serve  string // 监听地址，为空时只写文件
}

func newChartCmd() *cobra.Command {
	var opts chartOpts
	cmd := &cobra.Command{
		Use:   "chart <file>",
		Short: "生成网络图与收敛过程网页",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "network.html", "输出文件")
	cmd.Flags().StringVar(&opts.serve, "serve", "", "以 HTTP 提供页面与 /metrics，例如 :8080")
	return cmd
}

func runChart(cmd *cobra.Command, path string, opts chartOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	c := debug.NewCharts()
	reg := metrics.NewRegistry()
	n, err := openNetwork(cmd, path, system.WithDebug(c), system.WithObserver(reg))
	if err != nil {
		return err
	}
	// 求解失败时仍输出发散过程
	if _, err := n.Solve(); err != nil {
		logger.Warn("求解失败", "err", err)
	}
	c.Snapshot(n.System)
	if err := writeFile(opts.output, c.Render); err != nil {
		return err
	}
	logger.Info("已生成", "file", opts.output)
	if opts.serve == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", c.Handler)
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{Addr: opts.serve, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	logger.Info("HTTP 服务", "addr", opts.serve)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
