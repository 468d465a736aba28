package poiseuille

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"poiseuille/load"
	"poiseuille/metrics"
	"poiseuille/system"
)

// Job 批量求解任务，Network 为空时从 Path 加载。
//
// 各任务的网络互不共享块与连接器。
type Job struct {
	Name    string
	Path    string
	Network *load.Network
}

// Result 任务结果，单个任务失败不影响其它任务
type Result struct {
	ID      uuid.UUID
	Name    string
	Report  *Report
	Err     error
	Elapsed time.Duration
}

// BatchOptions 批量求解参数
type BatchOptions struct {
	Workers int             // 并发数，小于 1 时不限制
	Options []system.Option // 每个系统的求解选项
	Logger  *log.Logger
	Metrics *metrics.Registry
}

// FileJobs 每个文件一个任务
func FileJobs(paths []string) []Job {
	jobs := make([]Job, len(paths))
	for i, p := range paths {
		jobs[i] = Job{Name: p, Path: p}
	}
	return jobs
}

// Batch 并发求解多个网络，结果与 jobs 顺序一致。
//
// 只有 ctx 取消时返回错误，任务自身的错误记录在 Result.Err。
func Batch(ctx context.Context, jobs []Job, opts BatchOptions) ([]Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Metrics != nil {
		opts.Metrics.BatchSize.Set(float64(len(jobs)))
	}
	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = run(job, logger, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func run(job Job, logger *log.Logger, opts BatchOptions) (res Result) {
	res = Result{ID: uuid.New(), Name: job.Name}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	l := logger.With("run", res.ID.String()[:8], "network", job.Name)
	n := job.Network
	if n == nil {
		if job.Path == "" {
			res.Err = errors.New("任务缺少网络描述")
			return res
		}
		var err error
		if n, err = load.LoadFile(job.Path); err != nil {
			res.Err = err
			l.Error("加载失败", "err", err)
			return res
		}
	}
	sysOpts := append([]system.Option{system.WithLogger(l)}, opts.Options...)
	if opts.Metrics != nil {
		sysOpts = append(sysOpts, system.WithObserver(opts.Metrics))
	}
	res.Report, res.Err = NewNetwork(n, sysOpts...).Solve()
	if res.Err == nil {
		l.Debug("完成", "iterations", res.Report.Iterations)
	}
	return res
}
