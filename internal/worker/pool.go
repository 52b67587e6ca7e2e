package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gradcheck/backend/config"
)

// Handler 处理单个成绩单识别任务
type Handler func(ctx context.Context, transcriptID string) error

// Pool 固定数量的 worker 从队列取任务执行
type Pool struct {
	queue       Queue
	handler     Handler
	concurrency int
	jobTimeout  time.Duration
	retryDelay  time.Duration
	logger      *zap.Logger
}

// NewPool 创建 worker 池
func NewPool(queue Queue, handler Handler, cfg config.WorkerConfig, logger *zap.Logger) *Pool {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pool{
		queue:       queue,
		handler:     handler,
		concurrency: concurrency,
		jobTimeout:  cfg.JobTimeout,
		retryDelay:  time.Second,
		logger:      logger.Named("worker"),
	}
}

// Run 启动全部 worker 并阻塞到 ctx 取消；正在执行的任务会收到取消信号
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("worker 池启动", zap.Int("concurrency", p.concurrency))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.concurrency; i++ {
		id := i
		g.Go(func() error {
			p.loop(ctx, id)
			return nil
		})
	}
	err := g.Wait()

	p.logger.Info("worker 池已停止")
	return err
}

func (p *Pool) loop(ctx context.Context, workerID int) {
	log := p.logger.With(zap.Int("worker_id", workerID))
	for {
		transcriptID, err := p.queue.Dequeue(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, ErrNoJob) {
				continue
			}
			log.Warn("取任务失败", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.retryDelay):
			}
			continue
		}

		start := time.Now()
		if err := p.runJob(ctx, transcriptID); err != nil {
			log.Error("识别任务失败",
				zap.String("transcript_id", transcriptID),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
			continue
		}
		fields := []zap.Field{
			zap.String("transcript_id", transcriptID),
			zap.Duration("elapsed", time.Since(start)),
		}
		if backlog, err := p.queue.Len(ctx); err == nil {
			fields = append(fields, zap.Int64("backlog", backlog))
		}
		log.Info("识别任务完成", fields...)
	}
}

// runJob 执行单个任务；handler panic 转为错误，不影响其他 worker
func (p *Pool) runJob(ctx context.Context, transcriptID string) (err error) {
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("任务 panic: %v", r)
		}
	}()
	return p.handler(ctx, transcriptID)
}
