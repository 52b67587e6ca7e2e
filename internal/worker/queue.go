// Package worker 成绩单识别后台任务：队列与 worker 池。
package worker

import (
	"context"
	"errors"
	"time"

	"gradcheck/backend/pkg/redis"
)

var (
	// ErrNoJob 本次轮询没有取到任务（非错误，继续轮询）
	ErrNoJob = errors.New("暂无任务")
	// ErrQueueFull 内存队列已满
	ErrQueueFull = errors.New("任务队列已满")
)

// Queue 任务队列，元素为成绩单 ID
type Queue interface {
	Enqueue(ctx context.Context, transcriptID string) error
	// Dequeue 阻塞等待一个任务；轮询超时返回 ErrNoJob，ctx 取消时返回 ctx.Err()
	Dequeue(ctx context.Context) (string, error)
	// Len 当前积压数量
	Len(ctx context.Context) (int64, error)
}

// ── Redis 队列（LPUSH / BRPOP）──

// RedisQueue 多实例部署时共享的队列
type RedisQueue struct {
	client *redis.Client
	key    string
	poll   time.Duration
}

// NewRedisQueue poll 为 BRPOP 单次等待时长
func NewRedisQueue(client *redis.Client, key string, poll time.Duration) *RedisQueue {
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &RedisQueue{client: client, key: key, poll: poll}
}

func (q *RedisQueue) Enqueue(ctx context.Context, transcriptID string) error {
	return q.client.Enqueue(ctx, q.key, transcriptID)
}

func (q *RedisQueue) Dequeue(ctx context.Context) (string, error) {
	id, err := q.client.Dequeue(ctx, q.key, q.poll)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, redis.ErrQueueEmpty) {
			return "", ErrNoJob
		}
		return "", err
	}
	return id, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.QueueLen(ctx, q.key)
}

// ── 内存队列 ──

// MemoryQueue 单实例（未配置 Redis）时使用的带缓冲 channel 队列
type MemoryQueue struct {
	ch chan string
}

// NewMemoryQueue size 为缓冲容量
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 100
	}
	return &MemoryQueue{ch: make(chan string, size)}
}

// Enqueue 不阻塞；队列满时返回 ErrQueueFull
func (q *MemoryQueue) Enqueue(ctx context.Context, transcriptID string) error {
	select {
	case q.ch <- transcriptID:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (string, error) {
	select {
	case id := <-q.ch:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (q *MemoryQueue) Len(context.Context) (int64, error) { return int64(len(q.ch)), nil }
