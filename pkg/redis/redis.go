package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gradcheck/backend/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、接口限流与成绩单识别任务队列
type Client struct {
	rdb    goredis.UniversalClient
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口限流：有序集合按请求时间戳记分，
// 先清理窗口外的记录再计数。返回本次请求是否放行。
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("限流计数失败: %w", err)
	}

	return card.Val() <= int64(limit), nil
}

// ── 任务队列 ──

// ErrQueueEmpty 在等待超时内没有取到任务
var ErrQueueEmpty = errors.New("队列为空")

// Enqueue 左侧入队
func (c *Client) Enqueue(ctx context.Context, queue, payload string) error {
	return c.rdb.LPush(ctx, queue, payload).Err()
}

// Dequeue 右侧阻塞出队，最多等待 timeout；超时返回 ErrQueueEmpty
func (c *Client) Dequeue(ctx context.Context, queue string, timeout time.Duration) (string, error) {
	res, err := c.rdb.BRPop(ctx, timeout, queue).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrQueueEmpty
		}
		return "", err
	}
	// BRPop 返回 [key, value]
	if len(res) != 2 {
		return "", fmt.Errorf("出队结果格式异常: %v", res)
	}
	return res[1], nil
}

// QueueLen 队列长度
func (c *Client) QueueLen(ctx context.Context, queue string) (int64, error) {
	return c.rdb.LLen(ctx, queue).Result()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
