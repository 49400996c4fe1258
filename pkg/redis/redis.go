package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"swim-admin/config"
)

// Client Redis 客户端封装：Token 黑名单、速率限制、派发锁
type Client struct {
	rdb    *goredis.Client
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

const blacklistPrefix = "swim:token:blacklist:"

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

// ── 速率限制 ──

// CheckRateLimit 滑动窗口计数（有序集合），窗口内请求数未超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	fullKey := "swim:" + key

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "0", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	pipe.ZAdd(ctx, fullKey, goredis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
	count := pipe.ZCard(ctx, fullKey)
	pipe.Expire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() <= int64(limit), nil
}

// ── 一次性操作锁 ──

const lockPrefix = "swim:lock:"

// TryLock 尝试获取短期互斥键（SET NX），获取成功返回 true。
// 用于防止自动化任务与页面操作同时发送同一份出勤表。
func (c *Client) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, lockPrefix+key, time.Now().Unix(), ttl).Result()
}

// Unlock 释放互斥键
func (c *Client) Unlock(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, lockPrefix+key).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
