package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyLogin      = "billing:login:%s"
	keyCreate     = "billing:create:%s"
	keyResendLock = "billing:resend:lock:%s"
)

type Policy struct {
	Rate  float64
	Burst int
}

func (p Policy) validate() error {
	if p.Rate <= 0 {
		return errors.New("rate limiter rate must be positive")
	}
	if p.Burst <= 0 {
		return errors.New("rate limiter burst must be positive")
	}
	return nil
}

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

func newResult(allowed bool, tokens float64, policy Policy) Result {
	var retryAfter time.Duration
	if !allowed {
		if needed := 1.0 - tokens; needed > 0 {
			retryAfter = time.Duration(needed / policy.Rate * float64(time.Second))
		}
	}
	return Result{
		Allowed:    allowed,
		Limit:      policy.Burst,
		Remaining:  int(math.Max(0, math.Floor(tokens))),
		RetryAfter: retryAfter,
	}
}

// Bucket is a keyed token bucket.
type Bucket interface {
	Allow(ctx context.Context, key string, policy Policy) (Result, error)
}

// BillingLimiter throttles login and public invoice intake per client, and
// serializes resends of the same invoice.
type BillingLimiter struct {
	bucket Bucket
	locker Locker
	log    *zap.Logger

	login   Policy
	create  Policy
	lockTTL time.Duration
}

func NewBillingLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *BillingLimiter {
	limitCfg := cfg.RateLimit
	log = log.Named("ratelimit")

	var (
		bucket Bucket
		locker Locker
	)
	if addr := strings.TrimSpace(limitCfg.RedisAddr); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: limitCfg.RedisPassword,
			DB:       limitCfg.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		bucket = NewTokenBucket(client)
		locker = NewRedisLocker(client)
		log.Info("rate limiting backed by redis", zap.String("addr", addr))
	} else {
		bucket = NewMemoryBucket(10 * time.Minute)
		locker = NewMemoryLocker()
	}

	return New(bucket, locker, limitCfg, log)
}

func New(bucket Bucket, locker Locker, limitCfg config.RateLimitConfig, log *zap.Logger) *BillingLimiter {
	lockTTL := limitCfg.ResendLockTTL
	if lockTTL <= 0 {
		lockTTL = time.Minute
	}
	return &BillingLimiter{
		bucket:  bucket,
		locker:  locker,
		log:     log,
		login:   Policy{Rate: limitCfg.LoginRate, Burst: limitCfg.LoginBurst},
		create:  Policy{Rate: limitCfg.CreateRate, Burst: limitCfg.CreateBurst},
		lockTTL: lockTTL,
	}
}

func (l *BillingLimiter) AllowLogin(ctx context.Context, clientKey string) Result {
	return l.allow(ctx, fmt.Sprintf(keyLogin, clientKey), l.login)
}

func (l *BillingLimiter) AllowCreate(ctx context.Context, clientKey string) Result {
	return l.allow(ctx, fmt.Sprintf(keyCreate, clientKey), l.create)
}

// allow fails open when the backend is unreachable.
func (l *BillingLimiter) allow(ctx context.Context, key string, policy Policy) Result {
	res, err := l.bucket.Allow(ctx, key, policy)
	if err != nil {
		l.log.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
		return Result{Allowed: true, Limit: policy.Burst}
	}
	return res
}

func (l *BillingLimiter) TryLockResend(ctx context.Context, invoiceID string) (string, bool, error) {
	return l.locker.TryLock(ctx, fmt.Sprintf(keyResendLock, invoiceID), l.lockTTL)
}

func (l *BillingLimiter) ReleaseResend(ctx context.Context, invoiceID, token string) error {
	return l.locker.Release(ctx, fmt.Sprintf(keyResendLock, invoiceID), token)
}
