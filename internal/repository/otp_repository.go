package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// otpKeyPrefix namespaces OTP entries in Redis so they never collide
// with rate-limiter keys on the same instance.
const otpKeyPrefix = "login_otp:"

// OTPRepo stores one-time login codes in Redis with a TTL, so expiry
// needs no sweeper and a restart clears nothing durable.
type OTPRepo struct{ RDB *redis.Client }

func NewOTPRepo(rdb *redis.Client) *OTPRepo { return &OTPRepo{RDB: rdb} }

// Store saves the code for an email, replacing any previous one.
func (r *OTPRepo) Store(ctx context.Context, email, code string, ttl time.Duration) error {
	return r.RDB.Set(ctx, otpKeyPrefix+email, code, ttl).Err()
}

// Get returns the stored code, or redis.Nil when none exists (never
// issued, already consumed, or expired).
func (r *OTPRepo) Get(ctx context.Context, email string) (string, error) {
	return r.RDB.Get(ctx, otpKeyPrefix+email).Result()
}

// Delete consumes the code after a successful verification.
func (r *OTPRepo) Delete(ctx context.Context, email string) error {
	return r.RDB.Del(ctx, otpKeyPrefix+email).Err()
}
