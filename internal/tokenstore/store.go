// Package tokenstore keeps short-lived credentials (OTP codes, reset tokens) with expiry.
package tokenstore

import (
	"context"
	"time"
)

// Store is a keyed credential store. Expired entries are never returned.
type Store interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	// Take returns the value and removes it, so a credential can be used once.
	Take(ctx context.Context, key string) (string, bool, error)
}

// OTPKey is the key holding the pending one-time password for an email.
func OTPKey(email string) string {
	return "otp:" + email
}

// ResetKey is the key holding the user id a reset token was issued for.
func ResetKey(token string) string {
	return "reset:" + token
}
