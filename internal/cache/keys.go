package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	ProfileKeyPrefix = "profile:%s"
	LeaderboardKey   = "leaderboard:alumni"
	TopLikedKey      = "alumni:top_liked:%d"
)

const (
	UserTTL        = 5 * time.Minute
	ProfileTTL     = 5 * time.Minute
	LeaderboardTTL = time.Minute
	TopLikedTTL    = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// ProfileKey caches public profiles by username.
func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func TopLikedKeyFor(limit int) string {
	return fmt.Sprintf(TopLikedKey, limit)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateUser drops every cached view of a user whose counters or profile changed.
func InvalidateUser(ctx context.Context, userID uint, username string) {
	keys := []string{UserKey(userID), LeaderboardKey}
	if username != "" {
		keys = append(keys, ProfileKey(username))
	}
	Invalidate(ctx, keys...)
}

// InvalidateRankings drops the cached leaderboard and top-liked lists.
func InvalidateRankings(ctx context.Context) {
	if client == nil {
		return
	}
	Invalidate(ctx, LeaderboardKey)
	iter := client.Scan(ctx, 0, "alumni:top_liked:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
