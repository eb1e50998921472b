package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateUserCache drops one user's cached record and the listings it
// appears in.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("id:%s", userID))
	SafeInvalidatePattern(ctx, cm.User, "list:*")
	SafeDelete(ctx, cm.Exists, fmt.Sprintf("user:%s", userID))
}

// InvalidateImageCache drops one image's metadata and its owner's listings.
func InvalidateImageCache(ctx context.Context, cm *CacheManager, imageID, ownerID string) {
	SafeDelete(ctx, cm.Image, fmt.Sprintf("id:%s", imageID))
	SafeInvalidatePattern(ctx, cm.Image, fmt.Sprintf("user:%s:*", ownerID))
	SafeInvalidatePattern(ctx, cm.Image, "list:*")
}

// InvalidateReportCache drops every aggregated report; rating writes change
// averages for the whole contest view.
func InvalidateReportCache(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Report, "*")
}
