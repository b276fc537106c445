package cache

import (
	"context"
	"fmt"
	"time"
)

// Cached keys. Aggregate ratings are deliberately absent: averages are
// recomputed on every read so review writes show up immediately.
const (
	UserKeyPrefix = "user:%d"
	BrandsKey     = "cars:brands"
)

const (
	UserTTL   = 5 * time.Minute
	BrandsTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateBrands drops the distinct-brand listing after any car mutation.
func InvalidateBrands(ctx context.Context) {
	Invalidate(ctx, BrandsKey)
}
