package cache

import (
	"fmt"
	"time"
)

const (
	UserPrefix  = "user"
	UserByIDKey = "user:id:%s"
)

// DefaultUserExpiration is the fallback TTL for cached user projections when
// no value is configured. Absolute expiration only; no sliding window.
const DefaultUserExpiration = 30 * time.Minute

func UserCacheKey(id string) string {
	return fmt.Sprintf(UserByIDKey, id)
}
