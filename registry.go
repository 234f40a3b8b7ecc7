package cloak

import (
	"strings"
	"sync"
)

// keyCacheEntry caches one derivation result, including a failed one, so
// repeated constructions with the same config never rerun scrypt.
type keyCacheEntry struct {
	key []byte
	err error
}

var (
	keyCache   = make(map[string]keyCacheEntry)
	keyCacheMu sync.RWMutex
)

// cacheKey renders a config to a cache key. Fields are NUL-separated,
// preserving context label order.
func cacheKey(cfg Config) string {
	var b strings.Builder
	b.WriteString(cfg.Secret)
	b.WriteByte(0)
	b.WriteString(cfg.Salt)
	b.WriteByte(0)
	for _, label := range cfg.Context {
		b.WriteString(label)
		b.WriteByte(0)
	}
	return b.String()
}

// derivedKey returns the cached key for cfg or derives and caches it.
// Derivation is deliberately expensive, and a Config is immutable for the
// lifetime of its key, so caching by value is safe.
func derivedKey(cfg Config) ([]byte, error) {
	ck := cacheKey(cfg)

	// Fast path: read-lock cache check
	keyCacheMu.RLock()
	if cached, ok := keyCache[ck]; ok {
		keyCacheMu.RUnlock()
		return cached.key, cached.err
	}
	keyCacheMu.RUnlock()

	// Slow path: derive and cache with write-lock
	keyCacheMu.Lock()
	defer keyCacheMu.Unlock()

	// Double-check pattern
	if cached, ok := keyCache[ck]; ok {
		return cached.key, cached.err
	}

	key, err := DeriveKey(cfg)
	keyCache[ck] = keyCacheEntry{key: key, err: err}
	return key, err
}

// ResetKeyCache clears the derived-key cache.
// This is primarily useful for test isolation.
func ResetKeyCache() {
	keyCacheMu.Lock()
	defer keyCacheMu.Unlock()
	keyCache = make(map[string]keyCacheEntry)
}
