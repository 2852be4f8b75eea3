package cachepkg

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMirror is a ManifestMirror backed by a shared redis instance, a
// redis-backed cache in front of the authoritative filesystem store,
// keyed per entry. It only ever needs Get/Set/Delete on a single string
// value per key, since manifests are stored as raw JSON text.
type RedisMirror struct {
	client *redis.Client
	prefix string
}

// NewRedisMirror wraps an existing redis client. prefix namespaces keys so
// a shared redis instance can host multiple clib caches.
func NewRedisMirror(client *redis.Client, prefix string) *RedisMirror {
	return &RedisMirror{client: client, prefix: prefix}
}

func (r *RedisMirror) key(author, name, version string) string {
	return r.prefix + "manifest::" + entryKey(author, name, version)
}

// Get returns the cached manifest text for (author, name, version), if
// present and not yet expired by redis's own TTL.
func (r *RedisMirror) Get(author, name, version string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	val, err := r.client.Get(ctx, r.key(author, name, version)).Result()
	if err != nil {
		return "", false
	}

	return val, true
}

// Set stores raw manifest text for (author, name, version) with the given
// TTL, after which redis itself reclaims the key.
func (r *RedisMirror) Set(author, name, version, raw string, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r.client.SetEx(ctx, r.key(author, name, version), raw, ttl)
}

// Delete removes the mirrored entry for (author, name, version).
func (r *RedisMirror) Delete(author, name, version string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r.client.Del(ctx, r.key(author, name, version))
}
