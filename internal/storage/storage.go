// Package storage provides the client-side key-value state store. It replaces
// the browser's local storage with an explicit repository so the persistence
// mechanism is swappable and tests can use an in-memory fake.
package storage

// Well-known keys. The values under user and cart are JSON blobs.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
	KeyCart         = "cart"
)

// Store is a flat string key-value repository. Implementations must be safe
// for concurrent use within a single process; cross-process coordination is
// not provided (single-writer assumption, as with browser local storage).
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}
