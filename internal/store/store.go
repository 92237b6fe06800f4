// Package store persists small string values under fixed keys.
package store

// Store is a string-keyed value store. Get reports ok=false for a missing key.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}
