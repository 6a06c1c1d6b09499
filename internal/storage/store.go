// Package storage keeps the shopper's state on the local device. Every write is
// synchronous, so the last saved value survives a restart even when remote sync never ran.
package storage

import (
	"encoding/json"
	"fmt"
	"log"
)

// Keys of the values kept on the device.
const (
	CartKey     = "blox_cart"
	WishlistKey = "blox_wishlist"
	LanguageKey = "blox_language"
)

// Store is a durable key-value store holding JSON-encoded values.
type Store interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Load decodes the value under key. Missing, unreadable or corrupt content yields def.
func Load[T any](s Store, key string, def T) T {
	raw, ok, err := s.Get(key)
	if err != nil {
		log.Printf("local storage: failed to read %s: %v", key, err)
		return def
	}
	if !ok || len(raw) == 0 {
		return def
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("local storage: discarding corrupt value under %s: %v", key, err)
		return def
	}
	return v
}

// Save encodes v as JSON and writes it under key.
func Save[T any](s Store, key string, v T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(key, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
