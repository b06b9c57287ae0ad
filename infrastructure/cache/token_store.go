// Package cache holds the one-shot reset-token store. Tokens are opaque
// random strings mapped to a user id with a TTL; consuming a token deletes it
// so it can never be replayed.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTokenNotFound is returned when a token is unknown, expired, or already
// consumed.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore is the interface the auth usecase consumes for reset tokens.
type TokenStore interface {
	Put(ctx context.Context, token, userId string, ttl time.Duration) error
	// Consume returns the user id the token maps to and deletes it (one-shot).
	Consume(ctx context.Context, token string) (string, error)
	Close() error
}

type memoryEntry struct {
	userId     string
	expiration int64 // unix nano
}

// MemoryTokenStore keeps tokens in-process. Used when no Redis address is
// configured (single-server deployments).
type MemoryTokenStore struct {
	entries sync.Map
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewMemoryTokenStore creates an in-memory store. If cleanupInterval > 0 a
// background goroutine periodically drops expired tokens.
func NewMemoryTokenStore(cleanupInterval time.Duration) *MemoryTokenStore {
	s := &MemoryTokenStore{
		stop: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		s.wg.Add(1)
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()
			defer s.wg.Done()
			for {
				select {
				case <-ticker.C:
					s.cleanup()
				case <-s.stop:
					return
				}
			}
		}()
	}
	return s
}

func (s *MemoryTokenStore) Put(_ context.Context, token, userId string, ttl time.Duration) error {
	s.entries.Store(token, memoryEntry{
		userId:     userId,
		expiration: time.Now().Add(ttl).UnixNano(),
	})
	return nil
}

func (s *MemoryTokenStore) Consume(_ context.Context, token string) (string, error) {
	v, ok := s.entries.LoadAndDelete(token)
	if !ok {
		return "", ErrTokenNotFound
	}
	entry := v.(memoryEntry)
	if time.Now().UnixNano() > entry.expiration {
		return "", ErrTokenNotFound
	}
	return entry.userId, nil
}

func (s *MemoryTokenStore) Close() error {
	s.once.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
	return nil
}

func (s *MemoryTokenStore) cleanup() {
	now := time.Now().UnixNano()
	s.entries.Range(func(k, v any) bool {
		if now > v.(memoryEntry).expiration {
			s.entries.Delete(k)
		}
		return true
	})
}
