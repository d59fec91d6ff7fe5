package lock

import (
	"context"
	"sync"
)

// LocalLocker serialises work on a key within one process
type LocalLocker struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
}

// NewLocalLocker creates an in-process locker
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: make(map[string]chan struct{})}
}

// Lock blocks until key is free or ctx ends
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	for {
		l.mu.Lock()
		held, busy := l.keys[key]
		if !busy {
			done := make(chan struct{})
			l.keys[key] = done
			l.mu.Unlock()
			return l.releaser(key, done), nil
		}
		l.mu.Unlock()

		select {
		case <-held:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *LocalLocker) releaser(key string, done chan struct{}) func(context.Context) error {
	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.keys, key)
			l.mu.Unlock()
			close(done)
		})
		return nil
	}
}
