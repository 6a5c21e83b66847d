package lock

import (
	"context"
	"sync"
	"time"

	"github.com/tbeauty/backend/internal/domain/shared"
)

// LocalLocker serializes callers per key within one process
type LocalLocker struct {
	wait  time.Duration
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

// NewLocalLocker creates a LocalLocker. A positive wait bounds how long
// Acquire blocks.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		wait:  wait,
		locks: make(map[string]*keyLock),
	}
}

// Acquire blocks until key is free, the wait elapses or ctx is done
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	kl := l.ref(key)

	waitCtx, cancel := waitContext(ctx, l.wait)
	defer cancel()

	select {
	case kl.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.sem
				l.unref(key, kl)
			})
		}, nil
	case <-waitCtx.Done():
		l.unref(key, kl)
		return nil, acquireError(ctx, key)
	}
}

func (l *LocalLocker) ref(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *LocalLocker) unref(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// held returns the number of keys with a holder or waiter
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

var _ shared.Locker = (*LocalLocker)(nil)
