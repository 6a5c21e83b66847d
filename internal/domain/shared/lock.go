package shared

import "context"

// Locker provides mutual exclusion per key (an order ID, a SKU).
// Acquire blocks until the key is held or ctx is done; the returned release
// function must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// LockKey builds a namespaced lock key.
func LockKey(namespace, id string) string {
	return namespace + ":" + id
}
