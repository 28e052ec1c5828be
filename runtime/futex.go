package runtime

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	wasmbuiltins "github.com/wippyai/wasm-builtins"
)

// Wait results returned to guest code.
const (
	WaitOK       int32 = 0
	WaitNotEqual int32 = 1
	WaitTimedOut int32 = 2
)

// errFutexClosed is returned by waits that start after the isolate closed.
var errFutexClosed = stderrors.New("futex closed")

type futexKey struct {
	memory wasmbuiltins.Memory
	addr   uint32
}

type waiter struct {
	wake chan struct{}
	// woken is guarded by futexEmulation.mu.
	woken bool
}

// futexEmulation implements wait/notify on guest memory locations.
// The value check and enqueue happen under the same lock notify takes, so a
// notify issued after the guest stored a new value is never lost.
type futexEmulation struct {
	waiters map[futexKey][]*waiter
	mu      sync.Mutex
	closed  bool
}

func newFutexEmulation() *futexEmulation {
	return &futexEmulation{waiters: make(map[futexKey][]*waiter)}
}

// wait blocks until notified, timeout elapses (negative means forever) or ctx
// is done. check runs under the lock and returns false if the expected value
// does not match.
func (f *futexEmulation) wait(ctx context.Context, key futexKey, timeout time.Duration, check func() bool) (int32, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return 0, errFutexClosed
	}
	if !check() {
		f.mu.Unlock()
		return WaitNotEqual, nil
	}
	w := &waiter{wake: make(chan struct{})}
	f.waiters[key] = append(f.waiters[key], w)
	f.mu.Unlock()

	var timer <-chan time.Time
	if timeout >= 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case <-w.wake:
		return WaitOK, nil
	case <-timer:
		if f.remove(key, w) {
			return WaitTimedOut, nil
		}
		return WaitOK, nil
	case <-ctx.Done():
		if f.remove(key, w) {
			return 0, ctx.Err()
		}
		return WaitOK, nil
	}
}

// remove dequeues w and reports whether it was still waiting.
func (f *futexEmulation) remove(key futexKey, w *waiter) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.woken {
		return false
	}
	list := f.waiters[key]
	for i, other := range list {
		if other == w {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(f.waiters, key)
	} else {
		f.waiters[key] = list
	}
	return true
}

// notify wakes up to count waiters in FIFO order and returns how many woke.
func (f *futexEmulation) notify(key futexKey, count uint32) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.waiters[key]
	var woken uint32
	for len(list) > 0 && woken < count {
		w := list[0]
		list = list[1:]
		w.woken = true
		close(w.wake)
		woken++
	}
	if len(list) == 0 {
		delete(f.waiters, key)
	} else {
		f.waiters[key] = list
	}
	return woken
}

// numWaiters is used by tests to synchronize with blocked waiters.
func (f *futexEmulation) numWaiters(key futexKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters[key])
}

// wakeAll releases every queued waiter with WaitOK and rejects later waits.
func (f *futexEmulation) wakeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for key, list := range f.waiters {
		for _, w := range list {
			w.woken = true
			close(w.wake)
		}
		delete(f.waiters, key)
	}
}
