package runtime

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-builtins/tagged"
)

// Isolate is the process-wide host state shared by every instance.
// It is safe for concurrent use.
type Isolate struct {
	roots     *RootTable
	functions [numFunctions]Function
	futex     *futexEmulation
	log       *zap.Logger

	observers []subscription
	obsMu     sync.RWMutex
	nextObsID uint64

	calls [numFunctions]atomic.Uint64

	interrupts  []InterruptFunc
	interruptMu sync.Mutex
	terminating atomic.Bool

	allowAtomicsWait bool
	nextContextID    atomic.Uint32
}

// Option configures an Isolate.
type Option func(*Isolate)

// WithLogger sets the isolate logger. Defaults to the package Logger().
func WithLogger(l *zap.Logger) Option {
	return func(iso *Isolate) {
		if l != nil {
			iso.log = l
		}
	}
}

// WithAllowAtomicsWait controls whether atomic wait may block. Defaults to true.
func WithAllowAtomicsWait(allow bool) Option {
	return func(iso *Isolate) {
		iso.allowAtomicsWait = allow
	}
}

// WithObserver registers an observer for every dispatch.
func WithObserver(o Observer) Option {
	return func(iso *Isolate) {
		iso.nextObsID++
		iso.observers = append(iso.observers, subscription{id: iso.nextObsID, obs: o})
	}
}

// WithFunction replaces the implementation of a runtime service.
func WithFunction(id FunctionID, fn Function) Option {
	return func(iso *Isolate) {
		iso.functions[id] = fn
	}
}

// NewIsolate creates an isolate with the default runtime services installed.
func NewIsolate(opts ...Option) *Isolate {
	iso := &Isolate{
		futex:            newFutexEmulation(),
		log:              Logger(),
		allowAtomicsWait: true,
	}
	iso.functions = defaultFunctions(iso)

	for _, opt := range opts {
		opt(iso)
	}

	iso.roots = newRootTable(iso)
	return iso
}

func defaultFunctions(iso *Isolate) [numFunctions]Function {
	return [numFunctions]Function{
		StackGuard:           iso.stackGuard,
		ThrowStackOverflow:   iso.throwStackOverflow,
		Throw:                throwException,
		ReThrow:              rethrowException,
		WasmAtomicNotify:     iso.atomicNotify,
		WasmI32AtomicWait:    iso.i32AtomicWait,
		WasmI64AtomicWait:    iso.i64AtomicWait,
		WasmMemoryGrow:       iso.memoryGrow,
		WasmFunctionTableGet: iso.functionTableGet,
		WasmFunctionTableSet: iso.functionTableSet,
		ThrowWasmError:       iso.throwWasmError,
	}
}

// Roots returns the isolate root table.
func (iso *Isolate) Roots() *RootTable {
	return iso.roots
}

// NewNativeContext creates a fresh native context.
func (iso *Isolate) NewNativeContext(name string) *NativeContext {
	return &NativeContext{
		isolate: iso,
		id:      iso.nextContextID.Add(1),
		name:    name,
	}
}

// Subscribe adds an observer for dispatch events and returns a function that
// removes it. Calling the returned function more than once is a no-op.
func (iso *Isolate) Subscribe(o Observer) (unsubscribe func()) {
	iso.obsMu.Lock()
	defer iso.obsMu.Unlock()
	iso.nextObsID++
	id := iso.nextObsID
	iso.observers = append(iso.observers, subscription{id: id, obs: o})

	var once sync.Once
	return func() {
		once.Do(func() { iso.unsubscribe(id) })
	}
}

func (iso *Isolate) unsubscribe(id uint64) {
	iso.obsMu.Lock()
	defer iso.obsMu.Unlock()
	for i, sub := range iso.observers {
		if sub.id == id {
			// Copy so snapshots taken by record stay intact.
			next := make([]subscription, 0, len(iso.observers)-1)
			next = append(next, iso.observers[:i]...)
			iso.observers = append(next, iso.observers[i+1:]...)
			return
		}
	}
}

// Calls returns how many times the runtime service id was dispatched.
func (iso *Isolate) Calls(id FunctionID) uint64 {
	return iso.calls[id].Load()
}

// Stats returns dispatch counts of every service that was called at least once.
func (iso *Isolate) Stats() map[FunctionID]uint64 {
	out := make(map[FunctionID]uint64)
	for i := range iso.calls {
		if n := iso.calls[i].Load(); n > 0 {
			out[FunctionID(i)] = n
		}
	}
	return out
}

// TotalCalls returns the number of dispatches across all services.
func (iso *Isolate) TotalCalls() uint64 {
	var total uint64
	for i := range iso.calls {
		total += iso.calls[i].Load()
	}
	return total
}

// Close wakes every pending atomic waiter and drops observers. Waits started
// after Close fail with a KindTerminated error.
func (iso *Isolate) Close() error {
	iso.TerminateExecution()
	iso.futex.wakeAll()

	iso.obsMu.Lock()
	iso.observers = nil
	iso.obsMu.Unlock()
	return nil
}

func (iso *Isolate) record(e DispatchEvent) {
	iso.calls[e.Function].Add(1)

	// Observers run outside the lock so they may subscribe or unsubscribe.
	iso.obsMu.RLock()
	observers := iso.observers
	iso.obsMu.RUnlock()
	for _, sub := range observers {
		sub.obs.OnDispatch(e)
	}
}

type subscription struct {
	obs Observer
	id  uint64
}

// DispatchEvent describes one completed runtime call.
type DispatchEvent struct {
	Result   tagged.Value
	Err      error
	Context  *NativeContext
	Args     []tagged.Value
	Duration time.Duration
	Function FunctionID
}

// Observer receives dispatch events. Implementations must not block.
type Observer interface {
	OnDispatch(DispatchEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(DispatchEvent)

func (f ObserverFunc) OnDispatch(e DispatchEvent) { f(e) }
