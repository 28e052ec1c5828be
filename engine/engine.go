package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/experimental"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/runtime"
)

// Engine hosts guest modules that import the builtins.
// It is safe for concurrent use.
type Engine struct {
	runtime   wazero.Runtime
	isolate   *runtime.Isolate
	host      api.Module
	log       *zap.Logger
	instances map[api.Module]*Instance
	cfg       Config
	mu        sync.RWMutex
	closed    atomic.Bool
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	log         *zap.Logger
	isolateOpts []runtime.Option
}

// WithLogger sets the engine and isolate logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithObserver registers an observer for every runtime dispatch.
func WithObserver(obs runtime.Observer) Option {
	return func(o *options) {
		o.isolateOpts = append(o.isolateOpts, runtime.WithObserver(obs))
	}
}

// WithIsolateOptions passes options through to the isolate.
func WithIsolateOptions(opts ...runtime.Option) Option {
	return func(o *options) {
		o.isolateOpts = append(o.isolateOpts, opts...)
	}
}

// New creates an engine and instantiates the builtins host module.
// A nil cfg uses DefaultConfig.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Engine, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	o := options{log: Logger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if c.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(c.MemoryLimitPages)
	}
	if c.EnableThreads {
		runtimeCfg = runtimeCfg.WithCoreFeatures(api.CoreFeaturesV2 | experimental.CoreFeaturesThreads)
	}
	if c.CloseOnContextDone {
		runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
	}

	isoOpts := append([]runtime.Option{
		runtime.WithLogger(o.log),
		runtime.WithAllowAtomicsWait(c.AllowAtomicsWait),
	}, o.isolateOpts...)

	e := &Engine{
		runtime:   wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		isolate:   runtime.NewIsolate(isoOpts...),
		log:       o.log.Named("engine"),
		instances: make(map[api.Module]*Instance),
		cfg:       c,
	}

	host, err := e.instantiateHostModule(ctx)
	if err != nil {
		return nil, multierr.Append(err, e.runtime.Close(ctx))
	}
	e.host = host

	e.log.Debug("engine created",
		zap.String("module", c.ModuleName),
		zap.Uint32("memory_limit_pages", c.MemoryLimitPages),
		zap.Bool("threads", c.EnableThreads))
	return e, nil
}

// Config returns the validated engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Isolate returns the host runtime state shared by every instance.
func (e *Engine) Isolate() *runtime.Isolate {
	return e.isolate
}

// LoadModule compiles a guest module and checks its imports.
func (e *Engine) LoadModule(ctx context.Context, wasmBytes []byte) (*Module, error) {
	if e.closed.Load() {
		return nil, errors.NotInitialized(errors.PhaseLoad, "engine")
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile failed", err)
	}

	imports, err := e.checkImports(compiled)
	if err != nil {
		return nil, multierr.Append(err, compiled.Close(ctx))
	}

	return &Module{
		engine:   e,
		compiled: compiled,
		imports:  imports,
	}, nil
}

// instance returns the instance the calling guest module belongs to.
func (e *Engine) instance(mod api.Module) *Instance {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.instances[mod]
}

func (e *Engine) register(inst *Instance) {
	e.mu.Lock()
	e.instances[inst.module] = inst
	e.mu.Unlock()
}

func (e *Engine) unregister(inst *Instance) {
	e.mu.Lock()
	delete(e.instances, inst.module)
	e.mu.Unlock()
}

// Close closes every live instance, the wazero runtime and the isolate.
// Pending atomic waits are woken first so their guests can unwind.
func (e *Engine) Close(ctx context.Context) error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	err := e.isolate.Close()

	e.mu.Lock()
	live := make([]*Instance, 0, len(e.instances))
	for _, inst := range e.instances {
		live = append(live, inst)
	}
	e.mu.Unlock()

	for _, inst := range live {
		err = multierr.Append(err, inst.Close(ctx))
	}

	if closeErr := e.runtime.Close(ctx); closeErr != nil {
		err = multierr.Append(err, fmt.Errorf("close runtime: %w", closeErr))
	}
	return err
}
