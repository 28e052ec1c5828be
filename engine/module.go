package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-builtins/builtins"
	"github.com/wippyai/wasm-builtins/errors"
	"github.com/wippyai/wasm-builtins/runtime"
)

// Module is a compiled guest module whose imports resolved against the
// builtins host module.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
	imports  []builtins.Descriptor
}

// Imports returns the builtins the module imports, in import order.
func (m *Module) Imports() []builtins.Descriptor {
	return append([]builtins.Descriptor(nil), m.imports...)
}

// ExportNames returns the names of all exported functions
func (m *Module) ExportNames() []string {
	defs := m.compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExportedFunction returns the definition of an exported function.
func (m *Module) ExportedFunction(name string) (api.FunctionDefinition, bool) {
	def, ok := m.compiled.ExportedFunctions()[name]
	return def, ok
}

// Instantiate creates an instance with its own native context, function
// tables and reference handles. A nil cfg creates an anonymous instance
// without tables.
//
// Builtins called from the module's start function fail: the instance is
// registered only once wazero has finished instantiating it.
func (m *Module) Instantiate(ctx context.Context, cfg *InstanceConfig) (*Instance, error) {
	if cfg == nil {
		cfg = &InstanceConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := m.engine
	if e.closed.Load() {
		return nil, errors.NotInitialized(errors.PhaseRuntime, "engine")
	}

	// Empty names keep the module anonymous for parallel instantiation.
	modConfig := wazero.NewModuleConfig().WithName(cfg.Name)

	mod, err := e.runtime.InstantiateModule(ctx, m.compiled, modConfig)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	tables := make([]*runtime.Table, len(cfg.Tables))
	for i, t := range cfg.Tables {
		tables[i] = runtime.NewTable(t.Size, t.Max)
	}

	var rtCfg runtime.InstanceConfig
	rtCfg.Name = cfg.Name
	rtCfg.Tables = tables
	if mem := mod.Memory(); mem != nil {
		rtCfg.Memory = mem
	}

	inst := &Instance{
		engine: e,
		module: mod,
		rt:     e.isolate.NewInstance(rtCfg),
	}
	e.register(inst)

	e.log.Debug("instance created",
		zap.Stringer("instance", inst.rt),
		zap.Int("tables", len(tables)),
		zap.Bool("memory", rtCfg.Memory != nil))
	return inst, nil
}

// Close releases the compiled module. Live instances are unaffected.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}

// checkImports resolves every function import. Imports from the builtins
// module must name a builtin and match its signature; other modules must
// already be instantiated in the runtime.
func (e *Engine) checkImports(compiled wazero.CompiledModule) ([]builtins.Descriptor, error) {
	var (
		missing []string
		used    []builtins.Descriptor
	)

	for _, def := range compiled.ImportedFunctions() {
		moduleName, name, _ := def.Import()
		if moduleName != e.cfg.ModuleName {
			if e.runtime.Module(moduleName) == nil {
				missing = append(missing, moduleName+"."+name)
			}
			continue
		}

		d, ok := builtins.Lookup(name)
		if !ok {
			missing = append(missing, moduleName+"."+name)
			continue
		}

		wantParams, wantResults := valueTypes(d.Params), valueTypes(d.Results)
		if !sameTypes(def.ParamTypes(), wantParams) || !sameTypes(def.ResultTypes(), wantResults) {
			return nil, errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
				Service(d.Name).
				Detail("import %s.%s has type %s, want %s", moduleName, name,
					signature(def.ParamTypes(), def.ResultTypes()),
					signature(wantParams, wantResults)).
				Build()
		}
		used = append(used, d)
	}

	if len(missing) > 0 {
		return nil, errors.NewMissingImportsError(missing)
	}
	return used, nil
}

func sameTypes(got, want []api.ValueType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func signature(params, results []api.ValueType) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, t := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(api.ValueTypeName(t))
	}
	b.WriteString(") -> (")
	for i, t := range results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(api.ValueTypeName(t))
	}
	b.WriteByte(')')
	return b.String()
}
