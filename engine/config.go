package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/wippyai/wasm-builtins/errors"
)

// DefaultModuleName is the import module guests use for builtins.
const DefaultModuleName = "wasm_builtins"

var validate = validator.New()

// Config holds configuration for engine creation
type Config struct {
	// ModuleName is the host module guests import builtins from.
	ModuleName string `json:"module_name" validate:"required,max=128,printascii" jsonschema:"description=Import module name of the builtins host module,default=wasm_builtins"`

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32 `json:"memory_limit_pages,omitempty" validate:"lte=65536" jsonschema:"description=Maximum linear memory per instance in 64KiB pages (0 means 4GiB),maximum=65536"`

	// EnableThreads enables the WebAssembly threads proposal (experimental).
	// Required for guests declaring shared memories.
	EnableThreads bool `json:"enable_threads,omitempty" jsonschema:"description=Enable the threads proposal (shared memory and atomics)"`

	// AllowAtomicsWait lets i32_atomic_wait and i64_atomic_wait block.
	// When false the wait builtins fail instead.
	AllowAtomicsWait bool `json:"allow_atomics_wait" jsonschema:"description=Allow atomic wait builtins to block,default=true"`

	// CloseOnContextDone closes guest modules when the call context is done,
	// interrupting guests that never reach a stack check.
	CloseOnContextDone bool `json:"close_on_context_done,omitempty" jsonschema:"description=Interrupt guest execution when the call context is cancelled"`
}

// DefaultConfig returns the configuration used when New receives nil.
func DefaultConfig() Config {
	return Config{
		ModuleName:       DefaultModuleName,
		AllowAtomicsWait: true,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "config validation failed")
	}
	return nil
}

// LoadConfig decodes a JSON configuration. Omitted fields keep their defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a JSON configuration file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// ConfigSchema returns the JSON schema of Config.
func ConfigSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Config{})

	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return out, nil
}

// TableConfig describes one host function table of an instance.
type TableConfig struct {
	Size uint32 `json:"size"`
	// Max bounds Grow. 0 means unbounded.
	Max uint32 `json:"max,omitempty" validate:"omitempty,gtefield=Size"`
}

// InstanceConfig holds configuration for module instantiation
type InstanceConfig struct {
	// Name is the wazero module name. Empty names allow parallel instantiation.
	Name   string        `json:"name,omitempty" validate:"max=256"`
	Tables []TableConfig `json:"tables,omitempty" validate:"max=1024,dive"`
}

// Validate checks the instance configuration.
func (c *InstanceConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "instance config validation failed")
	}
	return nil
}
