package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-builtins/engine"
)

// parseArg converts a command line value to a raw wasm value of type t.
// i32 accepts both signed and unsigned 32-bit values.
func parseArg(value string, t api.ValueType) (uint64, error) {
	value = strings.TrimSpace(value)
	switch t {
	case api.ValueTypeI32:
		if v, err := strconv.ParseInt(value, 0, 32); err == nil {
			return api.EncodeI32(int32(v)), nil
		}
		v, err := strconv.ParseUint(value, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid i32 %q", value)
		}
		return api.EncodeU32(uint32(v)), nil
	case api.ValueTypeI64:
		if v, err := strconv.ParseInt(value, 0, 64); err == nil {
			return api.EncodeI64(v), nil
		}
		v, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid i64 %q", value)
		}
		return v, nil
	case api.ValueTypeF32:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid f32 %q", value)
		}
		return api.EncodeF32(float32(v)), nil
	case api.ValueTypeF64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid f64 %q", value)
		}
		return api.EncodeF64(v), nil
	default:
		return 0, fmt.Errorf("unsupported parameter type %s", api.ValueTypeName(t))
	}
}

func parseArgs(values []string, types []api.ValueType) ([]uint64, error) {
	if len(values) != len(types) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(types), len(values))
	}
	out := make([]uint64, len(values))
	for i, v := range values {
		raw, err := parseArg(v, types[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = raw
	}
	return out, nil
}

func formatResult(raw uint64, t api.ValueType) string {
	switch t {
	case api.ValueTypeI32:
		return strconv.FormatInt(int64(api.DecodeI32(raw)), 10)
	case api.ValueTypeI64:
		return strconv.FormatInt(int64(raw), 10)
	case api.ValueTypeF32:
		return strconv.FormatFloat(float64(api.DecodeF32(raw)), 'g', -1, 32)
	case api.ValueTypeF64:
		v := api.DecodeF64(raw)
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Sprint(v)
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("0x%x", raw)
	}
}

func formatResults(results []uint64, types []api.ValueType) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = formatResult(r, types[i])
	}
	return strings.Join(parts, ", ")
}

// formatSignature renders an exported function, e.g. "grow(pages: i32) -> i32".
func formatSignature(name string, def api.FunctionDefinition) string {
	names := def.ParamNames()
	params := make([]string, len(def.ParamTypes()))
	for i, t := range def.ParamTypes() {
		pname := fmt.Sprintf("arg%d", i)
		if i < len(names) && names[i] != "" {
			pname = names[i]
		}
		params[i] = pname + ": " + api.ValueTypeName(t)
	}
	result := ""
	if rt := def.ResultTypes(); len(rt) > 0 {
		types := make([]string, len(rt))
		for i, t := range rt {
			types[i] = api.ValueTypeName(t)
		}
		result = " -> " + strings.Join(types, ", ")
	}
	return name + "(" + strings.Join(params, ", ") + ")" + result
}

// parseTables parses comma separated table sizes, each optionally "size:max".
func parseTables(s string) ([]engine.TableConfig, error) {
	if s == "" {
		return nil, nil
	}
	var out []engine.TableConfig
	for _, part := range strings.Split(s, ",") {
		sizeStr, maxStr, hasMax := strings.Cut(strings.TrimSpace(part), ":")
		size, err := strconv.ParseUint(sizeStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid table size %q", sizeStr)
		}
		t := engine.TableConfig{Size: uint32(size)}
		if hasMax {
			limit, err := strconv.ParseUint(maxStr, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid table max %q", maxStr)
			}
			t.Max = uint32(limit)
		}
		out = append(out, t)
	}
	return out, nil
}
