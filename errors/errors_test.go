package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseDispatch,
				Kind:    KindTypeMismatch,
				Service: "WasmMemoryGrow",
				Detail:  "argument 1 is not tagged",
			},
			contains: []string{"[dispatch]", "type_mismatch", "in WasmMemoryGrow", "argument 1 is not tagged"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRuntime,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[runtime]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "compile guest",
				Cause:  errors.New("invalid magic number"),
			},
			contains: []string{"[load]", "invalid_data", "compile guest", "caused by", "invalid magic number"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseRuntime,
		Kind:  KindTerminated,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:   PhaseRuntime,
		Kind:    KindStackOverflow,
		Service: "ThrowStackOverflow",
	}

	if !err.Is(&Error{Phase: PhaseRuntime, Kind: KindStackOverflow}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDispatch, Kind: KindStackOverflow}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseRuntime, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, StackOverflow()) {
		t.Error("errors.Is should match StackOverflow()")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDispatch, KindInvalidInput).
		Service("WasmI32AtomicWait").
		Value(42).
		Cause(cause).
		Detail("argument %d is %s", 2, "nil").
		Build()

	if err.Phase != PhaseDispatch {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseDispatch)
	}
	if err.Kind != KindInvalidInput {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidInput)
	}
	if err.Service != "WasmI32AtomicWait" {
		t.Errorf("Service = %v, want WasmI32AtomicWait", err.Service)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "argument 2 is nil" {
		t.Errorf("Detail = %q, want 'argument 2 is nil'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		err      *Error
		name     string
		kind     Kind
		contains string
	}{
		{OutOfBounds(PhaseRuntime, "table", 5, 3), "out of bounds", KindOutOfBounds, "table index 5 out of bounds (length 3)"},
		{TypeMismatch(PhaseRuntime, "WasmMemoryGrow", 1, "Smi", 1.5), "type mismatch", KindTypeMismatch, "want Smi, got float64"},
		{StackOverflow(), "stack overflow", KindStackOverflow, "Maximum call stack size exceeded"},
		{Terminated(nil), "terminated", KindTerminated, "execution terminated"},
		{NotInitialized(PhaseRuntime, "instance"), "not initialized", KindNotInitialized, "instance not initialized"},
		{NotFound(PhaseRuntime, "export", "run"), "not found", KindNotFound, `export "run" not found`},
		{InvalidInput(PhaseConfig, "bad"), "invalid input", KindInvalidInput, "bad"},
		{Unsupported(PhaseRuntime, "WasmI32AtomicWait", "not allowed"), "unsupported", KindUnsupported, "not allowed"},
		{Registration(PhaseHost, "wasm_builtins", "memory_grow", errors.New("dup")), "registration", KindRegistration, "wasm_builtins.memory_grow"},
		{Instantiation(errors.New("boom")), "instantiation", KindInstantiation, "boom"},
		{Load("compile", errors.New("bad")), "load", KindInvalidData, "compile"},
		{Wrap(PhaseRuntime, KindInterrupted, errors.New("x"), "wrapped"), "wrap", KindInterrupted, "wrapped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", tt.err.Error(), tt.contains)
			}
		})
	}
}

func TestMissingImportsError(t *testing.T) {
	t.Run("single import", func(t *testing.T) {
		err := NewMissingImportsError([]string{"wasm_builtins.memory_grow64"})
		if len(err.Imports) != 1 {
			t.Fatalf("expected 1 import, got %d", len(err.Imports))
		}
		if err.Imports[0].Module != "wasm_builtins" {
			t.Errorf("module = %q, want wasm_builtins", err.Imports[0].Module)
		}
		if err.Imports[0].Function != "memory_grow64" {
			t.Errorf("function = %q, want memory_grow64", err.Imports[0].Function)
		}
	})

	t.Run("grouped by module", func(t *testing.T) {
		err := NewMissingImportsError([]string{
			"wasm_builtins.a",
			"other.b",
			"wasm_builtins.c",
		})
		msg := err.Error()
		for _, want := range []string{"missing 3 builtin(s)", "wasm_builtins:", "other:", "- a", "- b", "- c"} {
			if !strings.Contains(msg, want) {
				t.Errorf("error %q should contain %q", msg, want)
			}
		}
		if strings.Index(msg, "other:") > strings.Index(msg, "wasm_builtins:") {
			t.Errorf("modules should be sorted: %q", msg)
		}
	})

	t.Run("empty", func(t *testing.T) {
		err := NewMissingImportsError(nil)
		if !strings.Contains(err.Error(), "no imports specified") {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("errors.Is", func(t *testing.T) {
		var err error = NewMissingImportsError([]string{"m.f"})
		if !errors.Is(err, &MissingImportsError{}) {
			t.Error("errors.Is should match MissingImportsError")
		}
	})
}

func TestIsKind(t *testing.T) {
	inner := Unsupported(PhaseRuntime, "WasmI32AtomicWait", "atomics wait not allowed")
	outer := Wrap(PhaseHost, KindInvalidInput, inner, "call builtin")
	wrapped := fmt.Errorf("guest call: %w", outer)

	if !IsKind(wrapped, KindUnsupported) {
		t.Error("expected unsupported kind in chain")
	}
	if !IsKind(wrapped, KindInvalidInput) {
		t.Error("expected invalid input kind in chain")
	}
	if IsKind(wrapped, KindTerminated) {
		t.Error("unexpected terminated kind")
	}
	if IsKind(nil, KindUnsupported) {
		t.Error("nil error has no kind")
	}
}
