package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-builtins/builtins"
	"github.com/wippyai/wasm-builtins/engine"
	"github.com/wippyai/wasm-builtins/runtime"
	"github.com/wippyai/wasm-builtins/trap"
)

type options struct {
	wasmFile   string
	funcName   string
	args       string
	configFile string
	tables     string
	list       bool
	verbose    bool
}

func main() {
	var (
		o           options
		schema      = flag.Bool("schema", false, "Print the engine config JSON schema and exit")
		listBuiltin = flag.Bool("builtins", false, "List the builtins guests can import and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.StringVar(&o.wasmFile, "wasm", "", "Path to guest wasm module")
	flag.StringVar(&o.funcName, "func", "", "Function to call (optional)")
	flag.StringVar(&o.args, "args", "", "Comma-separated arguments")
	flag.StringVar(&o.configFile, "config", "", "Engine config JSON file")
	flag.StringVar(&o.tables, "tables", "", "Function table sizes (size[:max],...)")
	flag.BoolVar(&o.list, "list", false, "List exported functions and exit")
	flag.BoolVar(&o.verbose, "v", false, "Verbose logging")
	flag.Parse()

	if *schema {
		out, err := engine.ConfigSchema()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	if *listBuiltin {
		printBuiltins()
		return
	}

	if o.wasmFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <file.wasm> [-func name] [-args 1,2] [-config cfg.json] [-tables 4,8]")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -list")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       run -builtins | -schema")
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(o); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		describeError(err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func loadConfig(path string) (*engine.Config, error) {
	if path == "" {
		cfg := engine.DefaultConfig()
		return &cfg, nil
	}
	cfg, err := engine.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func printBuiltins() {
	fmt.Printf("Builtins (import module %q by default):\n", engine.DefaultModuleName)
	for _, d := range builtins.Descriptors() {
		fmt.Printf("  %-28s %s\n", d.Export, d.Signature())
	}
}

func run(o options) error {
	ctx := context.Background()

	data, err := os.ReadFile(o.wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	log, err := newLogger(o.verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(o.configFile)
	if err != nil {
		return err
	}
	tables, err := parseTables(o.tables)
	if err != nil {
		return err
	}

	e, err := engine.New(ctx, cfg, engine.WithLogger(log))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer e.Close(ctx)

	mod, err := e.LoadModule(ctx, data)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}

	fmt.Printf("Module: %s\n", o.wasmFile)
	fmt.Printf("Builtin imports: %d\n", len(mod.Imports()))
	for _, d := range mod.Imports() {
		fmt.Printf("  %s\n", d.Signature())
	}

	exports := mod.ExportNames()
	fmt.Printf("\nExported functions:\n")
	for _, name := range exports {
		def, _ := mod.ExportedFunction(name)
		fmt.Printf("  %s\n", formatSignature(name, def))
	}

	if o.list {
		return nil
	}

	fmt.Printf("\nInstantiating module...\n")
	inst, err := mod.Instantiate(ctx, &engine.InstanceConfig{Tables: tables})
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer inst.Close(ctx)

	funcName := o.funcName
	// If no function specified, try common entry points
	if funcName == "" {
		for _, name := range []string{"_start", "run", "main"} {
			if _, ok := mod.ExportedFunction(name); ok {
				funcName = name
				break
			}
		}
		if funcName == "" && len(exports) == 1 {
			funcName = exports[0]
		}
		if funcName == "" {
			fmt.Printf("\nNo function specified and no common entry point found.\n")
			fmt.Printf("Use -func to specify a function to call.\n")
			return nil
		}
	}

	def, ok := mod.ExportedFunction(funcName)
	if !ok {
		return fmt.Errorf("function %q not exported", funcName)
	}

	var argValues []string
	if o.args != "" {
		argValues = strings.Split(o.args, ",")
	}
	params, err := parseArgs(argValues, def.ParamTypes())
	if err != nil {
		return err
	}

	fmt.Printf("\nCalling %s(%s)...\n", funcName, strings.Join(argValues, ", "))
	results, callErr := inst.Call(ctx, funcName, params...)
	if callErr == nil {
		fmt.Printf("Result: %s\n", formatResults(results, def.ResultTypes()))
	}

	printStats(e.Isolate())
	return callErr
}

func printStats(iso *runtime.Isolate) {
	stats := iso.Stats()
	if len(stats) == 0 {
		return
	}
	ids := make([]runtime.FunctionID, 0, len(stats))
	for id := range stats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fmt.Printf("\nRuntime dispatches:\n")
	for _, id := range ids {
		fmt.Printf("  %-22s %d\n", id, stats[id])
	}
}

func describeError(err error) {
	var te *trap.Error
	if stderrors.As(err, &te) {
		fmt.Fprintf(os.Stderr, "  trap: %s (%s = %d)\n", te.Reason, te.Template, int32(te.Template))
		return
	}
	var exc *runtime.Exception
	if stderrors.As(err, &exc) {
		fmt.Fprintf(os.Stderr, "  exception rethrown=%t\n", exc.Rethrown)
	}
}
