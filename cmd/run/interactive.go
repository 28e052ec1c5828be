package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-builtins/engine"
	"github.com/wippyai/wasm-builtins/runtime"
	"github.com/wippyai/wasm-builtins/tagged"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	traceStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxTraceEvents bounds the dispatch trace kept per call.
const maxTraceEvents = 16

// traceBuffer records the runtime dispatches of the current call.
type traceBuffer struct {
	events  []runtime.DispatchEvent
	dropped int
	mu      sync.Mutex
}

func (b *traceBuffer) OnDispatch(e runtime.DispatchEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == maxTraceEvents {
		b.events = b.events[1:]
		b.dropped++
	}
	b.events = append(b.events, e)
}

func (b *traceBuffer) reset() {
	b.mu.Lock()
	b.events = nil
	b.dropped = 0
	b.mu.Unlock()
}

func (b *traceBuffer) snapshot() ([]runtime.DispatchEvent, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]runtime.DispatchEvent(nil), b.events...), b.dropped
}

type interactiveModel struct {
	err      error
	engine   *engine.Engine
	instance *engine.Instance
	trace    *traceBuffer
	opts     options
	result   string
	funcs    []funcInfo
	inputs   []textinput.Model
	events   []runtime.DispatchEvent
	dropped  int
	selected int
	focusIdx int
	state    modelState
}

type funcInfo struct {
	def  api.FunctionDefinition
	name string
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(o options) *interactiveModel {
	return &interactiveModel{
		opts:  o,
		trace: &traceBuffer{},
		state: stateSelectFunc,
	}
}

type loadedMsg struct {
	err      error
	engine   *engine.Engine
	instance *engine.Instance
	funcs    []funcInfo
}

type callResultMsg struct {
	err     error
	result  string
	events  []runtime.DispatchEvent
	dropped int
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.opts.wasmFile)
	if err != nil {
		return loadedMsg{err: err}
	}

	cfg, err := loadConfig(m.opts.configFile)
	if err != nil {
		return loadedMsg{err: err}
	}
	tables, err := parseTables(m.opts.tables)
	if err != nil {
		return loadedMsg{err: err}
	}

	e, err := engine.New(ctx, cfg, engine.WithObserver(m.trace))
	if err != nil {
		return loadedMsg{err: err}
	}

	mod, err := e.LoadModule(ctx, data)
	if err != nil {
		e.Close(ctx)
		return loadedMsg{err: err}
	}

	inst, err := mod.Instantiate(ctx, &engine.InstanceConfig{Name: "main", Tables: tables})
	if err != nil {
		e.Close(ctx)
		return loadedMsg{err: err}
	}

	var funcs []funcInfo
	for _, name := range mod.ExportNames() {
		def, _ := mod.ExportedFunction(name)
		funcs = append(funcs, funcInfo{name: name, def: def})
	}

	return loadedMsg{funcs: funcs, engine: e, instance: inst}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.engine != nil {
				m.engine.Close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.funcs = msg.funcs
		m.engine = msg.engine
		m.instance = msg.instance

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.events = msg.events
		m.dropped = msg.dropped
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	types := f.def.ParamTypes()
	names := f.def.ParamNames()
	m.inputs = make([]textinput.Model, len(types))
	for i, t := range types {
		ti := textinput.New()
		ti.Placeholder = api.ValueTypeName(t)
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		if i < len(names) && names[i] != "" {
			ti.Prompt = names[i] + ": "
		}
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	if m.instance == nil {
		return callResultMsg{err: fmt.Errorf("module not loaded")}
	}

	f := m.funcs[m.selected]
	values := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		values[i] = input.Value()
	}
	params, err := parseArgs(values, f.def.ParamTypes())
	if err != nil {
		return callResultMsg{err: err}
	}

	m.trace.reset()
	results, err := m.instance.Call(context.Background(), f.name, params...)
	events, dropped := m.trace.snapshot()
	if err != nil {
		return callResultMsg{err: err, events: events, dropped: dropped}
	}
	return callResultMsg{
		result:  formatResults(results, f.def.ResultTypes()),
		events:  events,
		dropped: dropped,
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.instance == nil {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("WASM Builtins"))
	b.WriteString(" ")
	b.WriteString(m.opts.wasmFile)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("Module exports no functions.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatSignature(f.name, f.def)))
			} else {
				b.WriteString("  " + m.formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.name)))
		types := f.def.ParamTypes()
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(api.ValueTypeName(types[i])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(traceStyle.Render(m.formatTrace()))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f funcInfo) string {
	return funcStyle.Render(f.name) + typeStyle.Render(strings.TrimPrefix(formatSignature(f.name, f.def), f.name))
}

func (m *interactiveModel) formatTrace() string {
	if len(m.events) == 0 {
		return helpStyle.Render("no runtime dispatches")
	}

	var b strings.Builder
	b.WriteString("Runtime dispatches")
	if m.dropped > 0 {
		b.WriteString(fmt.Sprintf(" (%d earlier omitted)", m.dropped))
	}
	b.WriteString(":\n")
	for _, e := range m.events {
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = tagged.Describe(a)
		}
		line := fmt.Sprintf("%s(%s)", funcStyle.Render(e.Function.String()), strings.Join(args, ", "))
		if e.Err != nil {
			line += " " + errorStyle.Render("threw "+e.Err.Error())
		} else {
			line += " -> " + resultStyle.Render(tagged.Describe(e.Result))
		}
		line += " " + helpStyle.Render(e.Duration.Round(time.Microsecond).String())
		b.WriteString("\n  ")
		b.WriteString(line)
	}
	return b.String()
}

func runInteractive(o options) error {
	p := tea.NewProgram(newInteractiveModel(o), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
