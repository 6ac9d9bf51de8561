package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
)

// ErrNoEffect is returned when a pipeline is updated before its effect is available.
var ErrNoEffect = errors.New("pipeline has no effect bytecode")

// MutableState is an editable pipeline description paired with the last compiled pipeline.
// Callers edit State freely and call Update before drawing; a new pipeline is only compiled when the
// description's Key differs from the one used for the current pipeline. Every pipeline compiled through
// a MutableState is cached by key, so toggling between descriptions never recompiles.
type MutableState struct {
	State State

	compiler   Compiler
	current    renderer.PipelineState
	currentKey Key
	hasCurrent bool
	cache      map[Key]renderer.PipelineState
	compiles   int
}

// NewMutableState creates a MutableState compiling through compiler.
//
// Parameters:
//   - compiler: the backend compiler
//   - opts: options applied to the initial description
//
// Returns:
//   - *MutableState: the new mutable state
func NewMutableState(compiler Compiler, opts ...StateBuilderOption) *MutableState {
	return &MutableState{
		State:    NewState(opts...),
		compiler: compiler,
		cache:    make(map[Key]renderer.PipelineState),
	}
}

// Update makes CurrentState match State, compiling at most once per distinct key.
//
// Returns:
//   - error: ErrNoEffect when State has no effect, or the compiler error
func (m *MutableState) Update() error {
	if m.State.Effect == nil {
		return ErrNoEffect
	}
	key := m.State.Key()
	if m.hasCurrent && key == m.currentKey {
		return nil
	}

	if cached, ok := m.cache[key]; ok {
		m.current, m.currentKey, m.hasCurrent = cached, key, true
		return nil
	}

	compiled, err := m.compiler.CompilePipeline(&m.State)
	if err != nil {
		return fmt.Errorf("failed to compile pipeline %q: %w", m.State.Label, err)
	}
	m.compiles++
	m.cache[key] = compiled
	m.current, m.currentKey, m.hasCurrent = compiled, key, true
	return nil
}

// CurrentState returns the pipeline compiled by the last successful Update, or nil.
func (m *MutableState) CurrentState() renderer.PipelineState {
	return m.current
}

// Compiles returns how many pipelines this state has compiled.
func (m *MutableState) Compiles() int {
	return m.compiles
}

// Reset drops the current pipeline and the cache. The description is kept.
func (m *MutableState) Reset() {
	m.current = nil
	m.hasCurrent = false
	m.currentKey = Key{}
	clear(m.cache)
}
