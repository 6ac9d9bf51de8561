package effect

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
	"github.com/gogpu/naga"
)

var (
	// ErrUnknownEffect is returned for names that were never registered.
	ErrUnknownEffect = errors.New("unknown effect")
	// ErrDuplicateEffect is returned when registering a name twice.
	ErrDuplicateEffect = errors.New("effect already registered")
)

// Status is the compilation state of a registered effect.
type Status int

const (
	// StatusUnloaded means the effect is registered but no compilation was requested.
	StatusUnloaded Status = iota
	// StatusPending means a compilation is queued or running.
	StatusPending
	// StatusReady means the latest source compiled successfully.
	StatusReady
	// StatusFailed means the latest source failed to compile.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unloaded"
	}
}

// Program is the source form of an effect together with the interface it exposes to the renderer.
// Entry points, vertex inputs, the uniform block and texture slots are read from the WGSL source
// when the program is built; a non-empty field here overrides what the source declares.
type Program struct {
	Name          string
	Source        string
	VertexEntry   string
	FragmentEntry string

	VertexInputs []renderer.VertexInput
	Uniforms     []renderer.UniformField
	Textures     []renderer.TextureBinding
}

// CompileFunc turns pre-processed WGSL into SPIR-V.
type CompileFunc func(source string) ([]byte, error)

// Scheduler runs a compilation job, now or later, on any goroutine.
type Scheduler func(job func())

var nextEffectID atomic.Uint64

type libraryEntry struct {
	program  Program
	version  int
	status   Status
	bytecode *renderer.EffectBytecode
	err      error
}

// library is the implementation of the Library interface.
type library struct {
	mu      sync.Mutex
	entries map[string]*libraryEntry

	pp        PreProcessor
	compile   CompileFunc
	scheduler Scheduler
	workers   int

	pool       worker.DynamicWorkerPool
	nextTaskID atomic.Int64
}

// Library owns the named effects of the renderer and compiles them in the background.
// Consumers ask for an effect by name every frame; until the first compilation of that name
// finishes the effect is reported as unavailable, and after a reload the previous bytecode keeps
// being served until its replacement is ready.
type Library interface {
	// RegisterChunk makes a shared WGSL chunk available to //@oxy:include.
	//
	// Parameters:
	//   - name: the include name
	//   - source: the WGSL text
	RegisterChunk(name, source string)

	// Register adds a program. It is not compiled until Load is called.
	//
	// Parameters:
	//   - p: the program to register
	//
	// Returns:
	//   - error: ErrDuplicateEffect if the name is taken
	Register(p Program) error

	// Load requests compilation of a registered effect. Calls for effects that are already pending,
	// ready or failed are no-ops.
	//
	// Parameters:
	//   - name: the effect name
	//
	// Returns:
	//   - error: ErrUnknownEffect for unregistered names
	Load(name string) error

	// Reload replaces the source of a registered effect and schedules its compilation.
	//
	// Parameters:
	//   - name: the effect name
	//   - source: the new WGSL source
	//
	// Returns:
	//   - error: ErrUnknownEffect for unregistered names
	Reload(name, source string) error

	// Effect returns the most recent successfully compiled bytecode of name.
	//
	// Parameters:
	//   - name: the effect name
	//
	// Returns:
	//   - *renderer.EffectBytecode: the bytecode, or nil
	//   - bool: true if bytecode is available
	Effect(name string) (*renderer.EffectBytecode, bool)

	// Status returns the compilation state of name and the last compilation error, if any.
	Status(name string) (Status, error)

	// Names returns the registered effect names.
	Names() []string
}

var _ Library = &library{}

// NewLibrary creates a Library. By default sources are compiled with naga on a dynamic worker pool.
//
// Parameters:
//   - opts: a variadic list of LibraryBuilderOption functions to configure the library
//
// Returns:
//   - Library: the new library
func NewLibrary(opts ...LibraryBuilderOption) Library {
	l := &library{
		entries: make(map[string]*libraryEntry),
		pp:      NewPreProcessor(),
		compile: naga.Compile,
		workers: max(runtime.NumCPU()/2, 1),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.scheduler == nil {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 64, 1*time.Second)
		l.scheduler = func(job func()) {
			l.pool.SubmitTask(worker.Task{
				ID: int(l.nextTaskID.Add(1)),
				Do: func() (any, error) {
					job()
					return nil, nil
				},
			})
		}
	}
	return l
}

func (l *library) RegisterChunk(name, source string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pp.RegisterChunk(name, source)
}

func (l *library) Register(p Program) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[p.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEffect, p.Name)
	}
	l.entries[p.Name] = &libraryEntry{program: p}
	return nil
}

func (l *library) Load(name string) error {
	l.mu.Lock()
	e, ok := l.entries[name]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	if e.status != StatusUnloaded {
		l.mu.Unlock()
		return nil
	}
	job := l.prepareLocked(e)
	l.mu.Unlock()

	l.scheduler(job)
	return nil
}

func (l *library) Reload(name, source string) error {
	l.mu.Lock()
	e, ok := l.entries[name]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	e.program.Source = source
	job := l.prepareLocked(e)
	l.mu.Unlock()

	logging.Named("effect").Info("reloading effect", "name", name)
	l.scheduler(job)
	return nil
}

// prepareLocked bumps the entry version and returns the job compiling that version.
// Results of superseded versions are discarded.
func (l *library) prepareLocked(e *libraryEntry) func() {
	e.version++
	e.status = StatusPending
	version := e.version
	program := e.program
	pp := l.pp

	return func() {
		bytecode, err := l.build(pp, program)

		l.mu.Lock()
		defer l.mu.Unlock()
		if e.version != version {
			return
		}
		if err != nil {
			e.status, e.err = StatusFailed, err
			logging.Named("effect").Error("effect compilation failed", "name", program.Name, "err", err)
			return
		}
		e.status, e.err, e.bytecode = StatusReady, nil, bytecode
		logging.Named("effect").Debug("effect compiled", "name", program.Name, "id", bytecode.ID, "bytes", len(bytecode.SPIRV))
	}
}

func (l *library) build(pp PreProcessor, p Program) (*renderer.EffectBytecode, error) {
	l.mu.Lock()
	source, err := pp.Process(p.Source)
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to pre-process effect %q: %w", p.Name, err)
	}

	reflected, err := reflectSource(source)
	if err != nil {
		return nil, fmt.Errorf("failed to reflect effect %q: %w", p.Name, err)
	}
	p = reflected.apply(p)

	spirv, err := l.compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile effect %q: %w", p.Name, err)
	}

	return &renderer.EffectBytecode{
		ID:            nextEffectID.Add(1),
		Name:          p.Name,
		Hash:          sha256.Sum256(spirv),
		Source:        source,
		SPIRV:         spirv,
		VertexEntry:   p.VertexEntry,
		FragmentEntry: p.FragmentEntry,
		VertexInputs:  p.VertexInputs,
		Uniforms:      p.Uniforms,
		Textures:      p.Textures,
	}, nil
}

func (l *library) Effect(name string) (*renderer.EffectBytecode, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if !ok || e.bytecode == nil {
		return nil, false
	}
	return e.bytecode, true
}

func (l *library) Status(name string) (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if !ok {
		return StatusUnloaded, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	return e.status, e.err
}

func (l *library) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.entries))
	for name := range l.entries {
		names = append(names, name)
	}
	return names
}
