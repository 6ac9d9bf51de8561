package effect

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
)

func echoCompile(source string) ([]byte, error) {
	if strings.Contains(source, "syntax error") {
		return nil, errors.New("parse failure")
	}
	return []byte(source), nil
}

// queuedScheduler holds jobs until run is called.
type queuedScheduler struct {
	jobs []func()
}

func (q *queuedScheduler) schedule(job func()) { q.jobs = append(q.jobs, job) }

func (q *queuedScheduler) run() {
	jobs := q.jobs
	q.jobs = nil
	for _, job := range jobs {
		job()
	}
}

func testProgram(name, source string) Program {
	return Program{
		Name:          name,
		Source:        source,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		Uniforms:      []renderer.UniformField{{Key: "WorldViewProjection", Type: renderer.UniformTypeMat4}},
	}
}

func TestLibraryCompilesOnLoad(t *testing.T) {
	q := &queuedScheduler{}
	lib := NewLibrary(WithCompileFunc(echoCompile), WithScheduler(q.schedule))
	lib.RegisterChunk("common", "fn common() {}")

	if err := lib.Register(testProgram("minmax", "//@oxy:include common\nfn vs_main() {}")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if status, _ := lib.Status("minmax"); status != StatusUnloaded {
		t.Fatalf("Status() = %v before Load, want unloaded", status)
	}

	if err := lib.Load("minmax"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := lib.Effect("minmax"); ok {
		t.Fatal("Effect() available before the compile job ran")
	}
	if status, _ := lib.Status("minmax"); status != StatusPending {
		t.Fatalf("Status() = %v, want pending", status)
	}

	if err := lib.Load("minmax"); err != nil || len(q.jobs) != 1 {
		t.Fatalf("second Load() queued %d jobs, err = %v", len(q.jobs), err)
	}

	q.run()
	bc, ok := lib.Effect("minmax")
	if !ok {
		t.Fatal("Effect() unavailable after compilation")
	}
	if !strings.Contains(bc.Source, "fn common() {}") {
		t.Errorf("bytecode source was not pre-processed: %q", bc.Source)
	}
	if bc.VertexEntry != "vs_main" || len(bc.Uniforms) != 1 || bc.ID == 0 {
		t.Errorf("bytecode metadata not carried over: %+v", bc)
	}
	if bc.Hash == ([32]byte{}) {
		t.Error("bytecode hash not computed")
	}
}

func TestLibraryReloadKeepsPreviousUntilReady(t *testing.T) {
	q := &queuedScheduler{}
	lib := NewLibrary(WithCompileFunc(echoCompile), WithScheduler(q.schedule))
	_ = lib.Register(testProgram("fog", "fn v1() {}"))
	_ = lib.Load("fog")
	q.run()
	first, _ := lib.Effect("fog")

	if err := lib.Reload("fog", "fn v2() {}"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got, _ := lib.Effect("fog"); got != first {
		t.Fatal("Effect() changed before the reload compiled")
	}

	q.run()
	second, _ := lib.Effect("fog")
	if second.Identity() == first.Identity() {
		t.Fatal("reload did not produce a new identity")
	}

	if err := lib.Reload("fog", "syntax error"); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	q.run()
	status, err := lib.Status("fog")
	if status != StatusFailed || err == nil {
		t.Fatalf("Status() = %v, %v, want failed with error", status, err)
	}
	if got, _ := lib.Effect("fog"); got != second {
		t.Error("failed reload replaced the last good bytecode")
	}
}

func TestLibraryDiscardsSupersededCompiles(t *testing.T) {
	q := &queuedScheduler{}
	lib := NewLibrary(WithCompileFunc(echoCompile), WithScheduler(q.schedule))
	_ = lib.Register(testProgram("fog", "fn v1() {}"))
	_ = lib.Load("fog")
	_ = lib.Reload("fog", "fn v2() {}")
	q.run()

	bc, ok := lib.Effect("fog")
	if !ok || !strings.Contains(bc.Source, "v2") {
		t.Fatalf("Effect() = %+v, want the reloaded source", bc)
	}
}

func TestLibraryErrors(t *testing.T) {
	lib := NewLibrary(WithCompileFunc(echoCompile), WithSynchronousCompilation())
	_ = lib.Register(testProgram("fog", "fn main() {}"))

	if err := lib.Register(testProgram("fog", "")); !errors.Is(err, ErrDuplicateEffect) {
		t.Errorf("Register() error = %v, want ErrDuplicateEffect", err)
	}
	if err := lib.Load("missing"); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("Load() error = %v, want ErrUnknownEffect", err)
	}
	if err := lib.Reload("missing", ""); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("Reload() error = %v, want ErrUnknownEffect", err)
	}
	if _, err := lib.Status("missing"); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("Status() error = %v, want ErrUnknownEffect", err)
	}

	_ = lib.Register(testProgram("broken", "//@oxy:include nowhere"))
	_ = lib.Load("broken")
	if status, err := lib.Status("broken"); status != StatusFailed || err == nil {
		t.Errorf("Status() = %v, %v, want failed pre-processing", status, err)
	}

	names := lib.Names()
	slices.Sort(names)
	if !slices.Equal(names, []string{"broken", "fog"}) {
		t.Errorf("Names() = %v", names)
	}
}

func TestDynamicEffectInstance(t *testing.T) {
	q := &queuedScheduler{}
	lib := NewLibrary(WithCompileFunc(echoCompile), WithScheduler(q.schedule))
	_ = lib.Register(testProgram("minmax", "fn v1() {}"))

	inst := NewDynamicEffectInstance("minmax", lib)
	if inst.UpdateEffect() || inst.Effect() != nil {
		t.Fatal("effect reported before compilation")
	}
	if len(q.jobs) != 1 {
		t.Fatalf("UpdateEffect() queued %d compile jobs, want 1", len(q.jobs))
	}

	q.run()
	if !inst.UpdateEffect() {
		t.Fatal("UpdateEffect() missed the compiled effect")
	}
	if inst.UpdateEffect() {
		t.Fatal("UpdateEffect() reported a change without a new compilation")
	}

	_ = lib.Reload("minmax", "fn v2() {}")
	q.run()
	if !inst.UpdateEffect() {
		t.Fatal("UpdateEffect() missed the reloaded effect")
	}
}
