//go:build mage

package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-fog/engine"
	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer/effect"
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles every embedded effect through naga and reports the ones that fail.
func (Build) Shaders() error {
	lib := effect.NewLibrary(effect.WithSynchronousCompilation())
	if err := fog.RegisterEffects(lib, fog.DefaultMinMaxEffect, fog.DefaultFogEffect); err != nil {
		return err
	}
	for _, p := range []effect.Program{engine.GeometryProgram(), engine.FogApplyProgram()} {
		if err := lib.Register(p); err != nil {
			return err
		}
	}

	names := lib.Names()
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		if err := lib.Load(name); err != nil {
			return err
		}
		status, err := lib.Status(name)
		fmt.Printf("%-24s %s\n", name, status)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Renders a few headless frames of the fog volumes demo.
func (Build) Demo() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("run", "examples/fog_volumes.go", "-frames", "3"), withStream())
	return err
}
