package effect

import (
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/Carmen-Shannon/oxy-fog/engine/renderer"
)

// DynamicEffectInstance tracks the current compiled version of a named effect together with the
// parameters applied to it. It is owned by a single render component and used on the render thread.
type DynamicEffectInstance struct {
	name       string
	library    Library
	requested  bool
	current    *renderer.EffectBytecode
	parameters *renderer.ParameterCollection
}

// NewDynamicEffectInstance creates an instance of the effect registered as name in library.
// Compilation is requested on the first UpdateEffect.
//
// Parameters:
//   - name: the registered effect name
//   - library: the library owning the effect
//
// Returns:
//   - *DynamicEffectInstance: the new instance
func NewDynamicEffectInstance(name string, library Library) *DynamicEffectInstance {
	return &DynamicEffectInstance{
		name:       name,
		library:    library,
		parameters: renderer.NewParameterCollection(),
	}
}

// Name returns the effect name.
func (d *DynamicEffectInstance) Name() string {
	return d.name
}

// UpdateEffect picks up the latest compiled bytecode.
//
// Returns:
//   - bool: true if the bytecode changed since the previous call
func (d *DynamicEffectInstance) UpdateEffect() bool {
	if !d.requested {
		if err := d.library.Load(d.name); err != nil {
			logging.Named("effect").Warn("cannot load effect", "name", d.name, "err", err)
		}
		d.requested = true
	}

	latest, ok := d.library.Effect(d.name)
	if !ok || latest == d.current {
		return false
	}
	d.current = latest
	return true
}

// Effect returns the bytecode selected by the last UpdateEffect, or nil while the effect is still compiling.
func (d *DynamicEffectInstance) Effect() *renderer.EffectBytecode {
	return d.current
}

// Parameters returns the parameters applied with the effect.
func (d *DynamicEffectInstance) Parameters() *renderer.ParameterCollection {
	return d.parameters
}

// Apply uploads the parameters for the current effect.
//
// Parameters:
//   - cl: the command list of the frame
//
// Returns:
//   - error: the error reported by the command list
func (d *DynamicEffectInstance) Apply(cl renderer.CommandList) error {
	return cl.ApplyParameters(d.current, d.parameters)
}
