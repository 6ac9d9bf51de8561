package renderer

import (
	"fmt"
	"sync"
)

type targetKey struct {
	width, height int
	format        PixelFormat
}

// targetPool is the implementation of the TargetPool interface.
type targetPool struct {
	mu     sync.Mutex
	device Device

	free   map[targetKey][]Texture
	leased map[Texture]targetKey
}

// TargetPool hands out scratch render targets. Released targets are kept and handed out again to later
// requests of the same size and format, so a fixed per-frame workload allocates only on its first frame.
type TargetPool interface {
	// Acquire returns a render target of the requested size and format, reusing a released one when possible.
	//
	// Parameters:
	//   - desc: the requested target; Label is only used when a new texture is created
	//
	// Returns:
	//   - Texture: a target leased to the caller until Release
	//   - error: an error if the size is invalid or creation fails
	Acquire(desc TextureDescription) (Texture, error)

	// Release returns a leased target to the pool. Releasing a texture the pool did not hand out is a no-op.
	Release(t Texture)

	// Leased returns the number of targets currently handed out.
	Leased() int

	// Destroy releases every pooled texture, leased or not.
	Destroy()
}

var _ TargetPool = &targetPool{}

// NewTargetPool creates a pool allocating through device.
//
// Parameters:
//   - device: the device new targets are created on
//
// Returns:
//   - TargetPool: the new pool
func NewTargetPool(device Device) TargetPool {
	return &targetPool{
		device: device,
		free:   make(map[targetKey][]Texture),
		leased: make(map[Texture]targetKey),
	}
}

func (p *targetPool) Acquire(desc TextureDescription) (Texture, error) {
	if desc.Width < 1 || desc.Height < 1 {
		return nil, fmt.Errorf("render target %q has invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := targetKey{width: desc.Width, height: desc.Height, format: desc.Format}
	if list := p.free[key]; len(list) > 0 {
		t := list[len(list)-1]
		p.free[key] = list[:len(list)-1]
		p.leased[t] = key
		return t, nil
	}

	t, err := p.device.CreateRenderTarget(desc)
	if err != nil {
		return nil, fmt.Errorf("failed to create render target %q: %w", desc.Label, err)
	}
	p.leased[t] = key
	return t, nil
}

func (p *targetPool) Release(t Texture) {
	if t == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	key, ok := p.leased[t]
	if !ok {
		return
	}
	delete(p.leased, t)
	p.free[key] = append(p.free[key], t)
}

func (p *targetPool) Leased() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.leased)
}

func (p *targetPool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for t := range p.leased {
		t.Release()
	}
	for _, list := range p.free {
		for _, t := range list {
			t.Release()
		}
	}
	p.leased = make(map[Texture]targetKey)
	p.free = make(map[targetKey][]Texture)
}
