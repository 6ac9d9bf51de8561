package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-fog/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type gameObject struct {
	mu      *sync.RWMutex
	id      uint64
	enabled atomic.Bool
	mdl     model.Model

	position [3]float32
	scale    [3]float32
	rotation [3]float32

	fogVolume    uuid.UUID
	hasFogVolume bool
}

// GameObject defines the interface for a transform-bearing scene entity. An object assigned to a
// fog volume contributes its model, placed by its world matrix, to that volume's bounding geometry.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object takes part in the current frame.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Position returns the object's position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the object's rotation as XYZ Euler angles in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// Scale returns the object's scale.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// TransformData reads all transform data under a single lock.
	//
	// Returns:
	//   - pos: position as [3]float32 (x, y, z)
	//   - scale: scale as [3]float32 (x, y, z)
	//   - rot: rotation as [3]float32 (rx, ry, rz)
	TransformData() (pos, scale, rot [3]float32)

	// WorldMatrix returns translation * rotation (Z, then Y, then X) * scale.
	//
	// Returns:
	//   - mgl32.Mat4: the object-to-world transform
	WorldMatrix() mgl32.Mat4

	// FogVolume returns the fog volume this object bounds.
	//
	// Returns:
	//   - uuid.UUID: the fog volume ID
	//   - bool: false if the object bounds no fog volume
	FogVolume() (uuid.UUID, bool)

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object takes part in rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetModel assigns a Model to this object.
	//
	// Parameters:
	//   - m: the Model to associate
	SetModel(m model.Model)

	// SetPosition sets the object's position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation sets the object's rotation.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles in radians
	SetRotation(rx, ry, rz float32)

	// SetScale sets the object's scale.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// SetFogVolume assigns the object to a fog volume.
	//
	// Parameters:
	//   - id: the fog volume ID
	SetFogVolume(id uuid.UUID)

	// ClearFogVolume detaches the object from its fog volume.
	ClearFogVolume()
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new enabled GameObject configured with the given options.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:    &sync.RWMutex{},
		scale: [3]float32{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.mdl
}

func (g *gameObject) Position() (x, y, z float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation[0], g.rotation[1], g.rotation[2]
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale[0], g.scale[1], g.scale[2]
}

func (g *gameObject) TransformData() (pos, scale, rot [3]float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position, g.scale, g.rotation
}

func (g *gameObject) WorldMatrix() mgl32.Mat4 {
	pos, scale, rot := g.TransformData()
	rotation := mgl32.HomogRotate3DZ(rot[2]).
		Mul4(mgl32.HomogRotate3DY(rot[1])).
		Mul4(mgl32.HomogRotate3DX(rot[0]))
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rotation).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

func (g *gameObject) FogVolume() (uuid.UUID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.fogVolume, g.hasFogVolume
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mdl = m
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = [3]float32{sx, sy, sz}
}

func (g *gameObject) SetFogVolume(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fogVolume, g.hasFogVolume = id, true
}

func (g *gameObject) ClearFogVolume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fogVolume, g.hasFogVolume = uuid.Nil, false
}
