package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minElevation = -math.Pi/2 + 0.01
	maxElevation = math.Pi/2 - 0.01
	minRadius    = 0.1
)

// CameraController owns the positional state of a camera. The camera reads position and target
// from it and computes its matrices.
type CameraController interface {
	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Target returns the look-at point.
	Target() mgl32.Vec3

	// SetTarget sets the pivot point and recomputes the position.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl32.Vec3)

	// Orbit rotates the camera around the target.
	//
	// Parameters:
	//   - azimuth: rotation around the up axis in radians
	//   - elevation: tilt in radians, clamped just short of the poles
	Orbit(azimuth, elevation float32)

	// Zoom moves the camera towards the target. Positive delta moves closer.
	Zoom(delta float32)

	// Radius returns the distance from the target.
	Radius() float32
}

type orbitController struct {
	mu *sync.Mutex

	target    mgl32.Vec3
	radius    float32
	azimuth   float32
	elevation float32
}

var _ CameraController = &orbitController{}

// CameraControllerBuilderOption is a functional option used to configure an orbit controller.
type CameraControllerBuilderOption func(*orbitController)

// NewOrbitController creates a controller orbiting the origin at a radius of 10.
//
// Parameters:
//   - opts: a variadic list of CameraControllerBuilderOption functions
//
// Returns:
//   - CameraController: the new controller
func NewOrbitController(opts ...CameraControllerBuilderOption) CameraController {
	c := &orbitController{
		mu:     &sync.Mutex{},
		radius: 10,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.elevation = clampElevation(c.elevation)
	c.radius = max(c.radius, minRadius)
	return c
}

// WithTarget sets the initial pivot point.
func WithTarget(target mgl32.Vec3) CameraControllerBuilderOption {
	return func(c *orbitController) {
		c.target = target
	}
}

// WithOrbit sets the initial radius, azimuth and elevation.
//
// Parameters:
//   - radius: distance from the target
//   - azimuth: rotation around the up axis in radians
//   - elevation: tilt in radians
//
// Returns:
//   - CameraControllerBuilderOption: a function that sets the orbit
func WithOrbit(radius, azimuth, elevation float32) CameraControllerBuilderOption {
	return func(c *orbitController) {
		c.radius = radius
		c.azimuth = azimuth
		c.elevation = elevation
	}
}

func clampElevation(e float32) float32 {
	return mgl32.Clamp(e, minElevation, maxElevation)
}

func (c *orbitController) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()

	sinA, cosA := math.Sincos(float64(c.azimuth))
	sinE, cosE := math.Sincos(float64(c.elevation))
	offset := mgl32.Vec3{
		float32(cosE * sinA),
		float32(sinE),
		float32(cosE * cosA),
	}
	return c.target.Add(offset.Mul(c.radius))
}

func (c *orbitController) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *orbitController) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
}

func (c *orbitController) Orbit(azimuth, elevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += azimuth
	c.elevation = clampElevation(c.elevation + elevation)
}

func (c *orbitController) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = max(c.radius-delta, minRadius)
}

func (c *orbitController) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}
