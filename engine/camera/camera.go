package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-fog/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds perspective settings and computes view/projection matrices
// from an attached CameraController each frame via Update().
type Camera interface {
	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// Fov returns the field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// RenderView returns a snapshot of the current matrices and clip planes.
	//
	// Returns:
	//   - RenderView: the view used to render the next frame
	RenderView() RenderView

	// Controller returns the attached CameraController.
	// Returns nil if no controller is attached.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update reads position/target from the controller and recomputes matrices.
	// Should be called once per frame before the frame's RenderView is taken.
	Update()

	// SetAspect sets the aspect ratio, typically after a window resize.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// SetClipPlanes sets the near and far clip distances.
	//
	// Parameters:
	//   - near: the near plane distance
	//   - far: the far plane distance
	SetClipPlanes(near, far float32)

	// SetController attaches a controller supplying position and target.
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with a 45 degree field of view and clip planes at 0.1 and 100.
//
// Parameters:
//   - options: a variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:               &sync.Mutex{},
		up:               mgl32.Vec3{0, 1, 0},
		fov:              45.0 * (math.Pi / 180.0), // radians
		aspect:           1.0,
		near:             0.1,
		far:              100.0,
		viewMatrix:       mgl32.Ident4(),
		projectionMatrix: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) RenderView() RenderView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RenderView{
		View:          c.viewMatrix,
		Projection:    c.projectionMatrix,
		NearClipPlane: c.near,
		FarClipPlane:  c.far,
	}
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect > 0 {
		c.aspect = aspect
	}
	c.updateMatrices()
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near, c.far = near, far
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

// updateMatrices recomputes the view and projection matrices. Callers must hold c.mu.
func (c *cameraImpl) updateMatrices() {
	c.projectionMatrix = common.PerspectiveRH(c.fov, c.aspect, c.near, c.far)
	if c.controller == nil {
		return
	}
	c.viewMatrix = mgl32.LookAtV(c.controller.Position(), c.controller.Target(), c.up)
}
