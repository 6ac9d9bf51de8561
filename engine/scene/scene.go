package scene

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-fog/engine/camera"
	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/Carmen-Shannon/oxy-fog/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// ErrDuplicateFogVolume is returned when a fog volume with the same ID is already part of the scene.
var ErrDuplicateFogVolume = errors.New("fog volume already in scene")

// Scene holds a camera, the fog volume definitions and the game objects bounding them.
// It is the fog.Source consumed by the fog aggregator each frame.
// Thread-safe for concurrent access.
type Scene interface {
	fog.Source

	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// AddFogVolume appends a fog volume definition. Definition order is compositing order.
	//
	// Parameters:
	//   - def: the definition to add
	//
	// Returns:
	//   - error: a configuration error if def is invalid, or ErrDuplicateFogVolume
	AddFogVolume(def *fog.Definition) error

	// RemoveFogVolume removes a fog volume definition and marks the attached aggregator dirty.
	// Objects bounding the volume keep their assignment and are ignored until a volume with
	// the same ID is added again.
	//
	// Parameters:
	//   - id: the fog volume ID
	//
	// Returns:
	//   - bool: true if the volume was part of the scene
	RemoveFogVolume(id uuid.UUID) bool

	// FogVolume returns the definition with the given ID, or nil.
	FogVolume(id uuid.UUID) *fog.Definition

	// Count returns the number of GameObjects in the scene.
	Count() int

	// Add adds a GameObject to the scene, assigning an ID when it has none.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the assigned object ID
	Add(obj game_object.GameObject) uint64

	// Get retrieves a GameObject by its ID. Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove removes a GameObject by ID.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Clear removes all objects and fog volumes from the scene.
	Clear()

	// Objects returns the game objects of the scene in insertion order.
	Objects() []game_object.GameObject

	// Aggregator returns the fog aggregator resolving this scene's volumes.
	Aggregator() fog.Aggregator
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool
	cam    camera.Camera

	definitions []*fog.Definition
	registry    map[uint64]game_object.GameObject
	objects     []game_object.GameObject
	nextID      uint64

	aggregator fog.Aggregator
	logger     *log.Logger
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera.
// Panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		cam:      cam,
		registry: make(map[uint64]game_object.GameObject),
		nextID:   1,
		logger:   logging.Named("scene"),
	}
	for _, option := range options {
		option(s)
	}
	if s.aggregator == nil {
		s.aggregator = fog.NewAggregator()
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) AddFogVolume(def *fog.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addFogVolume(def)
}

// addFogVolume appends def. Caller must hold s.mu write lock.
func (s *scene) addFogVolume(def *fog.Definition) error {
	if def == nil {
		return errors.New("scene: nil fog volume definition")
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("fog volume %s: %w", def.ID, err)
	}
	if slices.ContainsFunc(s.definitions, func(d *fog.Definition) bool { return d.ID == def.ID }) {
		return fmt.Errorf("%w: %s", ErrDuplicateFogVolume, def.ID)
	}
	s.definitions = append(s.definitions, def)
	s.logger.Debug("fog volume added", "scene", s.name, "id", def.ID, "samples", def.SampleCount)
	return nil
}

func (s *scene) RemoveFogVolume(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.definitions, func(d *fog.Definition) bool { return d.ID == id })
	if i < 0 {
		return false
	}
	s.definitions = slices.Delete(s.definitions, i, i+1)
	if s.aggregator != nil {
		s.aggregator.MarkDirty()
	}
	return true
}

func (s *scene) FogVolume(id uuid.UUID) *fog.Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.definitions {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *scene) Definitions() []*fog.Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.definitions)
}

func (s *scene) BoundingComponents() []fog.BoundingComponent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	components := make([]fog.BoundingComponent, len(s.objects))
	for i, obj := range s.objects {
		components[i] = obj
	}
	return components
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.objects)
}

func (s *scene) Aggregator() fog.Aggregator {
	return s.aggregator
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

// add registers obj. Caller must hold s.mu write lock.
func (s *scene) add(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}

	if existing, ok := s.registry[obj.ID()]; ok {
		if existing == obj {
			return obj.ID()
		}
		s.objects = slices.DeleteFunc(s.objects, func(o game_object.GameObject) bool { return o == existing })
	}
	s.registry[obj.ID()] = obj
	s.objects = append(s.objects, obj)
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, exists := s.registry[id]
	if !exists {
		return
	}
	delete(s.registry, id)
	s.objects = slices.DeleteFunc(s.objects, func(o game_object.GameObject) bool { return o == obj })
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = make(map[uint64]game_object.GameObject)
	s.objects = nil
	s.definitions = nil
	if s.aggregator != nil {
		s.aggregator.MarkDirty()
	}
}
