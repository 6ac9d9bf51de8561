package scene

import (
	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/Carmen-Shannon/oxy-fog/engine/game_object"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			s.add(obj)
		}
	}
}

// WithFogVolumes adds initial fog volume definitions in compositing order.
// Invalid or duplicate definitions are logged and skipped.
//
// Parameters:
//   - defs: the definitions to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFogVolumes(defs ...*fog.Definition) SceneBuilderOption {
	return func(s *scene) {
		for _, def := range defs {
			if err := s.addFogVolume(def); err != nil {
				s.logger.Warn("skipping fog volume", "err", err)
			}
		}
	}
}

// WithAggregator attaches the aggregator that is marked dirty whenever fog volumes are removed.
//
// Parameters:
//   - agg: the aggregator reading this scene
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAggregator(agg fog.Aggregator) SceneBuilderOption {
	return func(s *scene) {
		s.aggregator = agg
	}
}
