package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fog/engine/config"
	"github.com/Carmen-Shannon/oxy-fog/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fog/engine/model"
	"github.com/Carmen-Shannon/oxy-fog/engine/scene"
	"github.com/google/uuid"
)

// PopulateScene adds the fog volumes described by settings to s. Every bounds entry becomes a game object
// drawing bounds, scaled and placed as configured.
//
// Parameters:
//   - s: the scene to fill
//   - settings: the validated settings
//   - bounds: the geometry of one bounding volume, usually a unit box
//
// Returns:
//   - error: an error if a volume cannot be added
func PopulateScene(s scene.Scene, settings *config.Settings, bounds model.Model) error {
	for i, v := range settings.Volumes {
		def, err := v.Definition()
		if err != nil {
			return fmt.Errorf("volumes[%d]: %w", i, err)
		}
		if err := s.AddFogVolume(def); err != nil {
			return fmt.Errorf("volumes[%d]: %w", i, err)
		}
		for _, b := range v.Bounds {
			scale := b.ScaleOrDefault()
			rotation := b.RotationRadians()
			s.Add(game_object.NewGameObject(
				game_object.WithModel(bounds),
				game_object.WithPosition(b.Position[0], b.Position[1], b.Position[2]),
				game_object.WithRotation(rotation.X(), rotation.Y(), rotation.Z()),
				game_object.WithScale(scale.X(), scale.Y(), scale.Z()),
				game_object.WithFogVolume(def.ID),
			))
		}
	}
	return nil
}

// applyVolumeSettings updates the definitions of s that settings name by ID.
// Volumes without an ID, or unknown to the scene, are left alone.
//
// Returns:
//   - int: the number of definitions updated
func applyVolumeSettings(s scene.Scene, settings *config.Settings) int {
	updated := 0
	for _, v := range settings.Volumes {
		if v.ID == "" {
			continue
		}
		id, err := uuid.Parse(v.ID)
		if err != nil {
			continue
		}
		if def := s.FogVolume(id); def != nil {
			v.Apply(def)
			updated++
		}
	}
	return updated
}
