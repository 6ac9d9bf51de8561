package model

// ModelBuilderOption is a functional option used to configure a Model during construction.
type ModelBuilderOption func(*model)

// WithName sets the model name.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: a function that sets the name
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMeshes sets the meshes of the model.
//
// Parameters:
//   - meshes: the meshes in draw order
//
// Returns:
//   - ModelBuilderOption: a function that sets the meshes
func WithMeshes(meshes ...*Mesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = append(m.meshes, meshes...)
	}
}
