package common

// Key is a virtual key code. Values match GLFW key codes, which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key uint32

const (
	KeyW     Key = 87 // W key (ASCII)
	KeyA     Key = 65 // A key (ASCII)
	KeyS     Key = 83 // S key (ASCII)
	KeyD     Key = 68 // D key (ASCII)
	KeyC     Key = 67 // C key (ASCII)
	KeyF     Key = 70 // F key (ASCII)
	KeyR     Key = 82 // R key (ASCII)
	KeySpace Key = 32 // Spacebar (ASCII)

	Key1 Key = 49 // 1 key (ASCII)
	Key2 Key = 50 // 2 key (ASCII)
	Key3 Key = 51 // 3 key (ASCII)
	Key4 Key = 52 // 4 key (ASCII)
)

// Non-printable keys
const (
	KeyEsc       Key = 256 // Escape key (GLFW)
	KeyRight     Key = 262 // Right arrow (GLFW)
	KeyLeft      Key = 263 // Left arrow (GLFW)
	KeyDown      Key = 264 // Down arrow (GLFW)
	KeyUp        Key = 265 // Up arrow (GLFW)
	KeyLeftShift Key = 340 // Left Shift (GLFW)
)
