package capture

import "github.com/mrjoshuak/go-openexr/exr"

// CapturerBuilderOption is a functional option used to configure a Capturer during construction.
type CapturerBuilderOption func(*capturer)

// WithPrefix sets the file name prefix of written captures. Defaults to "fog".
//
// Parameters:
//   - prefix: the file name prefix
//
// Returns:
//   - CapturerBuilderOption: a function that sets the prefix
func WithPrefix(prefix string) CapturerBuilderOption {
	return func(c *capturer) {
		c.prefix = prefix
	}
}

// WithCompression sets the EXR compression of written captures. Defaults to ZIP.
//
// Parameters:
//   - compression: the EXR compression method
//
// Returns:
//   - CapturerBuilderOption: a function that sets the compression
func WithCompression(compression exr.Compression) CapturerBuilderOption {
	return func(c *capturer) {
		c.compression = compression
	}
}
