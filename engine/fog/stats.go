package fog

import "slices"

// BlendMode is how a fog volume was combined with the fog buffer.
type BlendMode int

const (
	// BlendReplace overwrote the fog buffer.
	BlendReplace BlendMode = iota
	// BlendAdditive was added on top of earlier volumes.
	BlendAdditive
)

func (m BlendMode) String() string {
	if m == BlendAdditive {
		return "additive"
	}
	return "replace"
}

// FrameStats summarizes the last Draw of a Compositor.
type FrameStats struct {
	Collected int
	Drawn     int
	Culled    int
	Deferred  int

	BlendSequence []BlendMode
}

func (s FrameStats) clone() FrameStats {
	s.BlendSequence = slices.Clone(s.BlendSequence)
	return s
}
