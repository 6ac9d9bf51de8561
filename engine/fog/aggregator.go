package fog

import (
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type boundsEntry struct {
	generation uint64
	records    []BoundingGeometryRecord
}

// aggregator is the implementation of the Aggregator interface.
type aggregator struct {
	entries    map[uuid.UUID]*boundsEntry
	generation uint64
	dirty      bool
	active     []VolumeRecord
	capacity   int
	logger     *log.Logger
}

// Aggregator resolves which fog volumes are active in a frame and which geometry bounds each of them.
// The bounding geometry lists are reused between frames; records returned by ActiveVolumes stay valid
// until the next Update.
type Aggregator interface {
	// Update rebuilds the active volumes from the current state of src.
	//
	// Parameters:
	//   - src: the scene supplying definitions and bounding components
	Update(src Source)

	// ActiveVolumes returns the volumes resolved by the last Update, in definition order.
	ActiveVolumes() []VolumeRecord

	// BoundingVolumes returns the bounding geometry gathered for a definition in the last Update.
	//
	// Parameters:
	//   - id: the definition identity
	//
	// Returns:
	//   - BoundingSet: the geometry of the definition
	//   - bool: false if the definition had no geometry this frame
	BoundingVolumes(id uuid.UUID) (BoundingSet, bool)

	// MarkDirty makes the next Update discard every cached list, e.g. after components were removed.
	MarkDirty()

	// Generation returns the number of Update calls so far.
	Generation() uint64

	// Publish hands the active volumes to the frame context.
	Publish(ctx *FrameContext)
}

var _ Aggregator = &aggregator{}

// NewAggregator creates an empty Aggregator.
//
// Parameters:
//   - opts: a variadic list of AggregatorBuilderOption functions to configure the aggregator
//
// Returns:
//   - Aggregator: the new aggregator
func NewAggregator(opts ...AggregatorBuilderOption) Aggregator {
	a := &aggregator{
		logger: logging.Named("fog"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.entries = make(map[uuid.UUID]*boundsEntry, a.capacity)
	a.active = make([]VolumeRecord, 0, a.capacity)
	return a
}

func (a *aggregator) Update(src Source) {
	a.generation++
	if a.dirty {
		a.entries = make(map[uuid.UUID]*boundsEntry, len(a.entries))
	} else {
		for _, e := range a.entries {
			e.records = e.records[:0]
		}
	}

	components := 0
	for _, c := range src.BoundingComponents() {
		if c == nil || !c.Enabled() {
			continue
		}
		id, ok := c.FogVolume()
		if !ok {
			continue
		}
		e, ok := a.entries[id]
		if !ok {
			e = &boundsEntry{}
			a.entries[id] = e
		}
		e.records = append(e.records, BoundingGeometryRecord{World: c.WorldMatrix(), Model: c.Model()})
		e.generation = a.generation
		components++
	}
	a.dirty = false

	a.active = a.active[:0]
	for _, d := range src.Definitions() {
		if d == nil || !d.Enabled {
			continue
		}
		set, ok := a.BoundingVolumes(d.ID)
		if !ok {
			continue
		}
		a.active = append(a.active, VolumeRecord{
			SampleCount:             d.SampleCount,
			DensityFactor:           d.DensityFactor,
			Bounds:                  set,
			SeparateBoundingVolumes: d.SeparateBoundingVolumes,
		})
	}

	a.logger.Debug("fog volumes aggregated", "generation", a.generation, "components", components, "active", len(a.active))
}

func (a *aggregator) ActiveVolumes() []VolumeRecord {
	return a.active
}

func (a *aggregator) BoundingVolumes(id uuid.UUID) (BoundingSet, bool) {
	e, ok := a.entries[id]
	if !ok || e.generation != a.generation || len(e.records) == 0 {
		return BoundingSet{}, false
	}
	return BoundingSet{records: e.records}, true
}

func (a *aggregator) MarkDirty() {
	a.dirty = true
}

func (a *aggregator) Generation() uint64 {
	return a.generation
}

func (a *aggregator) Publish(ctx *FrameContext) {
	ctx.PublishFogVolumes(a.active)
}
