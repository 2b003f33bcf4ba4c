// Package scenestate owns the authoritative in-memory scene snapshot, a
// bounded history of past snapshots, and the spatial queries the decision
// synthesizer relies on.
package scenestate

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/jinzhu/copier"

	"scene-assistant/internal/scene"
)

// maxHistory bounds the snapshot history; oldest entries are evicted first.
const maxHistory = 100

// maxCategoryEntries rejects pathological updates before they are applied.
const maxCategoryEntries = 10000

// gridSearchRadius bounds the free-position grid search (19x19 cells).
const gridSearchRadius = 9

// ErrNotInitialized is returned when the tracker is used before New.
var ErrNotInitialized = errors.New("scene tracker not initialized")

// ErrMalformedUpdate is returned when a delta carries empty names or oversized
// categories. The tracker state is unchanged in that case.
var ErrMalformedUpdate = errors.New("malformed scene update")

// HistoryEntry is an immutable copy of the snapshot after one update.
type HistoryEntry struct {
	Timestamp float64
	Snapshot  scene.Snapshot
}

// Tracker holds the live snapshot and history. All access is serialized by a
// single mutex so an update is visible entirely-before or entirely-after any
// concurrent read.
type Tracker struct {
	mu sync.Mutex

	snap *scene.Snapshot
	// Insertion order of object names, refreshed on every objects update.
	// Keeps GetByType iteration and NearestTo tie-breaks deterministic.
	objectOrder []string
	history     []HistoryEntry
}

// New returns a Tracker with an empty scene.
func New() *Tracker {
	return &Tracker{snap: scene.NewSnapshot()}
}

// Update replaces each category present in the delta wholesale (nil slice =
// leave untouched), then appends a history entry with the delta's timestamp.
// A malformed delta is rejected with no state change.
func (t *Tracker) Update(delta *scene.Delta) error {
	if t == nil || t.snap == nil {
		return ErrNotInitialized
	}
	if delta == nil {
		return fmt.Errorf("%w: nil delta", ErrMalformedUpdate)
	}
	if err := validateDelta(delta); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if delta.Objects != nil {
		t.snap.Objects = make(map[string]scene.Object, len(delta.Objects))
		t.objectOrder = t.objectOrder[:0]
		for _, o := range delta.Objects {
			if _, seen := t.snap.Objects[o.Name]; !seen {
				t.objectOrder = append(t.objectOrder, o.Name)
			}
			t.snap.Objects[o.Name] = o
		}
	}
	if delta.Lights != nil {
		t.snap.Lights = make(map[string]scene.Light, len(delta.Lights))
		for _, l := range delta.Lights {
			t.snap.Lights[l.Name] = l
		}
	}
	if delta.Cameras != nil {
		t.snap.Cameras = make(map[string]scene.Camera, len(delta.Cameras))
		for _, c := range delta.Cameras {
			t.snap.Cameras[c.Name] = c
		}
	}

	entry := HistoryEntry{Timestamp: delta.Timestamp}
	if err := copier.CopyWithOption(&entry.Snapshot, t.snap, copier.Option{DeepCopy: true}); err != nil {
		return fmt.Errorf("snapshot history copy: %w", err)
	}
	t.history = append(t.history, entry)
	if len(t.history) > maxHistory {
		t.history = t.history[len(t.history)-maxHistory:]
	}
	return nil
}

func validateDelta(delta *scene.Delta) error {
	if len(delta.Objects) > maxCategoryEntries || len(delta.Lights) > maxCategoryEntries || len(delta.Cameras) > maxCategoryEntries {
		return fmt.Errorf("%w: category exceeds %d entries", ErrMalformedUpdate, maxCategoryEntries)
	}
	for i, o := range delta.Objects {
		if o.Name == "" {
			return fmt.Errorf("%w: object %d has no name", ErrMalformedUpdate, i)
		}
	}
	for i, l := range delta.Lights {
		if l.Name == "" {
			return fmt.Errorf("%w: light %d has no name", ErrMalformedUpdate, i)
		}
	}
	for i, c := range delta.Cameras {
		if c.Name == "" {
			return fmt.Errorf("%w: camera %d has no name", ErrMalformedUpdate, i)
		}
	}
	return nil
}

// Snapshot returns a deep copy of the current scene, safe to read without
// holding the tracker lock. Callers doing a multi-step computation must take
// one snapshot up front rather than re-reading mid-computation.
func (t *Tracker) Snapshot() (*scene.Snapshot, error) {
	if t == nil || t.snap == nil {
		return nil, ErrNotInitialized
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := scene.NewSnapshot()
	if err := copier.CopyWithOption(out, t.snap, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("snapshot copy: %w", err)
	}
	return out, nil
}

// GetByName returns the object with the given name, if present.
func (t *Tracker) GetByName(name string) (scene.Object, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.snap.Objects[name]
	return o, ok
}

// GetByType returns all objects of the given type in insertion order.
func (t *Tracker) GetByType(objectType string) []scene.Object {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []scene.Object
	for _, name := range t.objectOrder {
		if o, ok := t.snap.Objects[name]; ok && o.Type == objectType {
			out = append(out, o)
		}
	}
	return out
}

// NearestTo returns the object closest to position by Euclidean distance.
// Ties keep the first object encountered in insertion order. ok is false when
// the scene has no objects.
func (t *Tracker) NearestTo(position scene.Vec3) (nearest scene.Object, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	best := math.Inf(1)
	for _, name := range t.objectOrder {
		o, present := t.snap.Objects[name]
		if !present {
			continue
		}
		if d := position.Distance(o.Position); d < best {
			best = d
			nearest = o
			ok = true
		}
	}
	return nearest, ok
}

// directionOffsets places a new object two units away from a reference.
var directionOffsets = map[string]scene.Vec3{
	"front":  {0, 0, 2},
	"behind": {0, 0, -2},
	"left":   {-2, 0, 0},
	"right":  {2, 0, 0},
	"above":  {0, 2, 0},
	"below":  {0, -2, 0},
}

// FindFreePosition returns a position for a new object. If referenceName
// resolves, it is that object's position offset by the fixed per-direction
// vector (unknown directions fall back to "front"). Otherwise it scans an
// expanding grid of rounded (x, z) cells, radius 0..9, x before z, and returns
// the first free cell scaled to world units. A fully occupied grid yields the
// origin; that fallback is defined behavior, not an error.
func (t *Tracker) FindFreePosition(referenceName, direction string) scene.Vec3 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if referenceName != "" {
		if ref, ok := t.snap.Objects[referenceName]; ok {
			offset, ok := directionOffsets[direction]
			if !ok {
				offset = directionOffsets["front"]
			}
			return ref.Position.Add(offset)
		}
	}

	occupied := make(map[[2]int]bool, len(t.snap.Objects))
	for _, o := range t.snap.Objects {
		occupied[[2]int{int(math.Round(o.Position[0])), int(math.Round(o.Position[2]))}] = true
	}
	for radius := 0; radius <= gridSearchRadius; radius++ {
		for x := -radius; x <= radius; x++ {
			for z := -radius; z <= radius; z++ {
				if !occupied[[2]int{x, z}] {
					return scene.Vec3{float64(x * 2), 0, float64(z * 2)}
				}
			}
		}
	}
	return scene.Vec3{}
}

// Composition is the result of AnalyzeComposition.
type Composition struct {
	ObjectCount     int      `json:"object_count"`
	LightCount      int      `json:"light_count"`
	CameraCount     int      `json:"camera_count"`
	Balance         string   `json:"balance"`
	LightingQuality string   `json:"lighting_quality"`
	Suggestions     []string `json:"suggestions"`
}

// AnalyzeComposition reports counts, spatial balance, and lighting quality for
// the current scene, with fixed suggestion checks.
func (t *Tracker) AnalyzeComposition() Composition {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := Composition{
		ObjectCount:     len(t.snap.Objects),
		LightCount:      len(t.snap.Lights),
		CameraCount:     len(t.snap.Cameras),
		Balance:         balance(t.snap.Objects),
		LightingQuality: lightingQuality(len(t.snap.Lights)),
		Suggestions:     []string{},
	}
	if c.LightCount == 0 {
		c.Suggestions = append(c.Suggestions, "Add lighting to the scene")
	}
	if c.CameraCount == 0 {
		c.Suggestions = append(c.Suggestions, "Add a camera to frame the scene")
	}
	return c
}

// balance is "empty" with no objects, "balanced" when the center of mass is
// within 1.0 of the origin on both horizontal axes, else "unbalanced".
func balance(objects map[string]scene.Object) string {
	if len(objects) == 0 {
		return "empty"
	}
	var sumX, sumZ float64
	for _, o := range objects {
		sumX += o.Position[0]
		sumZ += o.Position[2]
	}
	n := float64(len(objects))
	if math.Abs(sumX/n) < 1.0 && math.Abs(sumZ/n) < 1.0 {
		return "balanced"
	}
	return "unbalanced"
}

func lightingQuality(lights int) string {
	switch {
	case lights == 0:
		return "dark"
	case lights == 1:
		return "single_light"
	case lights <= 3:
		return "three_point"
	default:
		return "complex"
	}
}

// History returns a copy of the history entries, oldest first.
func (t *Tracker) History() []HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]HistoryEntry, len(t.history))
	copy(out, t.history)
	return out
}
