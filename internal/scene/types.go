// Package scene defines the shared scene data model: vectors, objects, lights,
// cameras, and the snapshot/delta shapes exchanged with the engine.
package scene

import "math"

// Vec3 is an [x, y, z] triple. It marshals as a JSON array, matching the wire
// format the engine sends for positions, rotations, scales, and colors.
type Vec3 [3]float64

// Add returns v + w componentwise.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Scale returns v with every component multiplied by f.
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v[0] * f, v[1] * f, v[2] * f}
}

// Distance returns the Euclidean distance between v and w.
func (v Vec3) Distance(w Vec3) float64 {
	dx := v[0] - w[0]
	dy := v[1] - w[1]
	dz := v[2] - w[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Object is one placeable thing in the scene (chair, table, cube, ...).
// Name is the unique key within its category.
type Object struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Position Vec3   `json:"position"`
	Rotation Vec3   `json:"rotation"`
	Scale    Vec3   `json:"scale"`
}

// Light is a light source. Intensity is >= 0; Color components are in [0, 1].
type Light struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Position  Vec3    `json:"position"`
	Intensity float64 `json:"intensity"`
	Color     Vec3    `json:"color"`
}

// Camera is a viewpoint. FOV is in degrees.
type Camera struct {
	Name     string  `json:"name"`
	Position Vec3    `json:"position"`
	LookAt   Vec3    `json:"look_at"`
	FOV      float64 `json:"fov"`
}

// Snapshot is the full scene state at one instant. Names are unique per
// category and never empty.
type Snapshot struct {
	Objects  map[string]Object `json:"objects"`
	Lights   map[string]Light  `json:"lights"`
	Cameras  map[string]Camera `json:"cameras"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewSnapshot returns an empty snapshot with all category maps allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Objects:  make(map[string]Object),
		Lights:   make(map[string]Light),
		Cameras:  make(map[string]Camera),
		Metadata: make(map[string]string),
	}
}

// Delta is a scene update from the engine. A nil category slice means "leave
// that category untouched"; a non-nil slice replaces the category wholesale.
type Delta struct {
	Objects   []Object `json:"objects"`
	Lights    []Light  `json:"lights"`
	Cameras   []Camera `json:"cameras"`
	Timestamp float64  `json:"timestamp"`
}
