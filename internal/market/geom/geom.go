// Package geom holds the axis-aligned volume type used to bind shops to a
// region of a world.
package geom

type Vec3i struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (v Vec3i) ToArray() [3]int { return [3]int{v.X, v.Y, v.Z} }

// Cuboid is an inclusive axis-aligned box inside one concrete world. Min and
// Max are normalized at construction; a Cuboid never has an empty world id
// (shops without a footprint carry a nil *Cuboid instead).
type Cuboid struct {
	WorldID string `json:"world_id"`
	Min     Vec3i  `json:"min"`
	Max     Vec3i  `json:"max"`
}

// New builds a cuboid from two opposite corners, in any order.
func New(worldID string, a, b Vec3i) Cuboid {
	return Cuboid{
		WorldID: worldID,
		Min:     Vec3i{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max:     Vec3i{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// Normalize returns a copy with Min/Max reordered axis-wise. Cuboids loaded
// from persisted records go through this before use.
func (c Cuboid) Normalize() Cuboid {
	return New(c.WorldID, c.Min, c.Max)
}

// Contains reports whether pos in the given world lies within the cuboid,
// bounds inclusive on all three axes. Worlds compare by id.
func (c Cuboid) Contains(worldID string, pos Vec3i) bool {
	if c.WorldID == "" || c.WorldID != worldID {
		return false
	}
	return pos.X >= c.Min.X && pos.X <= c.Max.X &&
		pos.Y >= c.Min.Y && pos.Y <= c.Max.Y &&
		pos.Z >= c.Min.Z && pos.Z <= c.Max.Z
}

// Volume is the number of blocks enclosed, bounds inclusive.
func (c Cuboid) Volume() int {
	return (c.Max.X - c.Min.X + 1) * (c.Max.Y - c.Min.Y + 1) * (c.Max.Z - c.Min.Z + 1)
}

// EdgeLengths returns the inclusive extent along each axis.
func (c Cuboid) EdgeLengths() (dx, dy, dz int) {
	return c.Max.X - c.Min.X + 1, c.Max.Y - c.Min.Y + 1, c.Max.Z - c.Min.Z + 1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
