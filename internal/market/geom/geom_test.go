package geom

import "testing"

func TestNewNormalizesCorners(t *testing.T) {
	c := New("world_1", Vec3i{X: 10, Y: 5, Z: -3}, Vec3i{X: -2, Y: 8, Z: 4})
	want := Cuboid{WorldID: "world_1", Min: Vec3i{X: -2, Y: 5, Z: -3}, Max: Vec3i{X: 10, Y: 8, Z: 4}}
	if c != want {
		t.Fatalf("normalize: got %+v want %+v", c, want)
	}
}

func TestContainsInclusiveBounds(t *testing.T) {
	c := New("world_1", Vec3i{X: 0, Y: 0, Z: 0}, Vec3i{X: 4, Y: 4, Z: 4})
	if !c.Contains("world_1", c.Min) {
		t.Fatalf("expected min corner inside")
	}
	if !c.Contains("world_1", c.Max) {
		t.Fatalf("expected max corner inside")
	}
	outside := []Vec3i{
		{X: -1, Y: 0, Z: 0},
		{X: 5, Y: 0, Z: 0},
		{X: 0, Y: -1, Z: 0},
		{X: 0, Y: 5, Z: 0},
		{X: 0, Y: 0, Z: -1},
		{X: 0, Y: 0, Z: 5},
	}
	for _, p := range outside {
		if c.Contains("world_1", p) {
			t.Fatalf("expected %+v outside", p)
		}
	}
}

func TestContainsWorldMismatch(t *testing.T) {
	c := New("world_1", Vec3i{}, Vec3i{X: 4, Y: 4, Z: 4})
	if c.Contains("world_2", Vec3i{X: 2, Y: 2, Z: 2}) {
		t.Fatalf("expected mismatching world to exclude in-range position")
	}
	empty := Cuboid{Min: Vec3i{}, Max: Vec3i{X: 4, Y: 4, Z: 4}}
	if empty.Contains("", Vec3i{X: 2, Y: 2, Z: 2}) {
		t.Fatalf("expected cuboid without a world to contain nothing")
	}
}

func TestVolumeAndEdges(t *testing.T) {
	c := New("world_1", Vec3i{}, Vec3i{X: 1, Y: 2, Z: 3})
	if got := c.Volume(); got != 2*3*4 {
		t.Fatalf("volume: got %d want %d", got, 2*3*4)
	}
	dx, dy, dz := c.EdgeLengths()
	if dx != 2 || dy != 3 || dz != 4 {
		t.Fatalf("edges: got %d,%d,%d", dx, dy, dz)
	}
}
