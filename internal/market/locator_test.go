package market

import (
	"testing"

	"tradepost.gg/internal/market/geom"
)

func TestLocateFirstCreatedWinsOnOverlap(t *testing.T) {
	r := NewRegistry(nil)
	a := r.Create("A", "")
	b := r.Create("B", "")
	a.SetVolume(geom.New("overworld", geom.Vec3i{}, geom.Vec3i{X: 10, Y: 10, Z: 10}))
	b.SetVolume(geom.New("overworld", geom.Vec3i{X: 5, Y: 5, Z: 5}, geom.Vec3i{X: 20, Y: 20, Z: 20}))

	inside := geom.Vec3i{X: 7, Y: 7, Z: 7}
	if got := r.Locate("overworld", inside); got != a {
		t.Fatalf("overlap: got %v want first-created store", got)
	}
	onlyB := geom.Vec3i{X: 15, Y: 15, Z: 15}
	if got := r.Locate("overworld", onlyB); got != b {
		t.Fatalf("expected b, got %v", got)
	}
}

func TestLocateIgnoresOtherWorldsAndNoVolume(t *testing.T) {
	r := NewRegistry(nil)
	noVolume := r.Create("ghost", "")
	placed := r.Create("placed", "")
	placed.SetVolume(geom.New("nether", geom.Vec3i{}, geom.Vec3i{X: 4, Y: 4, Z: 4}))

	_ = noVolume
	if got := r.Locate("overworld", geom.Vec3i{X: 1, Y: 1, Z: 1}); got != nil {
		t.Fatalf("expected no store, got %v", got)
	}
	if got := r.Locate("nether", geom.Vec3i{X: 1, Y: 1, Z: 1}); got != placed {
		t.Fatalf("expected placed store, got %v", got)
	}
}

func TestLocateFallsBackToDefaults(t *testing.T) {
	r := NewRegistry(nil)
	def := r.Create("town hall", "")
	r.SetDefault(WorldOf("overworld"), def)

	if got := r.Locate("overworld", geom.Vec3i{X: 100, Y: 0, Z: 100}); got != def {
		t.Fatalf("expected per-world default, got %v", got)
	}
	if got := r.Locate("nether", geom.Vec3i{}); got != nil {
		t.Fatalf("expected nothing in world without default, got %v", got)
	}

	global := r.Create("hub", "")
	r.SetDefault(GlobalKey(), global)
	if got := r.Locate("nether", geom.Vec3i{}); got != global {
		t.Fatalf("expected global default, got %v", got)
	}

	// A containing volume still beats the default chain.
	placed := r.Create("corner shop", "")
	placed.SetVolume(geom.New("overworld", geom.Vec3i{}, geom.Vec3i{X: 2, Y: 2, Z: 2}))
	if got := r.Locate("overworld", geom.Vec3i{X: 1, Y: 1, Z: 1}); got != placed {
		t.Fatalf("expected geometric match over default, got %v", got)
	}
}
