package config

import (
	"os"
	"path/filepath"
	"testing"

	"tradepost.gg/internal/market/geom"
)

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.DataDir != "./data" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Policy.MinEdge != 1 || cfg.Policy.MaxStoresPerOwner != 8 {
		t.Fatalf("policy defaults: %+v", cfg.Policy)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shops.yaml")
	data := `
listen: ":9090"
policy:
  max_edge: 32
  max_stores_per_owner: 2
  off_limits:
    - world_id: overworld
      a: [0, 0, 0]
      b: [15, 255, 15]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":9090" || cfg.Policy.MaxEdge != 32 {
		t.Fatalf("got %+v", cfg)
	}
	if len(cfg.Policy.OffLimits) != 1 {
		t.Fatalf("off limits: %+v", cfg.Policy.OffLimits)
	}
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	cfg := defaults()
	cfg.Policy.MinEdge = 10
	cfg.Policy.MaxEdge = 5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected inverted edges rejected")
	}
}

func TestCheckVolume(t *testing.T) {
	p := Policy{MinEdge: 2, MaxEdge: 10, MinVolume: 8, MaxVolume: 500}

	ok := geom.New("overworld", geom.Vec3i{}, geom.Vec3i{X: 4, Y: 4, Z: 4})
	if err := p.CheckVolume(ok); err != nil {
		t.Fatalf("expected accepted: %v", err)
	}
	thin := geom.New("overworld", geom.Vec3i{}, geom.Vec3i{X: 0, Y: 4, Z: 4})
	if err := p.CheckVolume(thin); err == nil {
		t.Fatalf("expected thin volume rejected")
	}
	long := geom.New("overworld", geom.Vec3i{}, geom.Vec3i{X: 20, Y: 2, Z: 2})
	if err := p.CheckVolume(long); err == nil {
		t.Fatalf("expected long edge rejected")
	}
	big := geom.New("overworld", geom.Vec3i{}, geom.Vec3i{X: 9, Y: 9, Z: 9})
	if err := p.CheckVolume(big); err == nil {
		t.Fatalf("expected oversize volume rejected")
	}
}

func TestCheckVolumeOffLimits(t *testing.T) {
	p := Policy{
		MinEdge: 1, MinVolume: 1,
		OffLimits: []RegionSpec{{WorldID: "overworld", A: [3]int{0, 0, 0}, B: [3]int{15, 255, 15}}},
	}
	inside := geom.New("overworld", geom.Vec3i{X: 10, Y: 60, Z: 10}, geom.Vec3i{X: 20, Y: 70, Z: 20})
	if err := p.CheckVolume(inside); err == nil {
		t.Fatalf("expected overlap with off-limits zone rejected")
	}
	elsewhere := geom.New("overworld", geom.Vec3i{X: 100, Y: 60, Z: 100}, geom.Vec3i{X: 110, Y: 70, Z: 110})
	if err := p.CheckVolume(elsewhere); err != nil {
		t.Fatalf("expected clear placement accepted: %v", err)
	}
	otherWorld := geom.New("nether", geom.Vec3i{X: 10, Y: 60, Z: 10}, geom.Vec3i{X: 20, Y: 70, Z: 20})
	if err := p.CheckVolume(otherWorld); err != nil {
		t.Fatalf("zones bind per world: %v", err)
	}
}

func TestCheckOwnerQuota(t *testing.T) {
	p := Policy{MaxStoresPerOwner: 2}
	if err := p.CheckOwnerQuota(1); err != nil {
		t.Fatalf("expected under quota accepted: %v", err)
	}
	if err := p.CheckOwnerQuota(2); err == nil {
		t.Fatalf("expected at quota rejected")
	}
	unlimited := Policy{}
	if err := unlimited.CheckOwnerQuota(100); err != nil {
		t.Fatalf("zero limit means unlimited: %v", err)
	}
}
