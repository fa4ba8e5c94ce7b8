// Package config loads the host configuration, including the operator
// policies applied before stores are created or placed. The policies are
// pre-engine validation; the engine itself never consults them.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tradepost.gg/internal/market/geom"
)

type Config struct {
	Listen  string `yaml:"listen"`
	DataDir string `yaml:"data_dir"`

	Policy Policy `yaml:"policy"`
}

// Policy bounds what operators allow shops to look like. Zero limits mean
// "no limit" after Normalize fills the defaults.
type Policy struct {
	MinEdge           int `yaml:"min_edge"`
	MaxEdge           int `yaml:"max_edge"`
	MinVolume         int `yaml:"min_volume"`
	MaxVolume         int `yaml:"max_volume"`
	MaxStoresPerOwner int `yaml:"max_stores_per_owner"`

	OffLimits []RegionSpec `yaml:"off_limits,omitempty"`
}

// RegionSpec is an off-limits cuboid in the config file.
type RegionSpec struct {
	WorldID string `yaml:"world_id"`
	A       [3]int `yaml:"a"`
	B       [3]int `yaml:"b"`
}

func (r RegionSpec) cuboid() geom.Cuboid {
	return geom.New(r.WorldID,
		geom.Vec3i{X: r.A[0], Y: r.A[1], Z: r.A[2]},
		geom.Vec3i{X: r.B[0], Y: r.B[1], Z: r.B[2]})
}

func defaults() Config {
	return Config{
		Listen:  ":8080",
		DataDir: "./data",
		Policy: Policy{
			MinEdge:           1,
			MaxEdge:           64,
			MinVolume:         1,
			MaxVolume:         64 * 64 * 64,
			MaxStoresPerOwner: 8,
		},
	}
}

// Load reads path, or returns defaults when path is empty.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("shops.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) Normalize() {
	if strings.TrimSpace(c.Listen) == "" {
		c.Listen = ":8080"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./data"
	}
	if c.Policy.MinEdge <= 0 {
		c.Policy.MinEdge = 1
	}
	if c.Policy.MinVolume <= 0 {
		c.Policy.MinVolume = 1
	}
}

func (c *Config) Validate() error {
	p := c.Policy
	if p.MaxEdge > 0 && p.MaxEdge < p.MinEdge {
		return fmt.Errorf("policy: max_edge %d below min_edge %d", p.MaxEdge, p.MinEdge)
	}
	if p.MaxVolume > 0 && p.MaxVolume < p.MinVolume {
		return fmt.Errorf("policy: max_volume %d below min_volume %d", p.MaxVolume, p.MinVolume)
	}
	if p.MaxStoresPerOwner < 0 {
		return fmt.Errorf("policy: max_stores_per_owner must not be negative")
	}
	for i, r := range p.OffLimits {
		if strings.TrimSpace(r.WorldID) == "" {
			return fmt.Errorf("policy: off_limits[%d] missing world_id", i)
		}
	}
	return nil
}

// CheckVolume validates a proposed shop volume against the dimension and
// placement policies.
func (p Policy) CheckVolume(c geom.Cuboid) error {
	dx, dy, dz := c.EdgeLengths()
	for _, edge := range []int{dx, dy, dz} {
		if edge < p.MinEdge {
			return fmt.Errorf("edge %d below minimum %d", edge, p.MinEdge)
		}
		if p.MaxEdge > 0 && edge > p.MaxEdge {
			return fmt.Errorf("edge %d above maximum %d", edge, p.MaxEdge)
		}
	}
	if v := c.Volume(); v < p.MinVolume {
		return fmt.Errorf("volume %d below minimum %d", v, p.MinVolume)
	} else if p.MaxVolume > 0 && v > p.MaxVolume {
		return fmt.Errorf("volume %d above maximum %d", v, p.MaxVolume)
	}
	for _, r := range p.OffLimits {
		zone := r.cuboid()
		if zone.WorldID != c.WorldID {
			continue
		}
		if overlaps(zone, c) {
			return fmt.Errorf("volume overlaps off-limits zone in %s", zone.WorldID)
		}
	}
	return nil
}

// CheckOwnerQuota validates creating one more store for an owner who
// already owns owned stores.
func (p Policy) CheckOwnerQuota(owned int) error {
	if p.MaxStoresPerOwner > 0 && owned >= p.MaxStoresPerOwner {
		return fmt.Errorf("owner already has %d of %d allowed stores", owned, p.MaxStoresPerOwner)
	}
	return nil
}

func overlaps(a, b geom.Cuboid) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}
