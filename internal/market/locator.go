package market

import "tradepost.gg/internal/market/geom"

// Locate resolves the store relevant to a position: the first registered
// store (in creation order) whose volume contains the position in that
// world, falling back to the default-store chain for the world. First match
// wins, so overlapping volumes resolve deterministically by creation order;
// overlaps are an operator configuration error, not a case the engine
// arbitrates further.
func (r *Registry) Locate(worldID string, pos geom.Vec3i) *Store {
	r.mu.RLock()
	for _, s := range r.stores {
		if v := s.Volume(); v != nil && v.Contains(worldID, pos) {
			r.mu.RUnlock()
			return s
		}
	}
	r.mu.RUnlock()
	return r.ResolveDefault(WorldOf(worldID))
}
