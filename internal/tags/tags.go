// Package tags joins tag rows with entity/tag pair rows into per-entity
// name lists for the search and detail endpoints.
package tags

import "ngolib/pkg/types"

// Index maps entity ids to the names of the tags paired with them.
type Index map[int64][]string

// Aggregate builds an Index from the tag vocabulary and the pair rows. Names
// keep the order the pairs arrive in. Pairs pointing at an unknown tag id are
// dropped.
func Aggregate(all []*types.Tag, pairs []*types.TagPair) Index {
	names := make(map[int64]string, len(all))
	for _, t := range all {
		names[t.ID] = t.Tag
	}

	idx := make(Index)
	for _, p := range pairs {
		name, ok := names[p.TagID]
		if !ok {
			continue
		}
		idx[p.EntityID] = append(idx[p.EntityID], name)
	}

	return idx
}

// For returns the tag names of an entity, or an empty slice when it has none.
func (idx Index) For(entityID int64) []string {
	if names, ok := idx[entityID]; ok {
		return names
	}
	return []string{}
}

func Names(all []*types.Tag) []string {
	out := make([]string, 0, len(all))
	for _, t := range all {
		out = append(out, t.Tag)
	}
	return out
}

// ApplyNGOs fills the Tags field of every NGO from the index.
func (idx Index) ApplyNGOs(ngos []*types.NGO) {
	for _, n := range ngos {
		n.Tags = idx.For(n.ID)
	}
}

func (idx Index) ApplyOpportunities(opps []*types.Opportunity) {
	for _, o := range opps {
		o.Tags = idx.For(o.ID)
	}
}

// IDs resolves tag names to ids, reporting names that are not in the
// vocabulary separately.
func IDs(all []*types.Tag, names []string) (ids []int64, unknown []string) {
	byName := make(map[string]int64, len(all))
	for _, t := range all {
		byName[t.Tag] = t.ID
	}

	seen := make(map[int64]bool, len(names))
	for _, n := range names {
		id, ok := byName[n]
		if !ok {
			unknown = append(unknown, n)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids, unknown
}
