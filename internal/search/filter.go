package search

import (
	"slices"
	"sort"

	"ngolib/pkg/types"
)

// Item is anything shown as a search card.
type Item interface {
	TagList() []string
	// Verification reports the verified flag and whether the item has one at
	// all. Items without the flag are always shown.
	Verification() (verified, present bool)
}

type ngoItem struct{ *types.NGO }

func (n ngoItem) TagList() []string { return n.Tags }

func (n ngoItem) Verification() (bool, bool) { return bool(n.Verified), true }

type opportunityItem struct{ *types.Opportunity }

func (o opportunityItem) TagList() []string { return o.Tags }

func (o opportunityItem) Verification() (bool, bool) { return false, false }

func NGOItems(ngos []*types.NGO) []Item {
	out := make([]Item, 0, len(ngos))
	for _, n := range ngos {
		out = append(out, ngoItem{n})
	}
	return out
}

func OpportunityItems(opps []*types.Opportunity) []Item {
	out := make([]Item, 0, len(opps))
	for _, o := range opps {
		out = append(out, opportunityItem{o})
	}
	return out
}

// Filter keeps verified items (and items with no verified flag) that carry
// every selected tag.
func Filter[T Item](items []T, selected []string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if verified, present := it.Verification(); present && !verified {
			continue
		}
		if !hasAll(it.TagList(), selected) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func hasAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

// Paginate returns the items on page (1 based) and the number of pages. A
// page past the end yields an empty slice.
func Paginate[T any](items []T, page int) ([]T, int) {
	total := (len(items) + PageSize - 1) / PageSize
	if page < 1 {
		page = 1
	}

	start := (page - 1) * PageSize
	if start >= len(items) {
		return []T{}, total
	}

	end := min(start+PageSize, len(items))
	return items[start:end], total
}

// AvailableTags lists the tags not yet selected, shortest first. Tags of
// equal length keep their vocabulary order.
func AvailableTags(all, selected []string) []string {
	out := make([]string, 0, len(all))
	for _, t := range all {
		if !slices.Contains(selected, t) {
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i]) < len(out[j])
	})

	return out
}

// Result is the response of one search step.
type Result struct {
	Mode          Mode     `json:"mode"`
	SelectedTags  []string `json:"selectedTags"`
	CurrentPage   int      `json:"currentPage"`
	TotalPages    int      `json:"totalPages"`
	Items         []Item   `json:"items"`
	AvailableTags []string `json:"availableTags"`
}

// Run filters and pages items for the state.
func Run(state State, items []Item, vocabulary []string) *Result {
	filtered := Filter(items, state.SelectedTags)
	page, total := Paginate(filtered, state.CurrentPage)

	return &Result{
		Mode:          state.Mode,
		SelectedTags:  state.SelectedTags,
		CurrentPage:   state.CurrentPage,
		TotalPages:    total,
		Items:         page,
		AvailableTags: AvailableTags(vocabulary, state.SelectedTags),
	}
}
