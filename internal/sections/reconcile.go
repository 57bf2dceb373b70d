package sections

import "github.com/jonathan/ats-optimizer/internal/types"

// Report describes what a reconciliation did.
type Report struct {
	// Updated lists store ids whose content or title changed, in store order.
	Updated []string
	// Missing lists store ids the candidate set did not mention, in store order.
	Missing []string
	// Ignored lists candidate ids unknown to the store, in candidate order.
	Ignored []string
}

// Partial reports whether some store sections were left untouched because the
// candidate set did not include them.
func (r Report) Partial() bool {
	return len(r.Missing) > 0
}

// Reconcile merges candidates into current without changing identity, order or baselines.
//
// For every current section with a matching candidate id, Content is replaced and
// Title is replaced when the candidate provides one. Current sections without a
// candidate are kept as-is; candidates with unknown ids are dropped. OriginalContent
// is never modified. The input slices are not mutated.
func Reconcile(current, candidates []types.Section) ([]types.Section, Report) {
	index := make(map[string]types.Section, len(candidates))
	known := make(map[string]bool, len(current))
	for _, s := range current {
		known[s.ID] = true
	}

	var report Report
	for _, c := range candidates {
		if !known[c.ID] {
			report.Ignored = append(report.Ignored, c.ID)
			continue
		}
		// Last candidate for a duplicated id wins.
		index[c.ID] = c
	}

	out := make([]types.Section, len(current))
	for i, s := range current {
		out[i] = s
		c, ok := index[s.ID]
		if !ok {
			report.Missing = append(report.Missing, s.ID)
			continue
		}
		changed := false
		if c.Content != s.Content {
			out[i].Content = c.Content
			changed = true
		}
		if c.Title != "" && c.Title != s.Title {
			out[i].Title = c.Title
			changed = true
		}
		if changed {
			report.Updated = append(report.Updated, s.ID)
		}
	}
	return out, report
}

// ContentMap converts an id→content mapping into candidate sections, ordered by
// the reference set so reconciliation output stays deterministic.
func ContentMap(reference []types.Section, contents map[string]string) []types.Section {
	candidates := make([]types.Section, 0, len(contents))
	seen := make(map[string]bool, len(contents))
	for _, s := range reference {
		if content, ok := contents[s.ID]; ok {
			candidates = append(candidates, types.Section{ID: s.ID, Content: content})
			seen[s.ID] = true
		}
	}
	for id, content := range contents {
		if !seen[id] {
			candidates = append(candidates, types.Section{ID: id, Content: content})
		}
	}
	return candidates
}
