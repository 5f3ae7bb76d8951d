package state

import "sort"

// Categories returns the sorted distinct categories currently in the store.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := make(map[string]struct{})
	for _, q := range s.quotes {
		set[q.Category] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
