package terrain

import "sort"

// link records that two placed roads meet. Links are symmetric.
func (t *Terrain) link(a, b int) {
	if t.links == nil {
		t.links = make(map[int]map[int]bool)
	}
	for _, pair := range [][2]int{{a, b}, {b, a}} {
		if t.links[pair[0]] == nil {
			t.links[pair[0]] = make(map[int]bool)
		}
		t.links[pair[0]][pair[1]] = true
	}
}

// Connectivity maps every placed road ID to the sorted IDs of the roads
// it crosses. Roads that cross nothing map to an empty slice.
func (t *Terrain) Connectivity() map[int][]int {
	out := make(map[int][]int, len(t.placed))
	for _, id := range t.placed {
		ids := make([]int, 0, len(t.links[id]))
		for n := range t.links[id] {
			ids = append(ids, n)
		}
		sort.Ints(ids)
		out[id] = ids
	}
	return out
}

// RoadComponents counts the connected groups of placed roads. A single
// connected network is 1; no roads is 0.
func (t *Terrain) RoadComponents() int {
	seen := make(map[int]bool, len(t.placed))
	n := 0
	for _, start := range t.placed {
		if seen[start] {
			continue
		}
		n++
		seen[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for next := range t.links[id] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return n
}
