package report

import (
	"sort"

	"alumnipulse/pkg/contracts/domain"
)

// counter accumulates label counts while remembering first-seen order, so
// descending-count sorts break ties by discovery order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) Add(label string) {
	if _, seen := c.counts[label]; !seen {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// Descending returns the counted labels as a Distribution sorted by
// descending count, ties broken by discovery order.
func (c *counter) Descending() domain.Distribution {
	dist := make(domain.Distribution, 0, len(c.order))
	for _, label := range c.order {
		dist = append(dist, domain.DistributionEntry{Label: label, Count: c.counts[label]})
	}
	sort.SliceStable(dist, func(i, j int) bool {
		return dist[i].Count > dist[j].Count
	})
	return dist
}

// sortDescendingStable orders a distribution by descending count in place,
// keeping the existing order among equal counts.
func sortDescendingStable(dist domain.Distribution) {
	sort.SliceStable(dist, func(i, j int) bool {
		return dist[i].Count > dist[j].Count
	})
}

// topK truncates a distribution to its first k entries; k <= 0 keeps all.
func topK(dist domain.Distribution, k int) domain.Distribution {
	if k > 0 && len(dist) > k {
		return dist[:k]
	}
	return dist
}
