package segmenter

import (
	"sort"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
)

// boundary priorities, lower wins
const (
	priorityNarrator = iota + 1
	priorityPattern
	priorityDuration
	priorityFallback
)

// boundary starts a new segment at index (always > 0)
type boundary struct {
	index    int
	priority int
	evidence entities.EvidenceSet
}

// plan is the candidate boundary set, kept sorted by index
type plan struct {
	n     int
	bs    []boundary
	found int
}

func newPlan(n int) *plan {
	return &plan{n: n}
}

// add inserts a boundary at index unless one is already present there
func (p *plan) add(index, priority int, evidence ...entities.BoundaryEvidence) bool {
	if index <= 0 || index >= p.n {
		return false
	}
	i := sort.Search(len(p.bs), func(i int) bool { return p.bs[i].index >= index })
	if i < len(p.bs) && p.bs[i].index == index {
		return false
	}
	var set entities.EvidenceSet
	for _, e := range evidence {
		set = set.With(e)
	}
	p.bs = append(p.bs, boundary{})
	copy(p.bs[i+1:], p.bs[i:])
	p.bs[i] = boundary{index: index, priority: priority, evidence: set}
	p.found++
	return true
}

// remove drops the boundary that opens segment k (k >= 1)
func (p *plan) remove(k int) {
	p.bs = append(p.bs[:k-1], p.bs[k:]...)
}

// narratorWithin reports whether a narrator boundary lies in [from, to]
func (p *plan) narratorWithin(from, to int) bool {
	for _, b := range p.bs {
		if b.index >= from && b.index <= to && b.priority == priorityNarrator {
			return true
		}
	}
	return false
}

func (p *plan) segmentCount() int {
	return len(p.bs) + 1
}

// bounds returns the half-open utterance range of segment k
func (p *plan) bounds(k int) (int, int) {
	from, to := 0, p.n
	if k > 0 {
		from = p.bs[k-1].index
	}
	if k < len(p.bs) {
		to = p.bs[k].index
	}
	return from, to
}

// opening returns the boundary that opens segment k; ok is false for k == 0
func (p *plan) opening(k int) (boundary, bool) {
	if k == 0 || k > len(p.bs) {
		return boundary{}, false
	}
	return p.bs[k-1], true
}
