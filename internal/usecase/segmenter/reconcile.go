package segmenter

import (
	"math"

	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pattern"
)

const tieEpsilon = 1e-6

// reconcile walks the segments left to right once, merging short segments
// into a neighbour and splitting long ones. A merged segment may be examined
// again at most MaxRevisits times.
func (s *Segmenter) reconcile(p *plan, ms measure, marks []pattern.Marks, utts []entities.Utterance) {
	set := s.settings
	revisits := make(map[int]int)

	for k := 0; k < p.segmentCount(); {
		from, to := p.bounds(k)
		d := ms.span(from, to)

		switch {
		case d < set.MinSeconds:
			merged, ok := s.merge(p, ms, utts, k)
			if !ok {
				k++
				continue
			}
			start, _ := p.bounds(merged)
			if revisits[start] < set.MaxRevisits {
				revisits[start]++
				k = merged
				continue
			}
			k = merged + 1

		case d > set.MaxSeconds && to-from > 1:
			at, evidence := s.splitPoint(ms, marks, from, to)
			p.add(at, priorityDuration, evidence...)
			if s.logger != nil {
				s.logger.Debug("split over-long segment",
					zap.Int("from", from), zap.Int("to", to), zap.Int("at", at), zap.Float64("duration", d))
			}
			k++

		default:
			k++
		}
	}
}

// merge removes the boundary on the side of segment k that brings the merged
// duration closest to target without exceeding max or crossing a narrator
// boundary. It returns the index of the merged segment.
func (s *Segmenter) merge(p *plan, ms measure, utts []entities.Utterance, k int) (int, bool) {
	from, to := p.bounds(k)

	type option struct {
		k         int // segment whose opening boundary is removed
		merged    int // index of the resulting segment
		deviation float64
		a, b      [2]int
	}
	var options []option

	if b, ok := p.opening(k); ok && b.priority != priorityNarrator {
		prevFrom, _ := p.bounds(k - 1)
		if d := ms.span(prevFrom, to); d <= s.settings.MaxSeconds {
			options = append(options, option{k: k, merged: k - 1, deviation: math.Abs(d - s.settings.TargetSeconds),
				a: [2]int{prevFrom, from}, b: [2]int{from, to}})
		}
	}
	if b, ok := p.opening(k + 1); ok && b.priority != priorityNarrator {
		_, nextTo := p.bounds(k + 1)
		if d := ms.span(from, nextTo); d <= s.settings.MaxSeconds {
			options = append(options, option{k: k + 1, merged: k, deviation: math.Abs(d - s.settings.TargetSeconds),
				a: [2]int{from, to}, b: [2]int{to, nextTo}})
		}
	}
	if len(options) == 0 {
		return 0, false
	}

	best := options[0]
	if len(options) == 2 {
		prev, next := options[0], options[1]
		switch {
		case prev.deviation < next.deviation-tieEpsilon:
			best = prev
		case next.deviation < prev.deviation-tieEpsilon:
			best = next
		default:
			best = next
			if s.overlap(utts, prev.a, prev.b) > s.overlap(utts, next.a, next.b) {
				best = prev
			}
		}
	}

	p.remove(best.k)
	if s.logger != nil {
		s.logger.Debug("merged short segment", zap.Int("segment", k), zap.Int("into", best.merged))
	}
	return best.merged, true
}

// overlap counts resolved speaker names shared by two adjacent runs
func (s *Segmenter) overlap(utts []entities.Utterance, a, b [2]int) int {
	if s.continuity == nil {
		return 0
	}
	left := s.continuity.DominantSpeakers(utts[a[0]:a[1]])
	right := s.continuity.DominantSpeakers(utts[b[0]:b[1]])
	seen := make(map[string]bool, len(left))
	for _, n := range left {
		seen[n] = true
	}
	shared := 0
	for _, n := range right {
		if seen[n] {
			shared++
			seen[n] = false
		}
	}
	return shared
}

// splitPoint picks where to cut utts[from:to]. A closing utterance followed
// directly by an opening one is preferred; otherwise the utterance boundary
// whose cumulative duration is closest to target wins. Ties go to the earlier
// position.
func (s *Segmenter) splitPoint(ms measure, marks []pattern.Marks, from, to int) (int, []entities.BoundaryEvidence) {
	target := s.settings.TargetSeconds

	pick := func(accept func(q int) bool) int {
		best, bestDev := -1, math.Inf(1)
		for q := from + 1; q < to; q++ {
			if !accept(q) {
				continue
			}
			dev := math.Abs(ms.span(from, q) - target)
			if dev < bestDev-tieEpsilon {
				best, bestDev = q, dev
			}
		}
		return best
	}

	if q := pick(func(q int) bool {
		return marks[q-1].Has(pattern.KindClosing) && marks[q].Has(pattern.KindIntro)
	}); q > 0 {
		return q, []entities.BoundaryEvidence{entities.EvidenceDurationForced, entities.EvidencePatternMarker}
	}
	return pick(func(int) bool { return true }), []entities.BoundaryEvidence{entities.EvidenceDurationForced}
}
