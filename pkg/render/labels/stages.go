package labels

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/cgmap/pkg/geom"
)

// quota is stage 1. When there are more candidates than MaxLabels it drops
// non-forced candidates that clash with a later one, then trims from the
// end until the cap holds. Forced candidates survive even if they alone
// exceed the cap.
func (e *Engine) quota(cs []Candidate, rng *rand.Rand) []Candidate {
	limit := e.cfg.MaxLabels
	if limit <= 0 || len(cs) <= limit {
		return cs
	}
	if e.cfg.RandomizeQuota {
		rng.Shuffle(len(cs), func(i, j int) { cs[i], cs[j] = cs[j], cs[i] })
	}
	alive := make([]bool, len(cs))
	for i := range alive {
		alive[i] = true
	}
	count := len(cs)
	for i := range cs {
		if count <= limit {
			break
		}
		if cs[i].Forced {
			continue
		}
		for j := i + 1; j < len(cs); j++ {
			if clash(&cs[i], &cs[j], padQuota) {
				alive[i] = false
				count--
				break
			}
		}
	}
	for i := len(cs) - 1; i >= 0 && count > limit; i-- {
		if alive[i] && !cs[i].Forced {
			alive[i] = false
			count--
		}
	}
	out := cs[:0:0]
	for i, c := range cs {
		if alive[i] {
			out = append(out, c)
		}
	}
	return out
}

// sortAngular is stage 2: order by anchor angle, reading clockwise from
// seam.
func sortAngular(cs []Candidate, seam float64) {
	slices.SortStableFunc(cs, func(a, b Candidate) int {
		ka := geom.NormalizeAngle(a.Anchor - seam)
		kb := geom.NormalizeAngle(b.Anchor - seam)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
}

// wrapsSeam reports whether the last and first candidates of a sorted run
// are neighbours across the seam, which is when the clockwise gap from
// last to first is the shorter way round.
func wrapsSeam(cs []Candidate) bool {
	if len(cs) < 3 {
		return false
	}
	gap := geom.NormalizeAngle(cs[0].Angle - cs[len(cs)-1].Angle)
	return gap <= math.Pi
}

// relax is stage 3. Each pass walks adjacent pairs and pushes clashing
// neighbours apart, the earlier one back and the later one forward. It
// stops after a clean pass or when the iteration budget is spent.
func (e *Engine) relax(cs []Candidate, g Geometry) {
	n := len(cs)
	if n < 2 {
		return
	}
	seam := wrapsSeam(cs)
	for range e.params.iterations {
		moved := false
		for i := range n {
			j := i + 1
			if j == n {
				if !seam {
					break
				}
				j = 0
			}
			a, b := &cs[i], &cs[j]
			if !clash(a, b, padRelax) {
				continue
			}
			a.Angle -= e.stepAt(a.Radius)
			b.Angle += e.stepAt(b.Radius)
			a.Place(g.Centre)
			b.Place(g.Centre)
			moved = true
		}
		if !moved {
			return
		}
	}
}

func (e *Engine) stepAt(r float64) float64 {
	if r <= 0 {
		return 0
	}
	return e.params.step / r
}

// extend is stage 4. A non-forced label that clashes with a live
// neighbour within the quality span first has its leader line lengthened;
// once the extension budget is spent it is converted to the outer side or
// dropped.
func (e *Engine) extend(cs []Candidate, alive []bool, g Geometry) (converted []Candidate) {
	span := e.params.span
	for i := range cs {
		c := &cs[i]
		if !alive[i] || c.Forced {
			continue
		}
		startRadius := c.Radius
		for grown := 0.0; ; grown += e.cfg.ExtensionStep {
			if !e.clashesNearby(cs, alive, i, span) {
				break
			}
			// Inner labels stop at the centre: a negative radius would put
			// them on the far side of the map.
			room := grown+e.cfg.ExtensionStep <= e.cfg.MaxExtension
			if c.Side == Inner && c.Radius <= 0 {
				room = false
			}
			if room {
				if c.Side == Inner {
					c.Radius = max(c.Radius-e.cfg.ExtensionStep, 0)
				} else {
					c.Radius += e.cfg.ExtensionStep
				}
				c.Place(g.Centre)
				continue
			}
			c.Radius = startRadius
			alive[i] = false
			if e.convertible(c) {
				c.convert(g.OuterRadius, g.Centre)
				converted = append(converted, *c)
			}
			break
		}
	}
	return converted
}

func (e *Engine) clashesNearby(cs []Candidate, alive []bool, i, span int) bool {
	n := len(cs)
	if 2*span+1 >= n {
		for k := range cs {
			if k != i && alive[k] && clash(&cs[i], &cs[k], padExtend) {
				return true
			}
		}
		return false
	}
	for d := -span; d <= span; d++ {
		if d == 0 {
			continue
		}
		k := ((i+d)%n + n) % n
		if alive[k] && clash(&cs[i], &cs[k], padExtend) {
			return true
		}
	}
	return false
}

func (e *Engine) convertible(c *Candidate) bool {
	return e.cfg.ConvertInner && c.Side == Inner
}

// residual is stage 5: a shuffled all-pairs scan. Of a clashing pair the
// non-forced member goes; between two non-forced labels the later one in
// shuffled order goes. Two forced labels are left alone.
func (e *Engine) residual(cs []Candidate, alive []bool, g Geometry, rng *rand.Rand) (converted []Candidate) {
	order := make([]int, 0, len(cs))
	for i := range cs {
		if alive[i] {
			order = append(order, i)
		}
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for x, i := range order {
		for _, j := range order[x+1:] {
			if !alive[i] {
				break
			}
			if !alive[j] || !clash(&cs[i], &cs[j], padResidual) {
				continue
			}
			victim := j
			switch {
			case cs[i].Forced && cs[j].Forced:
				continue
			case cs[j].Forced:
				victim = i
			}
			alive[victim] = false
			if e.convertible(&cs[victim]) {
				c := cs[victim]
				c.convert(g.OuterRadius, g.Centre)
				converted = append(converted, c)
			}
		}
	}
	return converted
}

// structural is stage 6. Non-forced labels that leave the canvas, cross
// into the rings, or cover a reserved box are converted or dropped. A
// converted label is kept only if it is clear of everything kept so far.
func (e *Engine) structural(cs []Candidate, g Geometry) []Candidate {
	kept := make([]Candidate, 0, len(cs))
	var retry []Candidate
	for _, c := range cs {
		if c.Forced || fits(&c, g) {
			kept = append(kept, c)
			continue
		}
		if e.convertible(&c) {
			c.convert(g.OuterRadius, g.Centre)
			retry = append(retry, c)
		}
	}
	for _, c := range retry {
		if !fits(&c, g) {
			continue
		}
		free := true
		for k := range kept {
			if clash(&c, &kept[k], 0) {
				free = false
				break
			}
		}
		if free {
			kept = append(kept, c)
		}
	}
	return kept
}

func fits(c *Candidate, g Geometry) bool {
	if !c.Box.Within(g.Canvas) {
		return false
	}
	switch c.Side {
	case Outer:
		if c.Box.NearestDist(g.Centre) < g.OuterEdge {
			return false
		}
	case Inner:
		if c.Box.FarthestDist(g.Centre) > g.InnerEdge {
			return false
		}
	}
	for _, r := range g.Reserved {
		if c.Box.Overlaps(r) {
			return false
		}
	}
	return true
}

// drawOrder is stage 7: forced labels last so they draw on top.
func drawOrder(cs []Candidate) []Candidate {
	slices.SortStableFunc(cs, func(a, b Candidate) int {
		switch {
		case a.Forced == b.Forced:
			return 0
		case b.Forced:
			return -1
		}
		return 1
	})
	return cs
}
