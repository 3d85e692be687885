package labels

import (
	"io"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cgmap/pkg/geom"
)

// Config tunes the engine.
type Config struct {
	// Quality selects the effort table entry, 1-10; 0 means DefaultQuality.
	Quality int
	// Seed fixes the shuffles. Zero seeds from the clock.
	Seed uint64
	// MaxLabels caps the number of labels kept by stage 1; 0 is no cap.
	MaxLabels int
	// RandomizeQuota shuffles candidates before the quota scan so the
	// survivors are not biased toward the start of the sequence.
	RandomizeQuota bool
	// ConvertInner moves clashing inner labels to the outer side instead of
	// dropping them.
	ConvertInner bool
	// MaxExtension is how far, in pixels, a leader line may grow in stage
	// 4; ExtensionStep is the growth per attempt.
	MaxExtension  float64
	ExtensionStep float64
}

const (
	defaultMaxExtension  = 24.0
	defaultExtensionStep = 4.0
)

// Geometry describes the regions labels must respect.
type Geometry struct {
	Centre geom.Point
	Canvas geom.Rect

	// OuterEdge is the radius outer labels must stay outside of; InnerEdge
	// the radius inner labels must stay inside of.
	OuterEdge, InnerEdge float64
	// OuterRadius is the leader radius given to converted labels.
	OuterRadius float64

	// Reserved boxes (title, caption, ruler labels, legends) no label may
	// overlap.
	Reserved []geom.Rect

	// Seam is the angle at which the circular order is cut for sorting.
	// Zoomed views put it opposite the view centre.
	Seam float64
}

// Result is the outcome of a layout.
type Result struct {
	// Placed lists the surviving labels in draw order.
	Placed  []Candidate
	Dropped int
	Total   int
}

// Engine runs the label layout pipeline.
type Engine struct {
	cfg    Config
	params params
	logger *log.Logger
}

// NewEngine returns an engine for cfg. A nil logger discards output.
func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if cfg.MaxExtension <= 0 {
		cfg.MaxExtension = defaultMaxExtension
	}
	if cfg.ExtensionStep <= 0 {
		cfg.ExtensionStep = defaultExtensionStep
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{cfg: cfg, params: paramsFor(cfg.Quality), logger: logger}
}

// Layout places cands. The input slice is not modified.
func (e *Engine) Layout(cands []Candidate, g Geometry) Result {
	total := len(cands)
	if total == 0 {
		return Result{}
	}
	seed := e.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	work := slices.Clone(cands)
	for i := range work {
		work[i].Angle = work[i].Anchor
		work[i].Place(g.Centre)
	}

	work = e.quota(work, newRand(seed, 0))
	afterQuota := len(work)

	var inner, outer []Candidate
	for _, c := range work {
		if c.Side == Inner {
			inner = append(inner, c)
		} else {
			outer = append(outer, c)
		}
	}

	if e.cfg.ConvertInner {
		// Converted inner labels join the outer pass, so the sides run in
		// sequence.
		var converted []Candidate
		inner, converted = e.side(inner, g, newRand(seed, 1))
		outer, _ = e.side(append(outer, converted...), g, newRand(seed, 2))
	} else {
		var eg errgroup.Group
		eg.Go(func() error {
			inner, _ = e.side(inner, g, newRand(seed, 1))
			return nil
		})
		eg.Go(func() error {
			outer, _ = e.side(outer, g, newRand(seed, 2))
			return nil
		})
		// Side layout cannot fail.
		_ = eg.Wait()
	}

	placed := e.structural(append(inner, outer...), g)
	placed = drawOrder(placed)

	e.logger.Debug("label layout",
		"total", total, "after_quota", afterQuota, "placed", len(placed),
		"quality", e.cfg.Quality, "iterations", e.params.iterations)
	return Result{Placed: placed, Dropped: total - len(placed), Total: total}
}

// side runs stages 2 to 5 on the labels of one side. It returns the
// survivors and, when conversion is on, the inner labels moved outward.
func (e *Engine) side(cs []Candidate, g Geometry, rng *rand.Rand) (kept, converted []Candidate) {
	if len(cs) == 0 {
		return nil, nil
	}
	sortAngular(cs, g.Seam)
	e.relax(cs, g)
	alive := make([]bool, len(cs))
	for i := range alive {
		alive[i] = true
	}
	converted = e.extend(cs, alive, g)
	converted = append(converted, e.residual(cs, alive, g, rng)...)
	for i, c := range cs {
		if alive[i] {
			kept = append(kept, c)
		}
	}
	return kept, converted
}

func newRand(seed, salt uint64) *rand.Rand {
	s := seed + salt*0x9e3779b97f4a7c15
	return rand.New(rand.NewPCG(s, s^0xdeadbeef))
}
