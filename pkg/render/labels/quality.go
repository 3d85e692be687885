package labels

const (
	// DefaultQuality is used when Config.Quality is unset.
	DefaultQuality = 5
	// MaxQuality is the highest effort level.
	MaxQuality = len(qualityTable)
)

type params struct {
	iterations int     // relaxation passes
	span       int     // neighbours scanned on each side in stage 4
	step       float64 // relaxation shift per pass, in pixels at the label radius
}

var qualityTable = [10]params{
	{5, 1, 8},
	{10, 2, 6},
	{20, 2, 5},
	{40, 3, 4},
	{80, 4, 3},
	{120, 5, 2.5},
	{200, 6, 2},
	{300, 8, 1.5},
	{500, 10, 1},
	{1000, 12, 0.5},
}

func paramsFor(quality int) params {
	if quality <= 0 {
		quality = DefaultQuality
	}
	return qualityTable[min(quality, len(qualityTable))-1]
}

// Padding applied around boxes, per stage.
const (
	padQuota    = 4.0
	padRelax    = 3.0
	padExtend   = 2.0
	padResidual = 1.0
)
