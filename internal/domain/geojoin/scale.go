package geojoin

// Tier is a discrete risk bucket.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"

	Tier1  Tier = "tier1"
	Tier2  Tier = "tier2"
	Tier3  Tier = "tier3"
	Tier4  Tier = "tier4"
	Tier5  Tier = "tier5"
	Tier6  Tier = "tier6"
	NoData Tier = "no_data"
)

// DefaultThreshold is the alert threshold used when none is configured.
const DefaultThreshold = 100

// Scale buckets a case count. A nil count means no joined record.
type Scale interface {
	Name() string
	Tier(count *float64) Tier
}

// ThresholdScale is the alert scale: above the threshold is high, above half of it medium.
type ThresholdScale struct {
	Threshold float64
}

func (s ThresholdScale) Name() string { return "threshold" }

func (s ThresholdScale) Tier(count *float64) Tier {
	if count == nil {
		return TierLow
	}
	switch {
	case *count > s.Threshold:
		return TierHigh
	case *count > 0.5*s.Threshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Label renders a tier of this scale as the short tag used in alert emails.
func (s ThresholdScale) Label(count *float64) string {
	switch s.Tier(count) {
	case TierHigh:
		return "High"
	case TierMedium:
		return "Mid"
	default:
		return "Low"
	}
}

// BinScale is the fixed choropleth scale. Each bin includes its lower bound.
type BinScale struct{}

func (BinScale) Name() string { return "bins" }

func (BinScale) Tier(count *float64) Tier {
	if count == nil {
		return NoData
	}
	switch c := *count; {
	case c >= 200:
		return Tier6
	case c >= 100:
		return Tier5
	case c >= 50:
		return Tier4
	case c >= 11:
		return Tier3
	case c >= 1:
		return Tier2
	default:
		return Tier1
	}
}

// ScaleByName resolves "threshold" or "bins". Unknown names fall back to bins.
func ScaleByName(name string, threshold float64) Scale {
	if name == "threshold" {
		if threshold <= 0 {
			threshold = DefaultThreshold
		}
		return ThresholdScale{Threshold: threshold}
	}
	return BinScale{}
}
