package matrix

// Quadrant buckets a record by its value score and engagement stage.
type Quadrant string

const (
	QuadrantStrategic    Quadrant = "Strategic Partners"
	QuadrantGrowth       Quadrant = "Growth Opportunities"
	QuadrantHighValue    Quadrant = "High Value Prospects"
	QuadrantBasic        Quadrant = "Basic Users"
	QuadrantUnclassified Quadrant = "Unclassified"
)

var quadrantColors = map[Quadrant]string{
	QuadrantStrategic: "#4C72B0",
	QuadrantGrowth:    "#55A868",
	QuadrantHighValue: "#FFA07A",
	QuadrantBasic:     "#C44E52",
}

// Color returns the quadrant's display color. Unknown quadrants share a
// neutral gray.
func (q Quadrant) Color() string {
	if c, ok := quadrantColors[q]; ok {
		return c
	}
	return "#777777"
}

// Thresholds are the two axis cut points of one classification pass. Score
// is absolute on the report's scale, stage is a raw stage weight.
type Thresholds struct {
	Score float64 `json:"score"`
	Stage float64 `json:"stage"`
}

// Classify assigns the quadrant for one (score, stage) pair. Upper-side
// comparisons are inclusive: a record exactly at both thresholds is a
// Strategic Partner. Pure function; identical input always yields the
// same quadrant.
func Classify(score, stage float64, th Thresholds) Quadrant {
	switch {
	case score >= th.Score && stage >= th.Stage:
		return QuadrantStrategic
	case score < th.Score && stage >= th.Stage:
		return QuadrantGrowth
	case score >= th.Score && stage < th.Stage:
		return QuadrantHighValue
	default:
		return QuadrantBasic
	}
}

// BubbleSize maps a score to the scatter bubble diameter, spanning the
// dashboard's 20-100px range across the score scale.
func BubbleSize(score, scaleMax float64) float64 {
	if scaleMax <= 0 {
		return 20
	}
	return 20 + clamp01(score/scaleMax)*80
}
