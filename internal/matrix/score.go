package matrix

// Weights set the relative contribution of adoption fraction and
// normalized stage weight to the value score. The pair is renormalized to
// sum to 1; a non-positive pair falls back to equal weighting.
type Weights struct {
	Adoption float64 `json:"adoption"`
	Stage    float64 `json:"stage"`
}

func (w Weights) normalized() (adoption, stage float64) {
	sum := w.Adoption + w.Stage
	if sum <= 0 {
		return 0.5, 0.5
	}
	return w.Adoption / sum, w.Stage / sum
}

// ValueScore combines an adoption fraction and a stage weight into the
// composite score on [0, scaleMax]. The result is deterministic and
// monotonic non-decreasing in both inputs; each record scores
// independently of every other record.
func ValueScore(adoptionFraction, stage float64, w Weights, scaleMax float64) float64 {
	adoptionFraction = clamp01(adoptionFraction)

	stageNorm := 0.0
	if max := MaxStage(); max > 0 {
		stageNorm = clamp01(stage / max)
	}

	if scaleMax <= 0 {
		scaleMax = 1
	}
	wa, ws := w.normalized()
	return (wa*adoptionFraction + ws*stageNorm) * scaleMax
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
