package matrix

import (
	"sort"
	"strings"

	"github.com/ignite/value-matrix/internal/dataset"
)

// Options configure one evaluation pass. ScoreThreshold is a fraction of
// ScaleMax; the report carries the resolved absolute value.
type Options struct {
	Weights        Weights `json:"weights"`
	ScoreThreshold float64 `json:"score_threshold"`
	StageThreshold float64 `json:"stage_threshold"`
	ScaleMax       float64 `json:"scale_max"`
}

// DefaultOptions mirror the dashboard's fixed policy: equal weighting, a
// score cut at 65% of the scale, and a stage cut at DA-Direct. Thresholds
// are constants, never derived from the dataset.
func DefaultOptions() Options {
	return Options{
		Weights:        Weights{Adoption: 0.5, Stage: 0.5},
		ScoreThreshold: 0.65,
		StageThreshold: 2.0,
		ScaleMax:       1.0,
	}
}

// ========== Types ==========

// RecordResult is the scored view of one dataset row.
type RecordResult struct {
	Row              int               `json:"row"`
	ID               string            `json:"id"`
	Group            string            `json:"group,omitempty"`
	TierLabel        string            `json:"tier"`
	Stage            float64           `json:"stage"`
	AdoptedCount     int               `json:"adopted_count"`
	AdoptionFraction float64           `json:"adoption_fraction"`
	ValueScore       float64           `json:"value_score"`
	Quadrant         Quadrant          `json:"quadrant"`
	Color            string            `json:"color"`
	BubbleSize       float64           `json:"bubble_size"`
	Breakdown        []FeatureAdoption `json:"breakdown"`
}

// Skipped reports records excluded from scoring. Records whose tier cell
// does not match the enumeration are skipped and counted, never coerced
// to a default tier.
type Skipped struct {
	Count        int      `json:"count"`
	UnknownTiers []string `json:"unknown_tiers,omitempty"`
}

// Report is the engine output for one dataset pass.
type Report struct {
	Records        []RecordResult   `json:"records"`
	Features       []string         `json:"features"`
	Thresholds     Thresholds       `json:"thresholds"`
	ScaleMax       float64          `json:"scale_max"`
	QuadrantCounts map[Quadrant]int `json:"quadrant_counts"`
	Skipped        Skipped          `json:"skipped"`
}

// ========== Engine ==========

// Engine runs the scoring pipeline. It holds configured defaults only;
// every evaluation is a pure function of its inputs and no dataset state
// survives between calls.
type Engine struct {
	defaults Options
}

// NewEngine creates an engine with the given default options.
func NewEngine(defaults Options) *Engine {
	return &Engine{defaults: defaults}
}

// Defaults returns the engine's configured default options.
func (e *Engine) Defaults() Options {
	return e.defaults
}

// Evaluate runs the full pipeline with the engine defaults.
func (e *Engine) Evaluate(table *dataset.Table) (*Report, error) {
	return e.EvaluateWith(table, e.defaults)
}

// EvaluateWith runs detection, scoring, classification, and breakdown
// formatting in one synchronous pass: O(rows x columns) for detection,
// O(rows) after, with no per-record external calls.
func (e *Engine) EvaluateWith(table *dataset.Table, opts Options) (*Report, error) {
	if table == nil || table.RowCount() == 0 {
		return nil, ErrEmptyDataset
	}

	schema := dataset.DetectSchema(table)
	features, err := DetectFeatures(table, schema.Structural())
	if err != nil {
		return nil, err
	}

	scaleMax := opts.ScaleMax
	if scaleMax <= 0 {
		scaleMax = 1
	}
	th := Thresholds{Score: opts.ScoreThreshold * scaleMax, Stage: opts.StageThreshold}

	report := &Report{
		Features:       features.Columns,
		Thresholds:     th,
		ScaleMax:       scaleMax,
		QuadrantCounts: make(map[Quadrant]int, 4),
	}

	unknown := make(map[string]bool)
	for r := 0; r < table.RowCount(); r++ {
		rawTier := ""
		if schema.HasTier() {
			rawTier = table.Cell(r, schema.TierColumn)
		}
		tier, ok := ParseTier(rawTier)
		if !ok {
			report.Skipped.Count++
			if label := strings.TrimSpace(rawTier); label != "" {
				unknown[label] = true
			}
			continue
		}

		adopted := features.AdoptedCount(r)
		fraction := float64(adopted) / float64(features.Count())
		score := ValueScore(fraction, tier.Stage(), opts.Weights, scaleMax)
		quadrant := Classify(score, tier.Stage(), th)

		rec := RecordResult{
			Row:              r,
			ID:               table.Cell(r, schema.IdentifierColumn),
			TierLabel:        tier.Label(),
			Stage:            tier.Stage(),
			AdoptedCount:     adopted,
			AdoptionFraction: fraction,
			ValueScore:       score,
			Quadrant:         quadrant,
			Color:            quadrant.Color(),
			BubbleSize:       BubbleSize(score, scaleMax),
			Breakdown:        features.Breakdown(r),
		}
		if schema.HasGroup() {
			rec.Group = table.Cell(r, schema.GroupColumn)
		}

		report.Records = append(report.Records, rec)
		report.QuadrantCounts[quadrant]++
	}

	if len(unknown) > 0 {
		labels := make([]string, 0, len(unknown))
		for label := range unknown {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		report.Skipped.UnknownTiers = labels
	}

	return report, nil
}

// RankedByScore returns the records ordered by value score descending,
// the order the adoption heatmap displays. Ties keep input order.
func (r *Report) RankedByScore() []RecordResult {
	out := make([]RecordResult, len(r.Records))
	copy(out, r.Records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ValueScore > out[j].ValueScore
	})
	return out
}

// Record finds the first scored record with the given identifier.
func (r *Report) Record(id string) (*RecordResult, bool) {
	for i := range r.Records {
		if r.Records[i].ID == id {
			return &r.Records[i], true
		}
	}
	return nil, false
}

// Filter returns a view of the report restricted to records whose group
// or identifier matches one of the given values. An empty slice leaves
// that dimension unfiltered; matching is exact. Quadrant counts are
// recomputed over the surviving records, while features, thresholds, and
// skip accounting carry over from the full evaluation.
func (r *Report) Filter(groups, ids []string) *Report {
	groupSet := filterSet(groups)
	idSet := filterSet(ids)
	if len(groupSet) == 0 && len(idSet) == 0 {
		return r
	}

	out := &Report{
		Features:       r.Features,
		Thresholds:     r.Thresholds,
		ScaleMax:       r.ScaleMax,
		QuadrantCounts: make(map[Quadrant]int, 4),
		Skipped:        r.Skipped,
	}
	for _, rec := range r.Records {
		if len(groupSet) > 0 && !groupSet[rec.Group] {
			continue
		}
		if len(idSet) > 0 && !idSet[rec.ID] {
			continue
		}
		out.Records = append(out.Records, rec)
		out.QuadrantCounts[rec.Quadrant]++
	}
	return out
}

func filterSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = true
		}
	}
	return set
}
