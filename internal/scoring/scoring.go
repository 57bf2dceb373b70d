// Package scoring computes the deterministic ATS compliance score from locally extracted signals.
// AI-reported scores are never used; identical inputs always produce identical output.
package scoring

import (
	"math"

	"github.com/jonathan/ats-optimizer/internal/types"
)

// SkillCounts is the number of hard skills found and missing for the target role.
type SkillCounts struct {
	Found   int
	Missing int
}

// ErrorCounts is the number of detected résumé defects by severity.
type ErrorCounts struct {
	Critical   int
	Formatting int
}

// Weights holds every tunable of the scoring function.
type Weights struct {
	Baseline int `json:"baseline" yaml:"baseline"`

	ExperienceCredit int `json:"experience_credit" yaml:"experience_credit"`
	EducationCredit  int `json:"education_credit" yaml:"education_credit"`
	SkillsCredit     int `json:"skills_credit" yaml:"skills_credit"`

	// Hard skills earn SkillCredit each up to SkillFullCount, then SkillTailCredit
	// each, with the total capped at SkillCap.
	SkillCredit     int `json:"skill_credit" yaml:"skill_credit"`
	SkillFullCount  int `json:"skill_full_count" yaml:"skill_full_count"`
	SkillTailCredit int `json:"skill_tail_credit" yaml:"skill_tail_credit"`
	SkillCap        int `json:"skill_cap" yaml:"skill_cap"`

	// MetricRatioCredit is awarded in proportion to quantified bullets / total bullets.
	MetricRatioCredit int `json:"metric_ratio_credit" yaml:"metric_ratio_credit"`
	NoBulletsPenalty  int `json:"no_bullets_penalty" yaml:"no_bullets_penalty"`
	NoMetricsPenalty  int `json:"no_metrics_penalty" yaml:"no_metrics_penalty"`

	CriticalPenalty   int `json:"critical_penalty" yaml:"critical_penalty"`
	FormattingPenalty int `json:"formatting_penalty" yaml:"formatting_penalty"`
	WeakVerbPenalty   int `json:"weak_verb_penalty" yaml:"weak_verb_penalty"`
	WeakVerbCap       int `json:"weak_verb_cap" yaml:"weak_verb_cap"`

	NoSectionsPenalty int `json:"no_sections_penalty" yaml:"no_sections_penalty"`

	Floor   int `json:"floor" yaml:"floor"`
	Ceiling int `json:"ceiling" yaml:"ceiling"`
}

// DefaultWeights returns the production scoring weights.
// The floor is 1 so a parse failure is never reported as a genuine zero.
func DefaultWeights() Weights {
	return Weights{
		Baseline:          40,
		ExperienceCredit:  15,
		EducationCredit:   10,
		SkillsCredit:      10,
		SkillCredit:       2,
		SkillFullCount:    5,
		SkillTailCredit:   1,
		SkillCap:          15,
		MetricRatioCredit: 20,
		NoBulletsPenalty:  15,
		NoMetricsPenalty:  5,
		CriticalPenalty:   15,
		FormattingPenalty: 2,
		WeakVerbPenalty:   2,
		WeakVerbCap:       10,
		NoSectionsPenalty: 30,
		Floor:             1,
		Ceiling:           100,
	}
}

// ComputeScore scores with DefaultWeights. A nil metrics record counts as all zeros.
func ComputeScore(m *types.Metrics, skills SkillCounts, errs ErrorCounts) int {
	return DefaultWeights().Score(m, skills, errs)
}

// Score computes the clamped compliance score.
func (w Weights) Score(m *types.Metrics, skills SkillCounts, errs ErrorCounts) int {
	var metrics types.Metrics
	if m != nil {
		metrics = *m
	}

	score := w.Baseline
	score += w.structureCredit(metrics)
	score += w.skillCredit(skills.Found)
	score += w.bulletCredit(metrics)

	score -= nonNegative(errs.Critical) * w.CriticalPenalty
	score -= nonNegative(errs.Formatting) * w.FormattingPenalty
	score -= min(nonNegative(metrics.WeakVerbsCount)*w.WeakVerbPenalty, w.WeakVerbCap)

	if metrics.SectionCount <= 0 {
		score -= w.NoSectionsPenalty
	}

	return w.clamp(score)
}

func (w Weights) structureCredit(m types.Metrics) int {
	credit := 0
	if m.HasExperience {
		credit += w.ExperienceCredit
	}
	if m.HasEducation {
		credit += w.EducationCredit
	}
	if m.HasSkills {
		credit += w.SkillsCredit
	}
	return credit
}

// skillCredit has diminishing returns past SkillFullCount.
func (w Weights) skillCredit(found int) int {
	found = nonNegative(found)
	full := min(found, w.SkillFullCount)
	tail := found - full
	return min(full*w.SkillCredit+tail*w.SkillTailCredit, w.SkillCap)
}

func (w Weights) bulletCredit(m types.Metrics) int {
	total := nonNegative(m.TotalBulletPoints)
	if total == 0 {
		return -w.NoBulletsPenalty
	}
	withMetrics := min(nonNegative(m.BulletsWithMetrics), total)
	if withMetrics == 0 {
		return -w.NoMetricsPenalty
	}
	ratio := float64(withMetrics) / float64(total)
	return int(math.Round(ratio * float64(w.MetricRatioCredit)))
}

func (w Weights) clamp(score int) int {
	if score < w.Floor {
		return w.Floor
	}
	if score > w.Ceiling {
		return w.Ceiling
	}
	return score
}

// MatchPercentage is round(100 * matching / (matching + missing)), or 0 when both are empty.
func MatchPercentage(matching, missing int) int {
	matching = nonNegative(matching)
	missing = nonNegative(missing)
	if matching+missing == 0 {
		return 0
	}
	return int(math.Round(100 * float64(matching) / float64(matching+missing)))
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
