package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/ats-optimizer/internal/types"
)

func TestComputeScore_SingleExperienceSection(t *testing.T) {
	metrics := &types.Metrics{
		TotalBulletPoints:  1,
		BulletsWithMetrics: 0,
		WeakVerbsCount:     1,
		SectionCount:       1,
		HasExperience:      true,
	}

	// baseline 40 + experience 15 - weak verb 2 - unquantified bullets 5
	score := ComputeScore(metrics, SkillCounts{}, ErrorCounts{})
	assert.Equal(t, 48, score)
	assert.Equal(t, score, ComputeScore(metrics, SkillCounts{}, ErrorCounts{}))
}

func TestComputeScore(t *testing.T) {
	strong := &types.Metrics{
		TotalBulletPoints:  10,
		BulletsWithMetrics: 10,
		SectionCount:       4,
		HasExperience:      true,
		HasEducation:       true,
		HasSkills:          true,
	}

	tests := []struct {
		name    string
		metrics *types.Metrics
		skills  SkillCounts
		errs    ErrorCounts
		want    int
	}{
		{
			name:    "nil metrics treated as zeros",
			metrics: nil,
			// 40 - 15 no bullets - 30 no sections
			want: 1,
		},
		{
			name:    "strong resume hits ceiling",
			metrics: strong,
			skills:  SkillCounts{Found: 12},
			want:    100,
		},
		{
			name:    "strong resume without skills",
			metrics: strong,
			// 40 + 35 + 20
			want: 95,
		},
		{
			name:    "half quantified",
			metrics: &types.Metrics{TotalBulletPoints: 4, BulletsWithMetrics: 2, SectionCount: 2, HasExperience: true},
			// 40 + 15 + 10
			want: 65,
		},
		{
			name:    "skills have diminishing credit",
			metrics: &types.Metrics{TotalBulletPoints: 4, BulletsWithMetrics: 2, SectionCount: 2},
			skills:  SkillCounts{Found: 7},
			// 40 + (5*2 + 2*1) + 10
			want: 62,
		},
		{
			name:    "critical errors are heavy",
			metrics: &types.Metrics{TotalBulletPoints: 4, BulletsWithMetrics: 2, SectionCount: 2, HasExperience: true},
			errs:    ErrorCounts{Critical: 2, Formatting: 3},
			// 65 - 30 - 6
			want: 29,
		},
		{
			name:    "weak verb penalty is capped",
			metrics: &types.Metrics{TotalBulletPoints: 4, BulletsWithMetrics: 2, SectionCount: 2, WeakVerbsCount: 40, HasExperience: true},
			// 65 - 10
			want: 55,
		},
		{
			name:    "zero bullets is worse than unquantified bullets",
			metrics: &types.Metrics{SectionCount: 2, HasExperience: true},
			// 40 + 15 - 15
			want: 40,
		},
		{
			name:    "floor is enforced",
			metrics: &types.Metrics{},
			errs:    ErrorCounts{Critical: 10},
			want:    1,
		},
		{
			name:    "negative counts are ignored",
			metrics: &types.Metrics{TotalBulletPoints: 2, BulletsWithMetrics: 5, SectionCount: 1, WeakVerbsCount: -3},
			skills:  SkillCounts{Found: -4},
			errs:    ErrorCounts{Critical: -1, Formatting: -1},
			// 40 + 20
			want: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeScore(tt.metrics, tt.skills, tt.errs))
		})
	}
}

func TestScore_PureAndBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w := DefaultWeights()

	for i := 0; i < 500; i++ {
		m := &types.Metrics{
			TotalBulletPoints:  rng.Intn(40),
			BulletsWithMetrics: rng.Intn(40),
			WeakVerbsCount:     rng.Intn(20),
			SectionCount:       rng.Intn(8),
			HasExperience:      rng.Intn(2) == 0,
			HasEducation:       rng.Intn(2) == 0,
			HasSkills:          rng.Intn(2) == 0,
		}
		skills := SkillCounts{Found: rng.Intn(30), Missing: rng.Intn(30)}
		errs := ErrorCounts{Critical: rng.Intn(4), Formatting: rng.Intn(10)}

		first := w.Score(m, skills, errs)
		second := w.Score(m, skills, errs)
		assert.Equal(t, first, second)
		assert.GreaterOrEqual(t, first, w.Floor)
		assert.LessOrEqual(t, first, w.Ceiling)
	}
}

func TestScore_CustomBounds(t *testing.T) {
	w := DefaultWeights()
	w.Floor = 0
	w.Ceiling = 80

	assert.Equal(t, 0, w.Score(nil, SkillCounts{}, ErrorCounts{Critical: 5}))
	assert.Equal(t, 80, w.Score(&types.Metrics{TotalBulletPoints: 1, BulletsWithMetrics: 1, SectionCount: 3, HasExperience: true, HasEducation: true, HasSkills: true}, SkillCounts{Found: 20}, ErrorCounts{}))
}

func TestMatchPercentage(t *testing.T) {
	tests := []struct {
		matching, missing, want int
	}{
		{0, 0, 0},
		{3, 0, 100},
		{0, 4, 0},
		{1, 2, 33},
		{2, 1, 67},
		{1, 1, 50},
		{-2, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchPercentage(tt.matching, tt.missing), "%d/%d", tt.matching, tt.missing)
	}
}
