package budget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-consolidator/internal/types"
)

// buildCV spreads count bullets of charsEach characters over roles
func buildCV(roles, count, charsEach int) *types.CanonicalCV {
	cv := types.NewCanonicalCV()
	for r := 0; r < roles; r++ {
		cv.Roles = append(cv.Roles, types.RoleEntry{Title: "Engineer", Company: "Acme", BulletPoints: []string{}})
	}
	for i := 0; i < count; i++ {
		r := i % roles
		cv.Roles[r].BulletPoints = append(cv.Roles[r].BulletPoints, strings.Repeat("x", charsEach))
	}
	return cv
}

func TestPlan_OverBudget(t *testing.T) {
	cv := buildCV(4, 40, 250)

	plan := NewPlanner().Plan(cv)

	assert.Equal(t, types.LengthPlan{
		TotalBullets:           40,
		TotalCharacters:        10000,
		EstimatedPages:         3,
		RecommendedBulletCount: 16,
		ReductionCount:         24,
	}, plan)
	assert.True(t, plan.NeedsReduction())
}

func TestPlan_WithinBudget(t *testing.T) {
	tests := []struct {
		name  string
		count int
		chars int
		pages int
	}{
		{"exactly two pages", 32, 250, 2},
		{"one page", 10, 100, 1},
		{"just over one page", 1, 4001, 2},
		{"empty", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := NewPlanner().Plan(buildCV(2, tt.count, tt.chars))

			assert.Equal(t, tt.pages, plan.EstimatedPages)
			assert.Equal(t, tt.count, plan.RecommendedBulletCount)
			assert.Zero(t, plan.ReductionCount)
		})
	}
}

func TestPlan_ReductionArithmetic(t *testing.T) {
	for _, count := range []int{3, 7, 13, 41, 99} {
		plan := NewPlanner().Plan(buildCV(3, count, 3000))

		require.Greater(t, plan.EstimatedPages, 2)
		assert.Equal(t, plan.TotalBullets, plan.RecommendedBulletCount+plan.ReductionCount)
		assert.GreaterOrEqual(t, float64(plan.RecommendedBulletCount), float64(count)*0.4)
		assert.Less(t, float64(plan.RecommendedBulletCount), float64(count)*0.4+1)
	}
}

func TestPlan_CountsRunes(t *testing.T) {
	cv := types.NewCanonicalCV()
	cv.Roles = []types.RoleEntry{{Title: "Ingénieur", Company: "Société", BulletPoints: []string{"Réduit la latence de 40 %"}}}

	plan := NewPlanner().Plan(cv)
	assert.Equal(t, 25, plan.TotalCharacters)
}

func TestPlan_DoesNotMutate(t *testing.T) {
	cv := buildCV(2, 40, 300)
	before := cv.Clone()

	NewPlanner().Plan(cv)
	assert.Equal(t, before, cv)
}

func TestPlan_CustomCalibration(t *testing.T) {
	p := Planner{CharsPerPage: 1000, MaxPages: 1, RetainRatio: 0.5}

	plan := p.Plan(buildCV(1, 10, 150))

	assert.Equal(t, 2, plan.EstimatedPages)
	assert.Equal(t, 5, plan.RecommendedBulletCount)
	assert.Equal(t, 5, plan.ReductionCount)
}

func TestPlan_ZeroValueUsesDefaults(t *testing.T) {
	assert.Equal(t, NewPlanner().Plan(buildCV(4, 40, 250)), Planner{}.Plan(buildCV(4, 40, 250)))
	assert.Equal(t, types.LengthPlan{}, NewPlanner().Plan(nil))
}
