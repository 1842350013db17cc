// Package budget estimates how long a CV renders and how many bullets to keep.
package budget

import (
	"math"
	"unicode/utf8"

	"github.com/jonathan/cv-consolidator/internal/types"
)

// Calibration defaults. CharsPerPage is tuned for dense single-column CV
// layouts in English and should be re-measured for other styles.
const (
	DefaultCharsPerPage = 4000
	DefaultMaxPages     = 2
	DefaultRetainRatio  = 0.4
)

// Planner computes an advisory LengthPlan. Zero or out-of-range fields,
// including those of the zero value, fall back to the defaults.
type Planner struct {
	// CharsPerPage is the bullet text that fits on one page
	CharsPerPage int
	// MaxPages is the page count above which a reduction is recommended
	MaxPages int
	// RetainRatio is the share of bullets to keep when over MaxPages
	RetainRatio float64
}

// NewPlanner returns a Planner with the default calibration
func NewPlanner() Planner {
	return Planner{
		CharsPerPage: DefaultCharsPerPage,
		MaxPages:     DefaultMaxPages,
		RetainRatio:  DefaultRetainRatio,
	}
}

// Plan counts bullets and bullet characters across all roles and derives the
// page estimate and recommended bullet count. The CV is not modified.
func (p Planner) Plan(cv *types.CanonicalCV) types.LengthPlan {
	p = p.withDefaults()

	var plan types.LengthPlan
	if cv != nil {
		for _, role := range cv.Roles {
			plan.TotalBullets += len(role.BulletPoints)
			for _, b := range role.BulletPoints {
				plan.TotalCharacters += utf8.RuneCountInString(b)
			}
		}
	}

	plan.EstimatedPages = ceilDiv(plan.TotalCharacters, p.CharsPerPage)
	plan.RecommendedBulletCount = plan.TotalBullets
	if plan.EstimatedPages > p.MaxPages {
		plan.RecommendedBulletCount = p.retain(plan.TotalBullets)
	}
	plan.ReductionCount = plan.TotalBullets - plan.RecommendedBulletCount
	return plan
}

// retain returns ceil(total * RetainRatio), computed in per-mille so that
// ratios like 0.4 do not pick up float rounding
func (p Planner) retain(total int) int {
	perMille := int(math.Round(p.RetainRatio * 1000))
	return min(ceilDiv(total*perMille, 1000), total)
}

func (p Planner) withDefaults() Planner {
	if p.CharsPerPage <= 0 {
		p.CharsPerPage = DefaultCharsPerPage
	}
	if p.MaxPages <= 0 {
		p.MaxPages = DefaultMaxPages
	}
	if p.RetainRatio <= 0 || p.RetainRatio > 1 {
		p.RetainRatio = DefaultRetainRatio
	}
	return p
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
