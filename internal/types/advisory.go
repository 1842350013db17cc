//nolint:revive // types is a standard Go package name pattern
package types

// DuplicateCandidate links two bullets from different roles that read as the same content
type DuplicateCandidate struct {
	RoleIndexA      int     `json:"role_index_a"`
	BulletIndexA    int     `json:"bullet_index_a"`
	RoleIndexB      int     `json:"role_index_b"`
	BulletIndexB    int     `json:"bullet_index_b"`
	SimilarityScore float64 `json:"similarity_score"`
}

// LengthPlan is the advisory page budget computed from a CanonicalCV
type LengthPlan struct {
	TotalBullets           int `json:"total_bullets"`
	TotalCharacters        int `json:"total_characters"`
	EstimatedPages         int `json:"estimated_pages"`
	RecommendedBulletCount int `json:"recommended_bullet_count"`
	ReductionCount         int `json:"reduction_count"`
}

// NeedsReduction reports whether the plan recommends dropping bullets
func (p LengthPlan) NeedsReduction() bool {
	return p.ReductionCount > 0
}
