package sanitize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-consolidator/internal/types"
)

func extractedCV() *types.CanonicalCV {
	cv := types.NewCanonicalCV()
	cv.Identity = types.Identity{
		Name:    types.Known("Maria Keller"),
		Email:   types.Known("email@example.com"),
		Phone:   types.Known("(555) 123-4567"),
		Address: types.Known("Your City"),
		Tagline: types.Known("Staff Engineer"),
		Links:   []string{"https://linkedin.com/in/yourprofile", "https://github.com/mkeller"},
	}
	return cv
}

func TestSanitize_ReplacesPlaceholders(t *testing.T) {
	out := Sanitize(extractedCV())

	assert.False(t, out.Identity.Email.IsKnown())
	assert.False(t, out.Identity.Phone.IsKnown())
	assert.False(t, out.Identity.Address.IsKnown())
	assert.Equal(t, types.Known("Maria Keller"), out.Identity.Name)
	assert.Equal(t, types.Known("Staff Engineer"), out.Identity.Tagline)
	assert.Equal(t, []string{"https://github.com/mkeller"}, out.Identity.Links)
}

func TestSanitize_EmailPlaceholderBecomesUnknownMarker(t *testing.T) {
	cv := types.NewCanonicalCV()
	require.NoError(t, json.Unmarshal([]byte(`{"email": "email@example.com"}`), &cv.Identity))

	out := Sanitize(cv)

	data, err := json.Marshal(out.Identity)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "example.com")
	assert.Equal(t, types.UnknownMarker, out.Identity.Email.String())
}

func TestSanitize_DoesNotModifyInput(t *testing.T) {
	cv := extractedCV()
	before := cv.Clone()

	Sanitize(cv)
	assert.Equal(t, before, cv)
}

func TestSanitize_UserRecordsUntouched(t *testing.T) {
	cv := extractedCV()
	cv.Origin = types.OriginUser

	out := Sanitize(cv)

	assert.Equal(t, types.Known("email@example.com"), out.Identity.Email)
	assert.Equal(t, types.Known("Your City"), out.Identity.Address)
	assert.Len(t, out.Identity.Links, 2)
}

func TestIsPlaceholder(t *testing.T) {
	rules := DefaultRules()

	placeholders := []string{
		"email@example.com",
		"  Phone   Number ",
		"Your City",
		"City, State",
		"John Doe",
		"N/A",
		"Address:",
		"555-867-5309",
		"+1 (555) 010 0000",
		"xxx-xxx-xxxx",
		"[Your Name]",
		"<email>",
		"Lorem ipsum dolor",
	}
	for _, v := range placeholders {
		assert.True(t, rules.IsPlaceholder(v), v)
	}

	genuine := []string{
		"",
		"maria.keller@gmail.com",
		"+49 30 1234567",
		"415-555-0199x",
		"Berlin, Germany",
		"Dr. Name Nameson",
		"Cityville Street 4",
	}
	for _, v := range genuine {
		assert.False(t, rules.IsPlaceholder(v), v)
	}
}

func TestRules_Custom(t *testing.T) {
	rules := Rules{Equals: []string{"Musterstadt"}}
	cv := types.NewCanonicalCV()
	cv.Identity.Address = types.Known("musterstadt")
	cv.Identity.Email = types.Known("email@example.com")

	out := rules.Sanitize(cv)

	assert.False(t, out.Identity.Address.IsKnown())
	assert.True(t, out.Identity.Email.IsKnown())
}

func TestConsolidate(t *testing.T) {
	cv := extractedCV()
	cv.Roles = []types.RoleEntry{
		{Title: "Engineer", Company: "A", BulletPoints: []string{"Led team of 5 engineers"}},
		{Title: "Engineer", Company: "B", BulletPoints: []string{"Managed a team of five engineers"}},
	}
	dups := []types.DuplicateCandidate{{RoleIndexA: 0, RoleIndexB: 1, SimilarityScore: 0.93}}
	plan := &types.LengthPlan{TotalBullets: 2, TotalCharacters: 55, EstimatedPages: 1, RecommendedBulletCount: 2}

	out := Consolidate(cv, dups, plan)

	assert.False(t, out.Identity.Email.IsKnown())
	assert.Equal(t, dups, out.Advisory.Duplicates)
	require.NotNil(t, out.Advisory.LengthPlan)
	assert.Equal(t, *plan, *out.Advisory.LengthPlan)
	assert.NotSame(t, plan, out.Advisory.LengthPlan)
	assert.Equal(t, cv.Roles, out.Roles)
}

func TestConsolidate_NilAdvisoryInputs(t *testing.T) {
	out := Consolidate(nil, nil, nil)

	require.NotNil(t, out)
	assert.NotNil(t, out.Advisory.Duplicates)
	assert.Nil(t, out.Advisory.LengthPlan)
	assert.NotNil(t, out.Roles)
	assert.NotNil(t, out.Identity.Links)
}
