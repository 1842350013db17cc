//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_KnownAndUnknown(t *testing.T) {
	f := Known("  jane@acme.io ")
	v, ok := f.Value()
	assert.True(t, ok)
	assert.Equal(t, "jane@acme.io", v)

	blank := Known("   ")
	assert.False(t, blank.IsKnown())
	assert.Equal(t, Unknown(), blank)

	var zero Field
	assert.False(t, zero.IsKnown())
	assert.Equal(t, UnknownMarker, zero.String())
	assert.Equal(t, "fallback", zero.OrElse("fallback"))
}

func TestField_JSON(t *testing.T) {
	data, err := json.Marshal(Identity{Name: Known("Jane Doe")})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"Jane Doe"`)
	assert.Contains(t, string(data), `"email":null`)

	var id Identity
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Jane","email":null,"phone":""}`), &id))
	assert.Equal(t, Known("Jane"), id.Name)
	assert.False(t, id.Email.IsKnown())
	assert.False(t, id.Phone.IsKnown())
}

func TestField_JSONNonStringValues(t *testing.T) {
	var id Identity
	err := json.Unmarshal([]byte(`{"name":"Maria Keller","email":"maria@keller.dev","phone":4915112345678,`+
		`"address":{"city":"Berlin"},"tagline":["a","b"]}`), &id)
	require.NoError(t, err)

	assert.Equal(t, Known("Maria Keller"), id.Name)
	assert.Equal(t, Known("maria@keller.dev"), id.Email)
	assert.Equal(t, Known("4915112345678"), id.Phone)
	assert.False(t, id.Address.IsKnown())
	assert.False(t, id.Tagline.IsKnown())

	var f Field
	require.NoError(t, json.Unmarshal([]byte(`true`), &f))
	assert.Equal(t, Known("true"), f)
	require.NoError(t, json.Unmarshal([]byte(`-1.5e3`), &f))
	assert.Equal(t, Known("-1.5e3"), f)
}

func TestNewCanonicalCV_ListsNeverNil(t *testing.T) {
	cv := NewCanonicalCV()

	data, err := json.Marshal(cv)
	require.NoError(t, err)
	for _, key := range []string{"roles", "education", "skills", "certifications", "languages", "projects", "achievements", "links", "duplicates"} {
		assert.Contains(t, string(data), `"`+key+`":[]`, "list %s should encode as []", key)
	}
	assert.Equal(t, OriginExtracted, cv.Origin)
}

func TestNormalize_NestedLists(t *testing.T) {
	cv := &CanonicalCV{
		Roles:    []RoleEntry{{Title: "Engineer", Company: "Acme"}},
		Projects: []Project{{Name: "cli"}},
	}
	cv.Normalize()

	assert.NotNil(t, cv.Roles[0].BulletPoints)
	assert.NotNil(t, cv.Projects[0].Technologies)
	assert.NotNil(t, cv.Identity.Links)
	assert.NotNil(t, cv.Advisory.Duplicates)

	data, err := json.Marshal(cv)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), `"bullet_points":null`))
	assert.False(t, strings.Contains(string(data), `"technologies":null`))
}

func TestClone_IsDeep(t *testing.T) {
	cv := NewCanonicalCV()
	cv.Roles = []RoleEntry{{Title: "Engineer", Company: "Acme", BulletPoints: []string{"Built things"}}}
	cv.Identity.Links = []string{"https://github.com/jane"}
	cv.Advisory.LengthPlan = &LengthPlan{TotalBullets: 1}

	clone := cv.Clone()
	clone.Roles[0].BulletPoints[0] = "changed"
	clone.Identity.Links[0] = "changed"
	clone.Advisory.LengthPlan.TotalBullets = 9

	assert.Equal(t, "Built things", cv.Roles[0].BulletPoints[0])
	assert.Equal(t, "https://github.com/jane", cv.Identity.Links[0])
	assert.Equal(t, 1, cv.Advisory.LengthPlan.TotalBullets)
	assert.NotNil(t, clone.Education)
}

func TestBulletCount(t *testing.T) {
	cv := NewCanonicalCV()
	cv.Roles = []RoleEntry{
		{BulletPoints: []string{"a", "b"}},
		{BulletPoints: []string{"c"}},
	}
	assert.Equal(t, 3, cv.BulletCount())
}

func TestRoleEntry_HasTitleAndCompany(t *testing.T) {
	assert.True(t, RoleEntry{Title: "Engineer", Company: "Acme"}.HasTitleAndCompany())
	assert.False(t, RoleEntry{Title: "Engineer"}.HasTitleAndCompany())
	assert.False(t, RoleEntry{Title: " ", Company: "Acme"}.HasTitleAndCompany())
}

func TestLineRange(t *testing.T) {
	r := LineRange{Start: 2, End: 5}
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(5))
	assert.Equal(t, 0, LineRange{Start: 4, End: 1}.Len())
}

func TestRawDocument_Validate(t *testing.T) {
	doc := &RawDocument{Content: []byte("hello"), Filename: "cv.txt"}
	assert.NoError(t, doc.Validate())

	empty := &RawDocument{Filename: "cv.txt"}
	assert.Error(t, empty.Validate())
}

func TestLengthPlan_NeedsReduction(t *testing.T) {
	assert.True(t, LengthPlan{ReductionCount: 3}.NeedsReduction())
	assert.False(t, LengthPlan{}.NeedsReduction())
}
