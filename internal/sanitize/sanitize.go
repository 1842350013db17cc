// Package sanitize removes template placeholders from freshly extracted CVs
// and assembles the final consolidated record.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/jonathan/cv-consolidator/internal/types"
)

// Rules describes what counts as a placeholder. Contains and Equals are
// matched case-insensitively after whitespace is collapsed.
type Rules struct {
	Contains []string
	Equals   []string
	Patterns []*regexp.Regexp
}

// DefaultRules returns the placeholder set seen in CV templates
func DefaultRules() Rules {
	return Rules{
		Contains: []string{
			"example.com",
			"example.org",
			"example.net",
			"yourname",
			"your name",
			"yourprofile",
			"your-profile",
			"yourusername",
			"your email",
			"your phone",
			"lorem ipsum",
			"123-456-7890",
			"(123) 456-7890",
		},
		Equals: []string{
			"name",
			"full name",
			"first last",
			"firstname lastname",
			"john doe",
			"jane doe",
			"email",
			"e-mail",
			"email address",
			"phone",
			"phone number",
			"telephone",
			"mobile",
			"address",
			"your city",
			"city",
			"city, state",
			"city, country",
			"city, st",
			"street address",
			"job title",
			"your title",
			"professional title",
			"n/a",
			"na",
			"none",
			"tbd",
			"unknown",
			"-",
		},
		Patterns: []*regexp.Regexp{
			// 555 numbers are reserved for fiction
			regexp.MustCompile(`^(\+?1[\s.-]*)?\(?555\)?[\s.-]*\d{3}[\s.-]*\d{4}$`),
			regexp.MustCompile(`^\(?x{3}\)?[\s.-]*x{3}[\s.-]*x{4}$`),
			regexp.MustCompile(`^[\[<{].*[\]>}]$`),
		},
	}
}

var spaceRun = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return spaceRun.ReplaceAllString(s, " ")
}

// IsPlaceholder reports whether value matches any rule
func (r Rules) IsPlaceholder(value string) bool {
	v := normalize(value)
	if v == "" {
		return false
	}
	for _, c := range r.Contains {
		if c = normalize(c); c != "" && strings.Contains(v, c) {
			return true
		}
	}
	trimmed := strings.TrimRight(v, ".:")
	for _, e := range r.Equals {
		if e = normalize(e); e == v || e == trimmed {
			return true
		}
	}
	for _, p := range r.Patterns {
		if p.MatchString(v) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of cv with every placeholder identity field
// replaced by Unknown and placeholder links dropped. Records entered by a
// user are copied unchanged; a real value can coincide with a template
// string, so only extracted data is checked.
func (r Rules) Sanitize(cv *types.CanonicalCV) *types.CanonicalCV {
	if cv == nil {
		return types.NewCanonicalCV()
	}
	out := cv.Clone()
	if out.Origin == types.OriginUser {
		return out
	}

	id := &out.Identity
	for _, f := range []*types.Field{&id.Name, &id.Email, &id.Phone, &id.Address, &id.Tagline} {
		if v, ok := f.Value(); ok && r.IsPlaceholder(v) {
			*f = types.Unknown()
		}
	}

	links := make([]string, 0, len(id.Links))
	for _, link := range id.Links {
		if !r.IsPlaceholder(link) {
			links = append(links, link)
		}
	}
	id.Links = links

	return out
}

// Sanitize applies DefaultRules
func Sanitize(cv *types.CanonicalCV) *types.CanonicalCV {
	return DefaultRules().Sanitize(cv)
}

// Consolidate sanitizes cv and attaches the duplicate candidates and length
// plan as advisory metadata. Content is never removed on their account.
func (r Rules) Consolidate(cv *types.CanonicalCV, duplicates []types.DuplicateCandidate, plan *types.LengthPlan) *types.CanonicalCV {
	out := r.Sanitize(cv)
	out.Advisory.Duplicates = append([]types.DuplicateCandidate{}, duplicates...)
	if plan != nil {
		p := *plan
		out.Advisory.LengthPlan = &p
	} else {
		out.Advisory.LengthPlan = nil
	}
	out.Normalize()
	return out
}

// Consolidate applies DefaultRules
func Consolidate(cv *types.CanonicalCV, duplicates []types.DuplicateCandidate, plan *types.LengthPlan) *types.CanonicalCV {
	return DefaultRules().Consolidate(cv, duplicates, plan)
}
