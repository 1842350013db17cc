//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Origin records where a CanonicalCV came from
type Origin string

const (
	// OriginExtracted marks records produced by the extraction pipeline
	OriginExtracted Origin = "extracted"
	// OriginUser marks records edited by a user after extraction
	OriginUser Origin = "user"
)

// Identity holds the candidate's contact and headline fields
type Identity struct {
	Name    Field    `json:"name"`
	Email   Field    `json:"email"`
	Phone   Field    `json:"phone"`
	Address Field    `json:"address"`
	Links   []string `json:"links"`
	Tagline Field    `json:"tagline"`
}

// RoleEntry is one position from the work experience section.
// BulletPoints keep the original wording and document order.
type RoleEntry struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	BulletPoints []string `json:"bullet_points"`
}

// EducationEntry is one degree or course of study
type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// SkillEntry is a single named skill
type SkillEntry struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Certification is a professional certification
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
}

// Language is a spoken language and proficiency
type Language struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Project is a personal or professional project
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// Advisory carries review metadata attached during consolidation.
// It never changes the CV content itself.
type Advisory struct {
	Duplicates []DuplicateCandidate `json:"duplicates"`
	LengthPlan *LengthPlan          `json:"length_plan,omitempty"`
}

// CanonicalCV is the reconciled structured representation of a résumé
type CanonicalCV struct {
	Identity       Identity         `json:"identity"`
	Summary        string           `json:"summary"`
	Roles          []RoleEntry      `json:"roles"`
	Education      []EducationEntry `json:"education"`
	Skills         []SkillEntry     `json:"skills"`
	Certifications []Certification  `json:"certifications"`
	Languages      []Language       `json:"languages"`
	Projects       []Project        `json:"projects"`
	Achievements   []string         `json:"achievements"`
	Origin         Origin           `json:"origin"`
	Advisory       Advisory         `json:"advisory"`
}

// NewCanonicalCV returns an empty extracted record with every list initialized
func NewCanonicalCV() *CanonicalCV {
	cv := &CanonicalCV{Origin: OriginExtracted}
	cv.Normalize()
	return cv
}

// Normalize replaces every nil list, including nested ones, with an empty slice
func (cv *CanonicalCV) Normalize() {
	cv.Identity.Links = nonNil(cv.Identity.Links)
	if cv.Roles == nil {
		cv.Roles = []RoleEntry{}
	}
	for i := range cv.Roles {
		cv.Roles[i].BulletPoints = nonNil(cv.Roles[i].BulletPoints)
	}
	if cv.Education == nil {
		cv.Education = []EducationEntry{}
	}
	if cv.Skills == nil {
		cv.Skills = []SkillEntry{}
	}
	if cv.Certifications == nil {
		cv.Certifications = []Certification{}
	}
	if cv.Languages == nil {
		cv.Languages = []Language{}
	}
	if cv.Projects == nil {
		cv.Projects = []Project{}
	}
	for i := range cv.Projects {
		cv.Projects[i].Technologies = nonNil(cv.Projects[i].Technologies)
	}
	cv.Achievements = nonNil(cv.Achievements)
	if cv.Advisory.Duplicates == nil {
		cv.Advisory.Duplicates = []DuplicateCandidate{}
	}
	if cv.Origin == "" {
		cv.Origin = OriginExtracted
	}
}

// Clone returns a deep copy of the record
func (cv *CanonicalCV) Clone() *CanonicalCV {
	out := *cv
	out.Identity.Links = cloneStrings(cv.Identity.Links)
	if cv.Roles != nil {
		out.Roles = make([]RoleEntry, len(cv.Roles))
		for i, r := range cv.Roles {
			r.BulletPoints = cloneStrings(r.BulletPoints)
			out.Roles[i] = r
		}
	}
	out.Education = append([]EducationEntry(nil), cv.Education...)
	out.Skills = append([]SkillEntry(nil), cv.Skills...)
	out.Certifications = append([]Certification(nil), cv.Certifications...)
	out.Languages = append([]Language(nil), cv.Languages...)
	if cv.Projects != nil {
		out.Projects = make([]Project, len(cv.Projects))
		for i, p := range cv.Projects {
			p.Technologies = cloneStrings(p.Technologies)
			out.Projects[i] = p
		}
	}
	out.Achievements = cloneStrings(cv.Achievements)
	out.Advisory.Duplicates = append([]DuplicateCandidate(nil), cv.Advisory.Duplicates...)
	if cv.Advisory.LengthPlan != nil {
		plan := *cv.Advisory.LengthPlan
		out.Advisory.LengthPlan = &plan
	}
	out.Normalize()
	return &out
}

// BulletCount returns the number of bullet points across all roles
func (cv *CanonicalCV) BulletCount() int {
	count := 0
	for _, role := range cv.Roles {
		count += len(role.BulletPoints)
	}
	return count
}

// HasTitleAndCompany reports whether the role carries both identifying fields
func (r RoleEntry) HasTitleAndCompany() bool {
	return strings.TrimSpace(r.Title) != "" && strings.TrimSpace(r.Company) != ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
