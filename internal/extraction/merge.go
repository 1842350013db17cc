package extraction

import (
	"strings"

	"github.com/jonathan/cv-consolidator/internal/types"
)

var bulletMarkers = []string{"- ", "* ", "• ", "· ", "▪ ", "◦ ", "– ", "•"}

// merge writes each group into its own fields of a new record. Roles keep
// chunk order regardless of which request finished first; roles without both
// a title and a company are dropped and counted.
func merge(identity identityPartial, summary summaryPartial, eduSkills educationSkillsPartial, roles []Outcome[rolePartial]) (*types.CanonicalCV, int) {
	cv := types.NewCanonicalCV()

	cv.Identity = types.Identity{
		Name:    identity.Name,
		Email:   identity.Email,
		Phone:   identity.Phone,
		Address: identity.Address,
		Links:   cleanList(identity.Links),
		Tagline: identity.Tagline,
	}

	cv.Summary = strings.TrimSpace(summary.Summary)
	cv.Achievements = cleanList(summary.Achievements)
	for _, c := range summary.Certifications {
		if name := strings.TrimSpace(c.Name); name != "" {
			cv.Certifications = append(cv.Certifications, types.Certification{
				Name:   name,
				Issuer: strings.TrimSpace(c.Issuer),
				Date:   strings.TrimSpace(c.Date),
			})
		}
	}
	for _, l := range summary.Languages {
		if name := strings.TrimSpace(l.Name); name != "" {
			cv.Languages = append(cv.Languages, types.Language{Name: name, Proficiency: strings.TrimSpace(l.Proficiency)})
		}
	}
	for _, p := range summary.Projects {
		if name := strings.TrimSpace(p.Name); name != "" {
			cv.Projects = append(cv.Projects, types.Project{
				Name:         name,
				Description:  strings.TrimSpace(p.Description),
				Technologies: cleanList(p.Technologies),
			})
		}
	}

	for _, e := range eduSkills.Education {
		entry := types.EducationEntry{
			Institution: strings.TrimSpace(e.Institution),
			Degree:      strings.TrimSpace(e.Degree),
			Field:       strings.TrimSpace(e.Field),
			StartDate:   strings.TrimSpace(e.StartDate),
			EndDate:     strings.TrimSpace(e.EndDate),
		}
		if entry.Institution == "" && entry.Degree == "" {
			continue
		}
		cv.Education = append(cv.Education, entry)
	}
	cv.Skills = normalizeSkills(eduSkills.Skills)

	discarded := 0
	for _, outcome := range roles {
		role := types.RoleEntry{
			Title:        strings.TrimSpace(outcome.Value.Title),
			Company:      strings.TrimSpace(outcome.Value.Company),
			StartDate:    strings.TrimSpace(outcome.Value.StartDate),
			EndDate:      strings.TrimSpace(outcome.Value.EndDate),
			BulletPoints: cleanBullets(outcome.Value.BulletPoints),
		}
		if !role.HasTitleAndCompany() {
			discarded++
			continue
		}
		cv.Roles = append(cv.Roles, role)
	}

	cv.Normalize()
	return cv, discarded
}

// cleanBullets trims bullets and strips a leading bullet marker. Wording is
// left untouched.
func cleanBullets(bullets []string) []string {
	out := make([]string, 0, len(bullets))
	for _, b := range bullets {
		b = strings.TrimSpace(b)
		for _, marker := range bulletMarkers {
			if strings.HasPrefix(b, marker) {
				b = strings.TrimSpace(strings.TrimPrefix(b, marker))
				break
			}
		}
		if b != "" {
			out = append(out, b)
		}
	}
	return out
}

// cleanList trims entries and drops blanks and exact repeats
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
