package extraction

import (
	"strings"

	"github.com/jonathan/cv-consolidator/internal/types"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"gcp":        "Google Cloud",
	"aws":        "AWS",
	"ci/cd":      "CI/CD",
	"sql":        "SQL",
}

// NormalizeSkillName maps known aliases to one canonical spelling.
// Anything else is returned trimmed but otherwise as written, so acronyms
// such as "HTML" keep their casing.
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if canonical, ok := skillNormalizations[strings.ToLower(normalized)]; ok {
		return canonical
	}
	return normalized
}

// normalizeSkills canonicalizes skill names and drops duplicates, keeping
// the first occurrence and its category
func normalizeSkills(skills []types.SkillEntry) []types.SkillEntry {
	out := make([]types.SkillEntry, 0, len(skills))
	seen := make(map[string]int, len(skills))
	for _, s := range skills {
		name := NormalizeSkillName(s.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if idx, exists := seen[key]; exists {
			if out[idx].Category == "" {
				out[idx].Category = strings.TrimSpace(s.Category)
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, types.SkillEntry{Name: name, Category: strings.TrimSpace(s.Category)})
	}
	return out
}
