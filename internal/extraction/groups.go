package extraction

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jonathan/cv-consolidator/internal/llm"
	"github.com/jonathan/cv-consolidator/internal/prompts"
	"github.com/jonathan/cv-consolidator/internal/types"
)

// Field-group names, also the keys in prompts/extraction.json
const (
	GroupIdentity        = "identity"
	GroupSummary         = "summary"
	GroupEducationSkills = "education_skills"
	GroupRole            = "role"
)

const promptFile = "extraction.json"

// --- Partial records, one per field group ---

type identityPartial struct {
	Name    types.Field `json:"name"`
	Email   types.Field `json:"email"`
	Phone   types.Field `json:"phone"`
	Address types.Field `json:"address"`
	Links   []string    `json:"links"`
	Tagline types.Field `json:"tagline"`
}

type summaryPartial struct {
	Summary        string                `json:"summary"`
	Certifications []types.Certification `json:"certifications"`
	Languages      []types.Language      `json:"languages"`
	Projects       []types.Project       `json:"projects"`
	Achievements   []string              `json:"achievements"`
}

type educationSkillsPartial struct {
	Education []types.EducationEntry `json:"education"`
	Skills    skillList              `json:"skills"`
}

type rolePartial struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	BulletPoints []string `json:"bullet_points"`
}

// skillList accepts skills as objects or as bare strings
type skillList []types.SkillEntry

func (s *skillList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(skillList, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var name string
			if err := json.Unmarshal(item, &name); err != nil {
				return err
			}
			out = append(out, types.SkillEntry{Name: name})
			continue
		}
		var entry types.SkillEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			return err
		}
		out = append(out, entry)
	}
	*s = out
	return nil
}

// --- Typed defaults substituted when a group fails ---

func identityDefault() identityPartial {
	return identityPartial{Links: []string{}}
}

func summaryDefault() summaryPartial {
	return summaryPartial{
		Certifications: []types.Certification{},
		Languages:      []types.Language{},
		Projects:       []types.Project{},
		Achievements:   []string{},
	}
}

func educationSkillsDefault() educationSkillsPartial {
	return educationSkillsPartial{Education: []types.EducationEntry{}, Skills: skillList{}}
}

func roleDefault() rolePartial {
	return rolePartial{BulletPoints: []string{}}
}

// --- Schemas ---

func identitySchema() llm.ExtractionSchema {
	t := prompts.MustGet(promptFile, GroupIdentity)
	return llm.ExtractionSchema{
		Name:        "Identity",
		Description: t.Description,
		Fields: []llm.SchemaField{
			{Name: "name", Description: t.Field("name")},
			{Name: "email", Description: t.Field("email")},
			{Name: "phone", Description: t.Field("phone")},
			{Name: "address", Description: t.Field("address")},
			{Name: "links", Kind: llm.KindStringList, Description: t.Field("links"), Required: true},
			{Name: "tagline", Description: t.Field("tagline")},
		},
	}
}

func summarySchema() llm.ExtractionSchema {
	t := prompts.MustGet(promptFile, GroupSummary)
	return llm.ExtractionSchema{
		Name:        "Summary",
		Description: t.Description,
		Fields: []llm.SchemaField{
			{Name: "summary", Description: t.Field("summary")},
			{Name: "certifications", Kind: llm.KindObjectList, Description: t.Field("certifications"), Required: true, Items: []llm.SchemaField{
				{Name: "name", Description: t.Field("name"), Required: true},
				{Name: "issuer", Description: t.Field("issuer")},
				{Name: "date", Description: t.Field("date")},
			}},
			{Name: "languages", Kind: llm.KindObjectList, Description: t.Field("languages"), Required: true, Items: []llm.SchemaField{
				{Name: "name", Description: t.Field("name"), Required: true},
				{Name: "proficiency", Description: t.Field("proficiency")},
			}},
			{Name: "projects", Kind: llm.KindObjectList, Description: t.Field("projects"), Required: true, Items: []llm.SchemaField{
				{Name: "name", Description: t.Field("name"), Required: true},
				{Name: "description", Description: t.Field("description")},
				{Name: "technologies", Kind: llm.KindStringList, Description: t.Field("technologies")},
			}},
			{Name: "achievements", Kind: llm.KindStringList, Description: t.Field("achievements"), Required: true},
		},
	}
}

func educationSkillsSchema() llm.ExtractionSchema {
	t := prompts.MustGet(promptFile, GroupEducationSkills)
	return llm.ExtractionSchema{
		Name:        "EducationSkills",
		Description: t.Description,
		Fields: []llm.SchemaField{
			{Name: "education", Kind: llm.KindObjectList, Description: t.Field("education"), Required: true, Items: []llm.SchemaField{
				{Name: "institution", Description: t.Field("institution")},
				{Name: "degree", Description: t.Field("degree")},
				{Name: "field", Description: t.Field("field")},
				{Name: "start_date", Description: t.Field("start_date")},
				{Name: "end_date", Description: t.Field("end_date")},
			}},
			{Name: "skills", Kind: llm.KindObjectList, Description: t.Field("skills"), Required: true, Items: []llm.SchemaField{
				{Name: "name", Description: t.Field("name"), Required: true},
				{Name: "category", Description: t.Field("category")},
			}},
		},
	}
}

func roleSchema(chunk types.JobTextChunk) llm.ExtractionSchema {
	t := prompts.MustGet(promptFile, GroupRole)
	return llm.ExtractionSchema{
		Name:        "Role",
		Description: prompts.Format(t.Description, map[string]string{"Index": strconv.Itoa(chunk.Index + 1)}),
		Fields: []llm.SchemaField{
			{Name: "title", Description: t.Field("title")},
			{Name: "company", Description: t.Field("company")},
			{Name: "start_date", Description: t.Field("start_date")},
			{Name: "end_date", Description: t.Field("end_date")},
			{Name: "bullet_points", Kind: llm.KindStringList, Description: t.Field("bullet_points"), Required: true},
		},
	}
}

// --- Response decoding ---

// decodeGroup repairs a model response and decodes it into v. A response
// wrapped in a one-element array is unwrapped.
func decodeGroup(group, response string, v any) error {
	repaired := llm.RepairJSON(response)
	if repaired == "" || repaired == "null" {
		return &ParseError{Group: group, Message: "empty response"}
	}

	if strings.HasPrefix(repaired, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(repaired), &items); err != nil {
			return &ParseError{Group: group, Message: "invalid JSON array", Cause: err}
		}
		if len(items) == 0 {
			return &ParseError{Group: group, Message: "empty array"}
		}
		repaired = string(items[0])
	}

	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return &ParseError{Group: group, Message: "invalid JSON", Cause: err}
	}
	return nil
}
