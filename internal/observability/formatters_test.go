package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/cv-consolidator/internal/extraction"
	"github.com/jonathan/cv-consolidator/internal/types"
)

func sampleCV() *types.CanonicalCV {
	cv := types.NewCanonicalCV()
	cv.Identity.Name = types.Known("Maria Keller")
	cv.Roles = []types.RoleEntry{
		{Title: "Staff Engineer", Company: "Acme Corp", BulletPoints: []string{"Led team of 5 engineers"}},
		{Title: "Engineer", Company: "Globex", BulletPoints: []string{"Managed a team of five engineers"}},
	}
	cv.Skills = []types.SkillEntry{{Name: "Go"}}
	return cv
}

func TestPrintCV(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCV(sampleCV())
	output := buf.String()

	assert.Contains(t, output, "CONSOLIDATED CV")
	assert.Contains(t, output, "Maria Keller")
	assert.Contains(t, output, "Email:    unknown")
	assert.Contains(t, output, "Staff Engineer @ Acme Corp")
	assert.Contains(t, output, "Skills: 1")
}

func TestPrintCV_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCV(nil)
	assert.Empty(t, buf.String())
}

func TestPrintChunks(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	chunks := make([]types.JobTextChunk, 7)
	for i := range chunks {
		chunks[i] = types.JobTextChunk{Index: i, Text: "Engineer\nAcme | 2020 - 2021", Lines: types.LineRange{Start: i * 4, End: i*4 + 4}}
	}
	p.PrintChunks(types.LineRange{Start: 3, End: 40}, chunks)
	output := buf.String()

	assert.Contains(t, output, "SEGMENTED EXPERIENCE")
	assert.Contains(t, output, "Experience lines: 3-40")
	assert.Contains(t, output, "#1  lines 0-4  Engineer")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintExtractionReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	chunk := 0
	p.PrintExtractionReport(extraction.Report{
		Groups: []extraction.GroupReport{
			{Group: extraction.GroupIdentity, Status: extraction.StatusOK, DurationMS: 120},
			{Group: extraction.GroupRole, Chunk: &chunk, Status: extraction.StatusDefaulted, Reason: extraction.ReasonParse},
		},
		Defaulted: 1,
	})
	output := buf.String()

	assert.Contains(t, output, "EXTRACTION REPORT")
	assert.Contains(t, output, "Defaulted: 1")
	assert.Contains(t, output, "role #1")
	assert.Contains(t, output, "(parse_error)")
}

func TestPrintDuplicates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDuplicates(sampleCV(), []types.DuplicateCandidate{
		{RoleIndexA: 0, BulletIndexA: 0, RoleIndexB: 1, BulletIndexB: 0, SimilarityScore: 0.93},
		{RoleIndexA: 0, BulletIndexA: 9, RoleIndexB: 1, BulletIndexB: 0, SimilarityScore: 0.8},
	})
	output := buf.String()

	assert.Contains(t, output, "DUPLICATE BULLETS")
	assert.Contains(t, output, "similarity 0.93")
	assert.Contains(t, output, "A: Led team of 5 engineers")
	assert.Contains(t, output, "A: ?")
}

func TestPrintDuplicates_None(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintDuplicates(sampleCV(), nil)
	assert.Contains(t, buf.String(), "No cross-role duplicates")
}

func TestPrintLengthPlan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLengthPlan(&types.LengthPlan{TotalBullets: 40, TotalCharacters: 10000, EstimatedPages: 3, RecommendedBulletCount: 16, ReductionCount: 24})
	output := buf.String()

	assert.Contains(t, output, "LENGTH PLAN")
	assert.Contains(t, output, "Estimated pages:  3")
	assert.Contains(t, output, "Drop 24 bullet(s)")

	buf.Reset()
	p.PrintLengthPlan(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_Truncation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TEST", strings.Repeat("é", 100))
	output := buf.String()

	assert.Contains(t, output, "...")
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth, line)
	}
}
