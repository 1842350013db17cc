// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-consolidator/internal/extraction"
	"github.com/jonathan/cv-consolidator/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// PrintChunks outputs the work-experience span and the role chunks found in it.
func (p *Printer) PrintChunks(span types.LineRange, chunks []types.JobTextChunk) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Experience lines: %d-%d\n", span.Start, span.End))
	sb.WriteString(fmt.Sprintf("Role chunks:      %d\n", len(chunks)))

	count := min(len(chunks), maxItemsToShow)
	for i := 0; i < count; i++ {
		first, _, _ := strings.Cut(chunks[i].Text, "\n")
		sb.WriteString(fmt.Sprintf("  #%d  lines %d-%d  %s\n", chunks[i].Index+1, chunks[i].Lines.Start, chunks[i].Lines.End, first))
	}
	if len(chunks) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(chunks)-maxItemsToShow))
	}

	p.printBox("SEGMENTED EXPERIENCE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExtractionReport outputs the status of every extraction request.
func (p *Printer) PrintExtractionReport(report extraction.Report) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Requests: %d  Defaulted: %d  Discarded roles: %d\n\n",
		len(report.Groups), report.Defaulted, report.DiscardedRoles))

	for _, g := range report.Groups {
		name := g.Group
		if g.Chunk != nil {
			name = fmt.Sprintf("%s #%d", g.Group, *g.Chunk+1)
		}
		icon := "✅"
		if g.Status == extraction.StatusDefaulted {
			icon = "⚠️"
		}
		sb.WriteString(fmt.Sprintf("%s %-20s %6dms", icon, name, g.DurationMS))
		if g.Reason != "" {
			sb.WriteString(fmt.Sprintf("  (%s)", g.Reason))
		}
		sb.WriteString("\n")
	}

	p.printBox("EXTRACTION REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCV outputs a human-readable summary of the consolidated CV.
func (p *Printer) PrintCV(cv *types.CanonicalCV) {
	if cv == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", cv.Identity.Name))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", cv.Identity.Email))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", cv.Identity.Phone))
	sb.WriteString(fmt.Sprintf("Location: %s\n", cv.Identity.Address))
	sb.WriteString("\n")

	if len(cv.Roles) > 0 {
		sb.WriteString("Roles:\n")
		count := min(len(cv.Roles), maxItemsToShow)
		for i := 0; i < count; i++ {
			role := cv.Roles[i]
			sb.WriteString(fmt.Sprintf("  • %s @ %s (%d bullets)\n", role.Title, role.Company, len(role.BulletPoints)))
		}
		if len(cv.Roles) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(cv.Roles)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Education: %d  Skills: %d  Certifications: %d\n",
		len(cv.Education), len(cv.Skills), len(cv.Certifications)))

	p.printBox("CONSOLIDATED CV", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDuplicates outputs the duplicate bullet pairs with their wording.
func (p *Printer) PrintDuplicates(cv *types.CanonicalCV, duplicates []types.DuplicateCandidate) {
	if len(duplicates) == 0 {
		p.printBox("DUPLICATE BULLETS", "✅ No cross-role duplicates found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d candidate pair(s):\n\n", len(duplicates)))

	count := min(len(duplicates), maxItemsToShow)
	for i := 0; i < count; i++ {
		d := duplicates[i]
		sb.WriteString(fmt.Sprintf("#%d  similarity %.2f\n", i+1, d.SimilarityScore))
		sb.WriteString(fmt.Sprintf("    A: %s\n", bulletText(cv, d.RoleIndexA, d.BulletIndexA)))
		sb.WriteString(fmt.Sprintf("    B: %s\n", bulletText(cv, d.RoleIndexB, d.BulletIndexB)))
	}
	if len(duplicates) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(duplicates)-maxItemsToShow))
	}

	p.printBox("DUPLICATE BULLETS", strings.TrimSuffix(sb.String(), "\n"))
}

func bulletText(cv *types.CanonicalCV, role, bullet int) string {
	if cv == nil || role < 0 || role >= len(cv.Roles) {
		return "?"
	}
	bullets := cv.Roles[role].BulletPoints
	if bullet < 0 || bullet >= len(bullets) {
		return "?"
	}
	return bullets[bullet]
}

// PrintLengthPlan outputs the page estimate and the recommended reduction.
func (p *Printer) PrintLengthPlan(plan *types.LengthPlan) {
	if plan == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Bullets:          %d\n", plan.TotalBullets))
	sb.WriteString(fmt.Sprintf("Characters:       %d\n", plan.TotalCharacters))
	sb.WriteString(fmt.Sprintf("Estimated pages:  %d\n", plan.EstimatedPages))
	sb.WriteString(fmt.Sprintf("Keep bullets:     %d\n", plan.RecommendedBulletCount))
	if plan.NeedsReduction() {
		sb.WriteString(fmt.Sprintf("⚠️  Drop %d bullet(s) to fit", plan.ReductionCount))
	} else {
		sb.WriteString("✅ Fits the page budget")
	}

	p.printBox("LENGTH PLAN", sb.String())
}
