package segment

import (
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-consolidator/internal/types"
)

// Result is the work experience span of a document and its role chunks.
// Line offsets are document line indexes; Span is half-open.
type Result struct {
	Span   types.LineRange      `json:"span"`
	Chunks []types.JobTextChunk `json:"chunks"`
}

// Segment splits text using DefaultRules
func Segment(text string) Result {
	return DefaultRules().Segment(text)
}

// Segment locates the work experience span and splits it into role chunks.
// Every start heading is tried in order and the first span that yields a
// chunk wins. Without such a span the whole document is used.
// Without any role boundary the span becomes a single chunk.
// Chunks shorter than MinChunkChars are dropped.
func (r Rules) Segment(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Chunks: []types.JobTextChunk{}}
	}

	lines := strings.Split(text, "\n")
	for _, span := range r.candidateSpans(lines) {
		if chunks := r.chunk(lines, span); len(chunks) > 0 {
			return Result{Span: span, Chunks: chunks}
		}
	}

	whole := types.LineRange{Start: 0, End: len(lines)}
	return Result{
		Span:   whole,
		Chunks: r.chunk(lines, whole),
	}
}

// candidateSpans returns one span per start heading, in document order
func (r Rules) candidateSpans(lines []string) []types.LineRange {
	var spans []types.LineRange
	for i, line := range lines {
		if r.isHeading(line) && r.SectionStart.MatchString(headingText(line)) {
			spans = append(spans, types.LineRange{Start: i + 1, End: r.sectionEnd(lines, i+1)})
		}
	}
	return spans
}

func (r Rules) sectionEnd(lines []string, from int) int {
	for i := from; i < len(lines); i++ {
		if r.isHeading(lines[i]) && r.SectionEnd.MatchString(headingText(lines[i])) {
			return i
		}
	}
	return len(lines)
}

func (r Rules) chunk(lines []string, span types.LineRange) []types.JobTextChunk {
	var ranges []types.LineRange
	current := types.LineRange{Start: span.Start, End: span.Start}
	currentHasBoundary := false

	for i := span.Start; i < span.End; i++ {
		if !r.isBoundary(lines[i]) {
			current.End = i + 1
			continue
		}

		// Pull the title/company lines printed above the dates into the new role
		floor := current.Start
		if currentHasBoundary {
			floor = current.Start + 1
		}
		carryFrom := i
		for n := 0; n < r.CarryLines && carryFrom-1 >= floor && r.isCarryLine(lines[carryFrom-1]); n++ {
			carryFrom--
		}

		current.End = carryFrom
		ranges = append(ranges, current)
		current = types.LineRange{Start: carryFrom, End: i + 1}
		currentHasBoundary = true
	}
	ranges = append(ranges, current)

	chunks := make([]types.JobTextChunk, 0, len(ranges))
	for _, lr := range ranges {
		text := strings.TrimSpace(strings.Join(lines[lr.Start:lr.End], "\n"))
		if utf8.RuneCountInString(text) < r.MinChunkChars {
			continue
		}
		chunks = append(chunks, types.JobTextChunk{
			Index: len(chunks),
			Text:  text,
			Lines: lr,
		})
	}
	return chunks
}

func (r Rules) isBoundary(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || isBullet(trimmed) {
		return false
	}
	for _, b := range r.RoleBoundaries {
		if b.Match(trimmed) {
			return true
		}
	}
	return false
}

// isHeading reports whether line looks like a section heading: short, not a
// bullet, and not a sentence or a labelled value.
func (r Rules) isHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || isBullet(trimmed) {
		return false
	}
	if utf8.RuneCountInString(trimmed) > r.MaxHeadingChars {
		return false
	}
	if strings.HasSuffix(trimmed, ".") {
		return false
	}
	text := headingText(trimmed)
	return text != "" && !strings.Contains(text, ":")
}

// isCarryLine reports whether a line directly above a boundary belongs to
// the next role header
func (r Rules) isCarryLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || isBullet(trimmed) || r.isBoundary(trimmed) {
		return false
	}
	if strings.Contains(trimmed, ":") || strings.HasSuffix(trimmed, ".") {
		return false
	}
	return utf8.RuneCountInString(trimmed) <= r.MaxHeadingChars
}

// headingText strips markdown heading markers, emphasis and a trailing colon
func headingText(line string) string {
	text := strings.TrimSpace(line)
	text = strings.TrimLeft(text, "#*_= ")
	text = strings.TrimRight(text, "*_= ")
	text = strings.TrimSuffix(text, ":")
	return strings.TrimSpace(text)
}

func isBullet(trimmed string) bool {
	for _, marker := range []string{"- ", "* ", "• ", "· ", "▪ ", "◦ ", "– ", "+ "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}
