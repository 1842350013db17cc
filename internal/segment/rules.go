// Package segment locates the work experience section of a CV and splits it
// into one text chunk per role.
package segment

import "regexp"

// Boundary is a pattern whose matching line starts a new role chunk.
// Lines that also match Except are ignored.
type Boundary struct {
	Name    string
	Pattern *regexp.Regexp
	Except  *regexp.Regexp
}

// Match reports whether line starts a new role
func (b Boundary) Match(line string) bool {
	if !b.Pattern.MatchString(line) {
		return false
	}
	return b.Except == nil || !b.Except.MatchString(line)
}

// Rules is the heuristic configuration used by Segment. The patterns are
// plain data so new headings or date styles can be added without touching
// the scanning code.
type Rules struct {
	// SectionStart matches the whole text of the heading that opens the work
	// experience section, so taglines like "Customer Experience Manager" or
	// "B.A. Art History" do not qualify
	SectionStart *regexp.Regexp
	// SectionEnd matches the heading of the section that follows it
	SectionEnd *regexp.Regexp
	// RoleBoundaries start a new chunk
	RoleBoundaries []Boundary
	// MinChunkChars drops chunks shorter than this many characters as noise
	MinChunkChars int
	// MaxHeadingChars is the longest line still treated as a heading
	MaxHeadingChars int
	// CarryLines is how many short lines right above a boundary move into the
	// new chunk, so a title or company line printed above the dates stays
	// with its role
	CarryLines int
}

const (
	month     = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`
	year      = `(?:19|20)\d{2}`
	rangeSep  = `\s*(?:[-–—]+|to|until)\s*`
	openEnded = `(?:present|current|now|today)`

	sectionNames = `(?:education|skills|certifications?|projects|languages|awards|publications|references|` +
		`interests|volunteer(?:ing)?|summary|achievements|training|honors)`
)

// DefaultMinChunkChars is the minimum chunk length kept by DefaultRules
const DefaultMinChunkChars = 50

// DefaultRules returns the built-in English heading and date heuristics
func DefaultRules() Rules {
	return Rules{
		SectionStart: regexp.MustCompile(`(?i)^(?:(?:professional|work|relevant|career|employment)\s+)?` +
			`(?:experience|employment|(?:work|career|employment)\s+history)$`),
		SectionEnd: regexp.MustCompile(`(?i)^(?:[a-z]+\s+){0,2}` + sectionNames + `(?:\s*(?:&|and)\s*(?:[a-z]+\s*){1,2})?$`),
		RoleBoundaries: []Boundary{
			{
				Name:    "year-range",
				Pattern: regexp.MustCompile(`(?i)\b` + year + rangeSep + `(?:` + year + `|` + openEnded + `)\b`),
			},
			{
				Name:    "month-year-range",
				Pattern: regexp.MustCompile(`(?i)\b` + month + `\s+` + year + rangeSep + `(?:` + month + `\s+` + year + `|` + openEnded + `)\b`),
			},
			{
				Name:    "numeric-month-range",
				Pattern: regexp.MustCompile(`(?i)\b\d{1,2}/` + year + rangeSep + `(?:\d{1,2}/` + year + `|` + openEnded + `)\b`),
			},
			{
				Name:    "company-role",
				Pattern: regexp.MustCompile(`^[A-Z0-9][\w&.,'()/ -]{1,60}:\s+[A-Z][\w&.,'()/ -]{1,60}$`),
				Except: regexp.MustCompile(`(?i)^(?:tech(?:nologies|nology| stack)?|tools|stack|environment|skills|location|` +
					`responsibilities|achievements|client|team|languages|role|company|duration|period|dates?)\s*:`),
			},
		},
		MinChunkChars:   DefaultMinChunkChars,
		MaxHeadingChars: 60,
		CarryLines:      2,
	}
}
