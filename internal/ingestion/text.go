package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpaceRe   = regexp.MustCompile(`[ \t\x{00A0}\x{2007}\x{202F}]+`)
	blankRunRe     = regexp.MustCompile(`\n\n\n+`)
	controlCharsRe = regexp.MustCompile(`[\x00-\x08\x0B\x0E-\x1F\x7F\x{FEFF}]`)
)

// CleanText normalizes converter output while preserving line structure:
// line endings become LF, page breaks become blank lines, runs of spaces
// collapse, and no more than one blank line separates paragraphs.
// Line order and bullet markers are kept so downstream segmentation can
// rely on them.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	// pdftotext separates pages with form feeds
	content = strings.ReplaceAll(content, "\f", "\n\n")
	content = controlCharsRe.ReplaceAllString(content, "")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = blankRunRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving indentation of bullets
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t\u00a0")
	trimmed := strings.TrimLeft(line, " \t\u00a0")
	if trimmed == "" {
		return ""
	}

	// Markdown headings lose their indentation
	if strings.HasPrefix(trimmed, "#") {
		return innerSpaceRe.ReplaceAllString(trimmed, " ")
	}

	indent := ""
	if isBulletLine(trimmed) {
		indent = strings.Repeat(" ", len(line)-len(trimmed))
	}
	return indent + innerSpaceRe.ReplaceAllString(trimmed, " ")
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, marker := range []string{"- ", "* ", "• ", "· ", "▪ ", "◦ ", "– "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}
