package policy

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// scanWindow bounds how far below a heading bullets are collected, so a
	// stray capitalized line pages later is not mistaken for the section.
	scanWindow = 120

	minItemLen     = 3
	maxItemLen     = 300
	maxHeadingWord = 7
)

var (
	headingPattern = regexp.MustCompile(`^[A-Z][A-Za-z ]{0,60}$`)
	bulletPattern  = regexp.MustCompile(`^(?:-|\*|\d+[.)]|□|▪|–)\s`)

	checklistHeadingKeys = []string{"checklist", "eligibility", "qualifications", "criteria"}
)

// isHeading matches short capitalized lines such as "Eligibility Criteria".
func isHeading(line string) bool {
	return headingPattern.MatchString(line) && len(strings.Fields(line)) <= maxHeadingWord
}

func isChecklistHeading(line string) bool {
	lower := strings.ToLower(line)
	for _, key := range checklistHeadingKeys {
		if strings.Contains(lower, key) {
			return true
		}
	}
	return false
}

// extractChecklist collects bullets under every checklist-like heading.
// Items are deduplicated in first-seen order and length filtered.
func extractChecklist(lines []string) []string {
	var items []string
	for i, line := range lines {
		if isHeading(line) && isChecklistHeading(line) {
			items = append(items, captureBullets(lines, i)...)
		}
	}
	return dedupe(items)
}

// captureBullets reads bullet items below the heading at start until the
// next heading or the end of the scan window. Lines without a bullet marker
// continue the previous item.
func captureBullets(lines []string, start int) []string {
	var items []string
	end := min(len(lines), start+scanWindow)

	for j := start + 1; j < end; j++ {
		if isHeading(lines[j]) {
			break
		}
		if !bulletPattern.MatchString(lines[j]) {
			continue
		}

		item := lines[j]
		for k := j + 1; k < len(lines) && !bulletPattern.MatchString(lines[k]) && !isHeading(lines[k]); k++ {
			if lines[k] != "" {
				item += " " + lines[k]
			}
		}
		items = append(items, strings.TrimSpace(bulletPattern.ReplaceAllString(item, "")))
	}
	return items
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		if n := utf8.RuneCountInString(item); n < minItemLen || n > maxItemLen {
			continue
		}
		out = append(out, item)
	}
	return out
}
