package chat

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/warp/loan-assistant/roster"
)

// cuePattern captures the text after a self-introduction up to the next
// punctuation mark. Group 1 is the cue, group 2 the candidate name.
var cuePattern = regexp.MustCompile(`(?i)\b(my name is|i am|this is|name:)\s*([^.,!?;:\n]+)`)

// strongCues name the speaker unambiguously. "i am" and "this is" also
// start ordinary sentences ("I am getting married").
var strongCues = map[string]bool{"my name is": true, "name:": true}

const minCandidateRunes = 2

// NameMatch is the result of name extraction.
type NameMatch struct {
	Name      string // resolved display name, "" when unresolved
	Candidate string // text captured after a strong cue
}

// Resolved reports whether a known employee was found.
func (m NameMatch) Resolved() bool { return m.Name != "" }

// NotFound reports a strong cue whose name matched no employee.
func (m NameMatch) NotFound() bool { return m.Name == "" && m.Candidate != "" }

// ExtractName finds an employee name in msg. Cue phrases are tried first;
// without a usable cue the whole message is scanned and a name is only
// accepted when exactly one employee matches.
func ExtractName(msg string, names []string) NameMatch {
	var match NameMatch
	for _, m := range cuePattern.FindAllStringSubmatch(msg, -1) {
		candidate := strings.TrimSpace(m[2])
		if utf8.RuneCountInString(candidate) < minCandidateRunes {
			continue
		}
		if name, ok := resolve(candidate, names); ok {
			return NameMatch{Name: name}
		}
		if strongCues[strings.ToLower(m[1])] && match.Candidate == "" {
			match.Candidate = candidate
		}
	}

	if name, ok := scan(msg, names); ok {
		return NameMatch{Name: name}
	}
	return match
}

// resolve matches a candidate against the known names: exact (folded)
// first, then unique containment in either direction.
func resolve(candidate string, names []string) (string, bool) {
	key := roster.Key(candidate)
	for _, n := range names {
		if roster.Key(n) == key {
			return n, true
		}
	}

	var found []string
	seen := make(map[string]bool)
	for _, n := range names {
		nk := roster.Key(n)
		if nk == "" || seen[nk] {
			continue
		}
		if strings.Contains(nk, key) || strings.Contains(key, nk) {
			seen[nk] = true
			found = append(found, n)
		}
	}
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}

func scan(msg string, names []string) (string, bool) {
	text := roster.Key(msg)
	var found []string
	seen := make(map[string]bool)
	for _, n := range names {
		nk := roster.Key(n)
		if utf8.RuneCountInString(nk) < minCandidateRunes || seen[nk] {
			continue
		}
		if strings.Contains(text, nk) {
			seen[nk] = true
			found = append(found, n)
		}
	}
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}

// synonym maps a phrase to a reason category. Order matters: the first
// matching entry wins, so the specific wedding phrases come before the
// generic ones.
type synonym struct {
	pattern  *regexp.Regexp
	category string
}

func word(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
}

var synonyms = []synonym{
	{word("hospital"), "Medical"},
	{word("surgery"), "Medical"},
	{word("treatment"), "Medical"},
	{word("doctor"), "Medical"},
	{word("medicine"), "Medical"},
	{word("sister's wedding"), "Sibling's wedding"},
	{word("brother's wedding"), "Sibling's wedding"},
	{word("sister's marriage"), "Sibling's wedding"},
	{word("brother's marriage"), "Sibling's wedding"},
	{word("daughter's wedding"), "Child's wedding"},
	{word("son's wedding"), "Child's wedding"},
	{word("daughter's marriage"), "Child's wedding"},
	{word("son's marriage"), "Child's wedding"},
	{word("nikah"), "Own wedding"},
	{word("my wedding"), "Own wedding"},
	{word("getting married"), "Own wedding"},
	{word("marriage"), "Own wedding"},
	{word("tuition"), "Education"},
	{word("school fee"), "Education"},
	{word("school fees"), "Education"},
	{word("university"), "Education"},
	{word("college"), "Education"},
	{word("renovation"), "Home renovation"},
	{word("repair"), "Home renovation"},
	{word("repairs"), "Home renovation"},
	{word("car"), "Vehicle purchase"},
	{word("bike"), "Vehicle purchase"},
	{word("motorcycle"), "Vehicle purchase"},
	{word("house"), "House purchase"},
	{word("flat"), "House purchase"},
	{word("apartment"), "House purchase"},
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// ExtractReason returns the first category named in msg, directly or
// through a synonym, or "" when none is found. Only categories present in
// the given list are ever returned.
func ExtractReason(msg string, categories []string) string {
	text := apostrophes.Replace(roster.Key(msg))

	known := make(map[string]string, len(categories))
	for _, c := range categories {
		k := roster.Key(c)
		known[k] = c
		if strings.Contains(text, k) {
			return c
		}
	}

	for _, s := range synonyms {
		c, ok := known[roster.Key(s.category)]
		if ok && s.pattern.MatchString(text) {
			return c
		}
	}
	return ""
}
