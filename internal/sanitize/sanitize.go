// Package sanitize normalizes Markdown produced by PDF text extraction.
//
// The input is page-delimited text with <!-- Page N --> markers. The cleaner
// drops noise lines, collapses runs of blank lines, suppresses consecutive
// duplicates and re-joins single-word lines that were wrapped across
// extraction line breaks, while leaving page markers and table-of-contents
// lines untouched.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const pageMarkerPrefix = "<!-- Page"

var (
	// pageNumberRe extracts the numeric page id from a marker line.
	pageNumberRe = regexp.MustCompile(`Page\s*(\d+)`)

	// symbolOnlyRe matches lines with no Latin, Cyrillic or digit characters.
	symbolOnlyRe = regexp.MustCompile(`^[^\p{Latin}\p{Cyrillic}0-9]+$`)

	// listMarkerRe matches short list/numbering markers like "1.", "-", "•".
	listMarkerRe = regexp.MustCompile(`^[\d\-\*•]\.?$`)

	// tocLineRe matches table-of-contents entries: a dotted leader followed
	// by a trailing page number.
	tocLineRe = regexp.MustCompile(`\.{2,}\s*\d+\s*$`)
)

// CleanLine normalizes a single raw line. The second return value is false
// when the line is noise and must be dropped. Whitespace-only lines are kept
// as "" so paragraph separation survives.
func CleanLine(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", true
	}
	if utf8.RuneCountInString(trimmed) < 2 && !strings.HasPrefix(trimmed, "<!--") {
		return "", false
	}
	if symbolOnlyRe.MatchString(trimmed) {
		return "", false
	}
	if utf8.RuneCountInString(trimmed) <= 3 && !strings.HasPrefix(trimmed, "<!--") &&
		!listMarkerRe.MatchString(trimmed) {
		return "", false
	}
	return trimmed, true
}

// CleanContent cleans a whole document in one forward pass with a single
// line of lookback. It never fails and performs no I/O.
func CleanContent(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	prev := ""
	consecutiveEmpty := 0

	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)

		// Page markers take absolute precedence. A marker without an
		// extractable number is dropped without emitting anything.
		if strings.HasPrefix(trimmed, pageMarkerPrefix) {
			if m := pageNumberRe.FindStringSubmatch(trimmed); m != nil {
				out = append(out, "<!-- Page "+m[1]+" -->", "")
				prev = ""
				consecutiveEmpty = 1
			}
			continue
		}

		if trimmed == "" {
			consecutiveEmpty++
			if consecutiveEmpty > 2 {
				continue
			}
			out = append(out, "")
			prev = ""
			continue
		}

		// Glue heuristic runs before the generic filter: a one-word line
		// that would otherwise be discarded as noise may survive by being
		// absorbed into the previous line.
		if isSingleToken(trimmed) && len(out) > 0 {
			last := out[len(out)-1]
			if canGlue(last, trimmed) {
				glued := glueWord(last, trimmed)
				out[len(out)-1] = glued
				prev = glued
				consecutiveEmpty = 0
				continue
			}
		}

		cleaned, ok := CleanLine(raw)
		if !ok {
			continue
		}
		if cleaned == prev && cleaned != "" {
			continue
		}
		if cleaned == "" {
			consecutiveEmpty++
			if consecutiveEmpty > 2 {
				continue
			}
		} else {
			consecutiveEmpty = 0
		}
		out = append(out, cleaned)
		prev = cleaned
	}

	start, end := 0, len(out)
	for start < end && out[start] == "" {
		start++
	}
	for end > start && out[end-1] == "" {
		end--
	}
	return strings.Join(out[start:end], "\n")
}

func isSingleToken(trimmed string) bool {
	return strings.IndexFunc(trimmed, unicode.IsSpace) < 0
}

// canGlue reports whether a single-word line may be merged into the last
// emitted line. Guards are checked in order; the first match suppresses
// gluing.
func canGlue(last, cur string) bool {
	if last == "" || strings.HasPrefix(last, pageMarkerPrefix) {
		return false
	}
	if tocLineRe.MatchString(last) {
		return false
	}
	if startsListOrHeading(cur) {
		return false
	}
	if endsSentence(last) {
		return false
	}
	return true
}

// startsListOrHeading reports whether the line looks like the start of a
// list item or numbered heading rather than a wrapped word.
func startsListOrHeading(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	switch r {
	case '-', '*', ')', '.':
		return true
	}
	return unicode.IsDigit(r)
}

// endsSentence reports whether the line already ends a sentence or heading.
// ASCII hyphens are deliberately excluded: a trailing hyphen signals a
// wrapped word, not a finished sentence.
func endsSentence(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	if size == 0 {
		return false
	}
	switch r {
	case '.', '!', '?', ':', '–', '—':
		return true
	}
	return false
}

// glueWord appends word to last, undoing a hyphenated word break when last
// ends with an ASCII or non-breaking hyphen.
func glueWord(last, word string) string {
	if strings.HasSuffix(last, "-") {
		return strings.TrimSuffix(last, "-") + word
	}
	if strings.HasSuffix(last, "‑") {
		return strings.TrimSuffix(last, "‑") + word
	}
	return last + " " + word
}
