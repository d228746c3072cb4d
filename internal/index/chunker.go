// Package index splits Markdown documents into retrievable chunks and ranks
// them against queries with a hybrid of vector similarity and BM25.
package index

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	headingRe    = regexp.MustCompile(`^(#{1,3})\s+(.+?)\s*$`)
	pageMarkerRe = regexp.MustCompile(`^<!--\s*Page\s*(\d+)\s*-->$`)
)

// Chunk is one retrievable unit of a document.
type Chunk struct {
	Source  string // source file path, relative to the docs dir
	Page    int    // page the chunk's section starts on, 0 if unknown
	Section string // heading breadcrumb, e.g. "Глава 1 > Введение"
	Content string
	Tokens  int
	Vector  []float32
}

// EmbedInput is the text submitted to the embedder: the breadcrumb provides
// document context the chunk body alone lacks.
func (c Chunk) EmbedInput() string {
	crumb := c.Section
	if crumb == "" {
		crumb = c.Source
	}
	return fmt.Sprintf("[%s]\n%s", crumb, c.Content)
}

type section struct {
	headings []string
	page     int
	content  string
}

// ChunkDocument splits Markdown into chunks bounded by maxTokens with
// overlapTokens of carry-over between adjacent chunks. Heading structure
// (up to ###) scopes sections; <!-- Page N --> markers set page attribution
// and are not part of any chunk body.
func ChunkDocument(source, content string, maxTokens, overlapTokens int) []Chunk {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	sections := extractSections(content)
	if len(sections) == 0 {
		return nil
	}

	var chunks []Chunk
	for _, sec := range sections {
		text := strings.TrimSpace(sec.content)
		if text == "" {
			continue
		}
		label := strings.Join(sec.headings, " > ")
		for _, part := range splitWithOverlap(text, maxTokens, overlapTokens) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			chunks = append(chunks, Chunk{
				Source:  source,
				Page:    sec.page,
				Section: label,
				Content: part,
				Tokens:  TokenCount(part),
			})
		}
	}
	return chunks
}

// extractSections walks the document once, keeping a heading stack for
// breadcrumbs and the current page from page markers.
func extractSections(md string) []section {
	lines := strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n")
	var sections []section
	headingStack := make([]string, 0, 3)
	page := 0
	sectionPage := 0
	var buf strings.Builder

	flush := func() {
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}
		sections = append(sections, section{
			headings: append([]string(nil), headingStack...),
			page:     sectionPage,
			content:  text,
		})
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := pageMarkerRe.FindStringSubmatch(trimmed); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				page = n
			}
			continue
		}
		if m := headingRe.FindStringSubmatch(trimmed); m != nil {
			level := len(m[1])
			title := strings.TrimSpace(m[2])
			if title != "" {
				flush()
				for len(headingStack) >= level {
					headingStack = headingStack[:len(headingStack)-1]
				}
				for len(headingStack) < level-1 {
					headingStack = append(headingStack, "Section")
				}
				headingStack = append(headingStack, title)
				sectionPage = page
				continue
			}
		}
		if buf.Len() == 0 {
			sectionPage = page
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	flush()
	return sections
}

// splitWithOverlap produces token-bounded pieces, prepending the tail of the
// previous piece to each subsequent one.
func splitWithOverlap(text string, maxTokens, overlapTokens int) []string {
	base := recursiveSplit(text, maxTokens, []string{"\n\n", "\n", ". "})
	if overlapTokens <= 0 || len(base) <= 1 {
		return base
	}
	out := make([]string, 0, len(base))
	var prevTokens []string
	for i, piece := range base {
		toks := strings.Fields(piece)
		if i > 0 && len(prevTokens) > 0 {
			ov := prevTokens
			if len(ov) > overlapTokens {
				ov = ov[len(ov)-overlapTokens:]
			}
			toks = append(append([]string(nil), ov...), toks...)
		}
		out = append(out, strings.Join(toks, " "))
		prevTokens = strings.Fields(piece)
	}
	return out
}

// recursiveSplit splits text on coarser separators first, falling back to a
// sliding token window when nothing finer is available.
func recursiveSplit(text string, maxTokens int, separators []string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if TokenCount(text) <= maxTokens {
		return []string{text}
	}
	if len(separators) == 0 {
		return slidingTokenSplit(text, maxTokens)
	}
	sep := separators[0]
	parts := strings.Split(text, sep)
	if len(parts) <= 1 {
		return recursiveSplit(text, maxTokens, separators[1:])
	}

	grouped := make([]string, 0, len(parts))
	current := ""
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		candidate := part
		if current != "" {
			candidate = current + sep + part
		}
		if current == "" || TokenCount(candidate) <= maxTokens {
			current = candidate
			continue
		}
		grouped = append(grouped, current)
		current = part
	}
	if strings.TrimSpace(current) != "" {
		grouped = append(grouped, current)
	}

	out := make([]string, 0, len(grouped))
	for _, g := range grouped {
		if TokenCount(g) <= maxTokens {
			out = append(out, strings.TrimSpace(g))
			continue
		}
		out = append(out, recursiveSplit(g, maxTokens, separators[1:])...)
	}
	return out
}

func slidingTokenSplit(text string, maxTokens int) []string {
	toks := strings.Fields(text)
	if len(toks) == 0 {
		return nil
	}
	out := make([]string, 0, len(toks)/maxTokens+1)
	for start := 0; start < len(toks); start += maxTokens {
		end := min(start+maxTokens, len(toks))
		out = append(out, strings.Join(toks[start:end], " "))
	}
	return out
}

// TokenCount approximates token count as whitespace-separated fields.
func TokenCount(text string) int {
	return len(strings.Fields(text))
}
