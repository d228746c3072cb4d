package sanitize

import (
	"strings"
	"testing"
)

func TestCleanLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		keep bool
	}{
		{"empty", "", "", true},
		{"whitespace only", "   \t ", "", true},
		{"single letter", "a", "", false},
		{"single cyrillic letter", "я", "", false},
		{"pure symbols", "##", "", false},
		{"long symbol run", "------====------", "", false},
		{"numbered list marker", "1.", "1.", true},
		{"numbered list marker with digit", "2.", "2.", true},
		// Bare "-" and "•" fall to the length<2 rule and "*." to the
		// symbol-only rule before the list-marker pattern is consulted;
		// only digit-led markers like "1." survive.
		{"bare dash", "-", "", false},
		{"bare bullet", "•", "", false},
		{"asterisk with period", "*.", "", false},
		{"short non-marker", "ab!", "", false},
		{"ordinary text", "  Обычная строка текста  ", "Обычная строка текста", true},
		{"latin text", "plain text line", "plain text line", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, keep := CleanLine(tt.in)
			if keep != tt.keep {
				t.Fatalf("CleanLine(%q) keep = %v, want %v", tt.in, keep, tt.keep)
			}
			if keep && got != tt.want {
				t.Errorf("CleanLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanContentGluesSingleWordLines(t *testing.T) {
	src := "Это начало предложения\nНести\nвесть\nДальше текст."
	out := CleanContent(src)
	if !strings.Contains(out, "Нести весть") {
		t.Errorf("expected glued line %q in output:\n%s", "Нести весть", out)
	}
	if !strings.Contains(out, "Это начало предложения Нести весть") {
		t.Errorf("single words should attach to the preceding line:\n%s", out)
	}
}

func TestCleanContentDoesNotGlueOntoTOCLine(t *testing.T) {
	toc := "Нести весть ...................................................................194"
	src := toc + "\n\n<!-- Page 6 -->\n\nНести\nвесть\nОни вместе шли дальше."
	out := CleanContent(src)

	if !strings.Contains(out, toc) {
		t.Errorf("TOC line must appear verbatim:\n%s", out)
	}
	if !strings.Contains(out, "<!-- Page 6 -->") {
		t.Errorf("page marker missing:\n%s", out)
	}
	if !strings.Contains(out, "Нести весть\n") && !strings.HasSuffix(out, "Нести весть") {
		// The standalone words must still glue to each other after the marker.
		if !strings.Contains(out, "Нести весть") {
			t.Errorf("standalone words did not glue:\n%s", out)
		}
	}
	if strings.Contains(out, toc+" Нести") {
		t.Errorf("words were glued onto the TOC line:\n%s", out)
	}
}

func TestCleanContentHyphenWrap(t *testing.T) {
	src := "Этот текст про компь-\nютер\nи дальше."
	out := CleanContent(src)
	if !strings.Contains(out, "компьютер") {
		t.Errorf("hyphenated wrap not rejoined:\n%s", out)
	}
	if strings.Contains(out, "компь- ютер") || strings.Contains(out, "компь-ютер") {
		t.Errorf("hyphen should be stripped on rejoin:\n%s", out)
	}
}

func TestCleanContentNonBreakingHyphenWrap(t *testing.T) {
	src := "Слово компь‑\nютер"
	out := CleanContent(src)
	if !strings.Contains(out, "компьютер") {
		t.Errorf("non-breaking hyphen wrap not rejoined:\n%s", out)
	}
}

func TestGlueGuards(t *testing.T) {
	tests := []struct {
		name string
		last string
		cur  string
		want bool
	}{
		{"empty last", "", "слово", false},
		{"page marker last", "<!-- Page 3 -->", "слово", false},
		{"toc last", "Глава первая .......... 12", "слово", false},
		{"list marker current", "Обычный текст", "-пункт", false},
		{"digit current", "Обычный текст", "1слово", false},
		{"paren current", "Обычный текст", ")x", false},
		{"terminal period", "Предложение закончилось.", "слово", false},
		{"terminal colon", "Список:", "слово", false},
		{"terminal em dash", "Реплика —", "слово", false},
		{"terminal en dash", "Диапазон –", "слово", false},
		{"plain continuation", "Незаконченная строка", "слово", true},
		{"hyphen continuation", "перено-", "сится", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canGlue(tt.last, tt.cur); got != tt.want {
				t.Errorf("canGlue(%q, %q) = %v, want %v", tt.last, tt.cur, got, tt.want)
			}
		})
	}
}

func TestCleanContentPageMarkers(t *testing.T) {
	// Extra whitespace after "Page" is normalized away; the prefix itself
	// must match "<!-- Page" literally.
	src := "<!-- Page 1 -->\nТекст первой страницы\n<!-- Page  2 -->\nТекст второй страницы"
	out := CleanContent(src)

	for _, marker := range []string{"<!-- Page 1 -->", "<!-- Page 2 -->"} {
		if strings.Count(out, marker) != 1 {
			t.Errorf("marker %q should appear exactly once:\n%s", marker, out)
		}
	}
	if strings.Index(out, "<!-- Page 1 -->") > strings.Index(out, "<!-- Page 2 -->") {
		t.Errorf("markers out of order:\n%s", out)
	}
}

func TestCleanContentMarkerPrefixIsLiteral(t *testing.T) {
	// A doubled space between "<!--" and "Page" misses the marker prefix,
	// so the line goes through the ordinary content path untouched.
	src := "<!--  Page  3  -->\nТекст страницы"
	out := CleanContent(src)
	if !strings.Contains(out, "<!--  Page  3  -->") {
		t.Errorf("non-marker comment line should pass through verbatim:\n%s", out)
	}
	if strings.Contains(out, "<!-- Page 3 -->") {
		t.Errorf("non-marker comment line must not be canonicalized:\n%s", out)
	}
}

func TestCleanContentMalformedMarkerIsDropped(t *testing.T) {
	out := CleanContent("<!-- Page -->\nОбычный текст здесь")
	if strings.Contains(out, "Page") {
		t.Errorf("marker without a number must be dropped, got:\n%s", out)
	}
	if !strings.Contains(out, "Обычный текст здесь") {
		t.Errorf("content lost:\n%s", out)
	}
}

func TestCleanContentCollapsesBlankRuns(t *testing.T) {
	src := "Первый абзац текста\n\n\n\n\nВторой абзац текста"
	out := CleanContent(src)
	if strings.Contains(out, "\n\n\n\n") {
		t.Errorf("output contains 3+ consecutive empty lines:\n%q", out)
	}
	if !strings.Contains(out, "Первый абзац текста") || !strings.Contains(out, "Второй абзац текста") {
		t.Errorf("paragraph content lost:\n%q", out)
	}
}

func TestCleanContentSuppressesDuplicateLines(t *testing.T) {
	src := "Повторяющаяся строка\nПовторяющаяся строка\nПовторяющаяся строка\nДругая строка"
	out := CleanContent(src)
	if strings.Count(out, "Повторяющаяся строка") != 1 {
		t.Errorf("consecutive duplicates not collapsed:\n%s", out)
	}
}

func TestCleanContentTrimsEnds(t *testing.T) {
	src := "\n\n\nСодержимое документа\n\n\n"
	out := CleanContent(src)
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("output has leading or trailing empty lines: %q", out)
	}
	if out != "Содержимое документа" {
		t.Errorf("got %q", out)
	}
}

func TestCleanContentIdempotentWithoutMarkers(t *testing.T) {
	inputs := []string{
		"Первый абзац текста\n\nВторой абзац.\nНести\nвесть\n\n\n\n##\na\n1.",
		"Заголовок документа\n\nГлава первая .......... 12\nГлава вторая ......... 30",
		"Текст про компь-\nютер\nи прочее.",
		"",
	}
	for _, src := range inputs {
		once := CleanContent(src)
		twice := CleanContent(once)
		if once != twice {
			t.Errorf("not idempotent:\nfirst:\n%s\nsecond:\n%s", once, twice)
		}
	}
}

func TestCleanContentConvergesWithMarkers(t *testing.T) {
	// A page marker resets the blank counter to 1, so a cleaned document
	// can gain one more blank after each marker on the next pass. The
	// output reaches its fixed point on the second pass.
	src := "<!-- Page 1 -->\nПервый абзац текста\n\nВторой абзац.\n<!-- Page 2 -->\nТекст второй страницы"
	twice := CleanContent(CleanContent(src))
	thrice := CleanContent(twice)
	if twice != thrice {
		t.Errorf("second pass is not a fixed point:\nsecond:\n%s\nthird:\n%s", twice, thrice)
	}
}

func TestCleanContentMarkerFixedPoint(t *testing.T) {
	// A marker followed by two blank lines is already at the fixed point.
	src := "<!-- Page 1 -->\n\n\nТекст страницы"
	if out := CleanContent(src); out != src {
		t.Errorf("fixed-point input changed:\nin:\n%q\nout:\n%q", src, out)
	}
}

func TestCleanContentEmptyInput(t *testing.T) {
	if got := CleanContent(""); got != "" {
		t.Errorf("CleanContent(\"\") = %q, want \"\"", got)
	}
	if got := CleanContent("\n\n\n"); got != "" {
		t.Errorf("CleanContent(blank) = %q, want \"\"", got)
	}
}

func TestCleanContentKeepsMarkerAfterNoiseOnlyPage(t *testing.T) {
	src := "<!-- Page 1 -->\n##\n@@\n<!-- Page 2 -->\nНастоящий текст страницы"
	out := CleanContent(src)
	if !strings.Contains(out, "<!-- Page 1 -->") || !strings.Contains(out, "<!-- Page 2 -->") {
		t.Errorf("page markers must survive even when the page is pure noise:\n%s", out)
	}
}
