package index

import (
	"fmt"
	"strings"
	"testing"
)

func TestChunkDocumentSectionsAndPages(t *testing.T) {
	md := strings.Join([]string{
		"<!-- Page 1 -->",
		"# Руководство",
		"Вступительный текст первой страницы.",
		"",
		"## Установка",
		"Шаги установки описаны здесь.",
		"<!-- Page 2 -->",
		"## Настройка",
		"Параметры задаются в файле окружения.",
	}, "\n")

	chunks := ChunkDocument("guide.md", md, 500, 0)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}

	want := []struct {
		section string
		page    int
		body    string
	}{
		{"Руководство", 1, "Вступительный текст"},
		{"Руководство > Установка", 1, "Шаги установки"},
		{"Руководство > Настройка", 2, "Параметры задаются"},
	}
	for i, w := range want {
		if chunks[i].Section != w.section {
			t.Errorf("chunk %d section = %q, want %q", i, chunks[i].Section, w.section)
		}
		if chunks[i].Page != w.page {
			t.Errorf("chunk %d page = %d, want %d", i, chunks[i].Page, w.page)
		}
		if !strings.Contains(chunks[i].Content, w.body) {
			t.Errorf("chunk %d content %q missing %q", i, chunks[i].Content, w.body)
		}
		if chunks[i].Source != "guide.md" {
			t.Errorf("chunk %d source = %q", i, chunks[i].Source)
		}
	}
}

func TestChunkDocumentPageMarkersNotInBody(t *testing.T) {
	md := "<!-- Page 7 -->\nТекст страницы семь.\n<!-- Page 8 -->\nТекст страницы восемь."
	for _, ch := range ChunkDocument("doc.md", md, 500, 0) {
		if strings.Contains(ch.Content, "<!--") {
			t.Errorf("page marker leaked into chunk body: %q", ch.Content)
		}
	}
}

func TestChunkDocumentTokenBound(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Предложение номер %d содержит несколько слов подряд.\n\n", i)
	}
	chunks := ChunkDocument("long.md", b.String(), 30, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected document to split, got %d chunks", len(chunks))
	}
	for i, ch := range chunks {
		if ch.Tokens > 30 {
			t.Errorf("chunk %d has %d tokens, limit 30", i, ch.Tokens)
		}
	}
}

func TestChunkDocumentOverlap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "блок%d слово%d ещё%d\n\n", i, i, i)
	}
	chunks := ChunkDocument("ov.md", b.String(), 12, 3)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Content)
		carried := prev[len(prev)-1]
		if !strings.Contains(chunks[i].Content, carried) {
			t.Errorf("chunk %d missing overlap token %q from previous chunk", i, carried)
		}
	}
}

func TestChunkDocumentEmpty(t *testing.T) {
	if got := ChunkDocument("e.md", "", 500, 50); got != nil {
		t.Errorf("empty document produced chunks: %+v", got)
	}
	if got := ChunkDocument("w.md", "  \n\n\t\n", 500, 50); got != nil {
		t.Errorf("whitespace document produced chunks: %+v", got)
	}
}

func TestEmbedInputBreadcrumb(t *testing.T) {
	withSection := Chunk{Source: "a.md", Section: "Глава 1 > Введение", Content: "текст"}
	if got := withSection.EmbedInput(); got != "[Глава 1 > Введение]\nтекст" {
		t.Errorf("EmbedInput = %q", got)
	}
	plain := Chunk{Source: "a.md", Content: "текст"}
	if got := plain.EmbedInput(); got != "[a.md]\nтекст" {
		t.Errorf("EmbedInput without section = %q", got)
	}
}

func TestRecursiveSplitFallsBackToSentences(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "Это предложение номер %d из одного длинного абзаца. ", i)
	}
	parts := recursiveSplit(b.String(), 25, []string{"\n\n", "\n", ". "})
	if len(parts) < 2 {
		t.Fatalf("expected sentence-level split, got %d parts", len(parts))
	}
	for _, p := range parts {
		if TokenCount(p) > 25 {
			t.Errorf("part over limit (%d tokens): %q", TokenCount(p), p)
		}
	}
}
