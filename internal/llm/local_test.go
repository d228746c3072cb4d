package llm

import (
	"context"
	"math"
	"testing"
)

func TestLocalEmbedDeterministic(t *testing.T) {
	e := NewLocal(0)
	ctx := context.Background()

	a, err := e.EmbedTexts(ctx, []string{"столица России Москва"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.EmbedTexts(ctx, []string{"столица России Москва"})
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 1 || len(a[0]) != LocalEmbeddingDim {
		t.Fatalf("got %d vectors of dim %d", len(a), len(a[0]))
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("embedding not deterministic at %d: %v != %v", i, a[0][i], b[0][i])
		}
	}
}

func TestLocalEmbedNormalized(t *testing.T) {
	e := NewLocal(128)
	vecs, err := e.EmbedTexts(context.Background(), []string{"некоторый осмысленный текст для проверки"})
	if err != nil {
		t.Fatal(err)
	}
	sum := 0.0
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("vector norm^2 = %v, want 1", sum)
	}
}

func TestLocalEmbedSimilarTextsCloser(t *testing.T) {
	e := NewLocal(0)
	ctx := context.Background()
	vecs, err := e.EmbedTexts(ctx, []string{
		"Москва столица России",
		"столица России Москва город",
		"квантовая хромодинамика глюоны партоны",
	})
	if err != nil {
		t.Fatal(err)
	}
	dot := func(a, b []float32) float64 {
		s := 0.0
		for i := range a {
			s += float64(a[i]) * float64(b[i])
		}
		return s
	}
	if dot(vecs[0], vecs[1]) <= dot(vecs[0], vecs[2]) {
		t.Error("overlapping texts should score higher than unrelated text")
	}
}

func TestLocalEmbedEmptyText(t *testing.T) {
	e := NewLocal(16)
	vecs, err := e.EmbedTexts(context.Background(), []string{""})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vecs[0] {
		if v != 0 {
			t.Fatalf("empty text should embed to the zero vector, got %v", vecs[0])
		}
	}
}

func TestNewAnswererFallsBackToNoop(t *testing.T) {
	a := NewAnswerer(NewLocal(0))
	if _, ok := a.(Noop); !ok {
		t.Errorf("local embedder should pair with Noop answerer, got %T", a)
	}
	ans, err := a.Answer(context.Background(), "вопрос", "контекст")
	if err != nil || ans != "" {
		t.Errorf("Noop.Answer = %q/%v", ans, err)
	}
}
