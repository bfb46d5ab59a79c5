package tokens

import "testing"

func TestEstimator_Empty(t *testing.T) {
	e := New()
	if got := e.Estimate(""); got != 0 {
		t.Errorf("Estimate(\"\") = %d, want 0", got)
	}
}

func TestEstimator_Basic(t *testing.T) {
	e := New()
	got := e.Estimate("Hello, world!")
	if got <= 0 || got >= 10 {
		t.Errorf("Estimate(%q) = %d, want in (0, 10)", "Hello, world!", got)
	}
}

func TestEstimator_Deterministic(t *testing.T) {
	e := New()
	text := "The quick brown fox jumps over the lazy dog."
	a := e.Estimate(text)
	b := e.Estimate(text)
	if a != b {
		t.Errorf("Estimate() not deterministic: %d != %d", a, b)
	}
}

func TestEstimator_Batch(t *testing.T) {
	e := New()
	texts := []string{"Hello", "world", "!"}
	counts := e.EstimateBatch(texts)
	if len(counts) != 3 {
		t.Fatalf("got %d counts, want 3", len(counts))
	}
	for i, c := range counts {
		if c <= 0 {
			t.Errorf("counts[%d] = %d, want > 0", i, c)
		}
	}
}

func TestEstimator_LongerTextMoreTokens(t *testing.T) {
	e := New()
	short := e.Estimate("hi")
	long := e.Estimate("hi there, this is a much longer sentence with many more words in it")
	if long <= short {
		t.Errorf("Estimate(long) = %d, want > Estimate(short) = %d", long, short)
	}
}
