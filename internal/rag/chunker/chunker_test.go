package chunker

import (
	"errors"
	"strings"
	"testing"

	"docassist/internal/domain/ragmodel"
)

func TestSplit_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"Zero_Size", 0, 0},
		{"Negative_Size", -1, 0},
		{"Negative_Overlap", 10, -1},
		{"Overlap_Equals_Size", 10, 10},
		{"Overlap_Exceeds_Size", 10, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("doc", "some text", tt.size, tt.overlap)
			if !errors.Is(err, ragmodel.ErrInvalidConfig) {
				t.Errorf("Split(size=%d, overlap=%d) err = %v; want ErrInvalidConfig", tt.size, tt.overlap, err)
			}
		})
	}
}

func TestSplit_ReconstructsOriginalText(t *testing.T) {
	texts := []string{
		"The sky is blue. Grass is green.",
		strings.Repeat("abcdefghij", 53),
		"short",
		"exactly twenty chars",
	}

	configs := []struct{ size, overlap int }{
		{20, 5},
		{10, 0},
		{100, 30},
		{7, 3},
	}

	for _, text := range texts {
		for _, cfg := range configs {
			chunks, err := Split("d1", text, cfg.size, cfg.overlap)
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}

			var rebuilt strings.Builder
			for i, c := range chunks {
				if c.Text == "" {
					t.Errorf("chunk %d is empty for size=%d overlap=%d", i, cfg.size, cfg.overlap)
				}
				if text[c.Start:c.End] != c.Text {
					t.Errorf("chunk %d offsets [%d:%d] do not match its text", i, c.Start, c.End)
				}
				if i == 0 {
					rebuilt.WriteString(c.Text)
				} else {
					rebuilt.WriteString(c.Text[cfg.overlap:])
				}
			}

			if rebuilt.String() != text {
				t.Errorf("reassembly mismatch for size=%d overlap=%d:\ngot  %q\nwant %q",
					cfg.size, cfg.overlap, rebuilt.String(), text)
			}
		}
	}
}

func TestSplit_ChunkCountFormula(t *testing.T) {
	tests := []struct {
		name    string
		textLen int
		size    int
		overlap int
	}{
		{"Spec_Example", 32, 20, 5},
		{"Single_Window", 20, 20, 5},
		{"One_Over", 21, 20, 5},
		{"Large", 5000, 1000, 150},
		{"No_Overlap", 45, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("x", tt.textLen)
			chunks, err := Split("d1", text, tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}

			step := tt.size - tt.overlap
			want := (tt.textLen - tt.overlap + step - 1) / step
			if len(chunks) != want {
				t.Errorf("chunk count = %d; want %d", len(chunks), want)
			}

			for i, c := range chunks {
				if c.Seq != i {
					t.Errorf("chunk %d has Seq %d", i, c.Seq)
				}
				if i < len(chunks)-1 && len(c.Text) != tt.size {
					t.Errorf("non-final chunk %d has length %d; want %d", i, len(c.Text), tt.size)
				}
			}
		})
	}
}

func TestSplit_EmptyAndDeterministic(t *testing.T) {
	if chunks, err := Split("d1", "", 10, 2); err != nil || len(chunks) != 0 {
		t.Errorf("Split on empty text = (%v, %v); want no chunks, no error", chunks, err)
	}

	text := "The sky is blue. Grass is green."
	a, _ := Split("d1", text, 20, 5)
	b, _ := Split("d1", text, 20, 5)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic chunk count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
	if len(a) != 2 {
		t.Errorf("example document produced %d chunks; want 2", len(a))
	}
}
