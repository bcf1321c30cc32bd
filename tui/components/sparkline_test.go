package components

import "testing"

func TestSparkline(t *testing.T) {
	data := []float64{0, 25, 50, 75, 100, 50, 25, 0}
	result := Sparkline(data, 8)
	if len([]rune(result)) != 8 {
		t.Errorf("expected 8 chars, got %d", len([]rune(result)))
	}
	runes := []rune(result)
	if runes[0] != blocks[0] || runes[4] != blocks[len(blocks)-1] {
		t.Errorf("expected lowest and highest blocks, got %q", result)
	}
}

func TestSparklineEmpty(t *testing.T) {
	result := Sparkline(nil, 8)
	if result != "        " {
		t.Errorf("expected 8 spaces for empty data, got %q", result)
	}
	if Sparkline([]float64{1}, 0) != "" {
		t.Error("expected empty string for zero width")
	}
}

func TestSparklineSingleValue(t *testing.T) {
	result := Sparkline([]float64{50}, 4)
	if len([]rune(result)) != 4 {
		t.Errorf("expected 4 chars, got %d", len([]rune(result)))
	}
}

func TestSparklineKeepsNewest(t *testing.T) {
	result := []rune(Sparkline([]float64{100, 0, 1}, 2))
	if len(result) != 2 || result[0] != blocks[0] || result[1] != blocks[len(blocks)-1] {
		t.Errorf("expected the two newest values, got %q", string(result))
	}
}

func TestFormatDelta(t *testing.T) {
	tests := []struct {
		pp       float64
		expected string
	}{
		{0, "±0.00pp"},
		{0.001, "±0.00pp"},
		{1.5, "+1.50pp"},
		{-0.25, "-0.25pp"},
	}
	for _, tt := range tests {
		if got := FormatDelta(tt.pp); got != tt.expected {
			t.Errorf("FormatDelta(%f) = %q, want %q", tt.pp, got, tt.expected)
		}
	}
}

func TestSparklineFlat(t *testing.T) {
	result := []rune(Sparkline([]float64{8.18, 8.18, 8.18}, 5))
	if string(result[:2]) != "  " {
		t.Errorf("expected left padding, got %q", string(result))
	}
	for _, r := range result[2:] {
		if r != blocks[len(blocks)/2] {
			t.Errorf("flat series should sit at mid height, got %q", string(result))
			break
		}
	}
}
