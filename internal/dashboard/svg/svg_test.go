package svg

import (
	"strings"
	"testing"
)

func TestLineRendersPathAndLabels(t *testing.T) {
	out, err := Line(720, 240, []float64{3, 7, 5}, []string{"Mon", "Tue", "Wed"}, LineOpts{Title: "Daily usage", ShowDots: true})
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "<path d=\"M") {
		t.Fatalf("expected line path, got %q", s)
	}
	if !strings.Contains(s, ">Tue<") {
		t.Fatalf("expected x-axis label")
	}
	if strings.Count(s, "<circle") != 3 {
		t.Fatalf("expected one dot per point")
	}
}

func TestLineRejectsMismatchedLabels(t *testing.T) {
	if _, err := Line(720, 240, []float64{1, 2}, []string{"a"}, LineOpts{}); err == nil {
		t.Fatal("expected error for mismatched labels")
	}
}

func TestBarsRendersBothSeries(t *testing.T) {
	out, err := Bars(720, 240, []float64{10, 20}, []float64{5, 8}, []string{"Jul", "Aug"}, BarOpts{Title: "Monthly movements"})
	if err != nil {
		t.Fatalf("bars: %v", err)
	}
	s := string(out)
	if strings.Count(s, "<rect") != 2*2+2 { // bars plus legend swatches
		t.Fatalf("unexpected rect count in %q", s)
	}
	if !strings.Contains(s, "Inward") || !strings.Contains(s, "Outward") {
		t.Fatalf("expected legend labels")
	}
}

func TestBarsEscapesLabels(t *testing.T) {
	out, err := Bars(720, 240, []float64{1}, nil, []string{"<script>"}, BarOpts{})
	if err != nil {
		t.Fatalf("bars: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Fatal("labels must be escaped")
	}
}
