package ga4

import "testing"

func TestShare(t *testing.T) {
	if got := share(60, 80); got != 75 {
		t.Errorf("Expected 75, got %v", got)
	}
	if got := share(5, 0); got != 0 {
		t.Errorf("Zero total should yield zero share, got %v", got)
	}
}

func TestParseInt_DecimalFallback(t *testing.T) {
	if got := parseInt("1200"); got != 1200 {
		t.Errorf("Expected 1200, got %d", got)
	}
	if got := parseInt("1200.0"); got != 1200 {
		t.Errorf("Expected decimal string to parse as 1200, got %d", got)
	}
	if got := parseInt("junk"); got != 0 {
		t.Errorf("Expected 0 for unparseable value, got %d", got)
	}
}

func TestParseFloat(t *testing.T) {
	if got := parseFloat("0.455"); got != 0.455 {
		t.Errorf("Expected 0.455, got %v", got)
	}
	if got := parseFloat(""); got != 0 {
		t.Errorf("Expected 0 for empty value, got %v", got)
	}
}
