package docket

import "testing"

func TestFormatAuthoritative(t *testing.T) {
	got := Format(2026, 123)
	if got != "WB-2026-000123" {
		t.Fatalf("format: want=WB-2026-000123 got=%s", got)
	}
	if !IsAuthoritative(got) {
		t.Fatalf("authority-issued number not recognized: %s", got)
	}
	if IsProvisional(got) {
		t.Fatalf("authority-issued number classified provisional: %s", got)
	}
}

func TestProvisionalMarker(t *testing.T) {
	got := Provisional("site7", 42)
	if got != "OFF-SITE7-00042" {
		t.Fatalf("provisional: want=OFF-SITE7-00042 got=%s", got)
	}
	if !IsProvisional(got) {
		t.Fatalf("provisional number not recognized: %s", got)
	}
	if IsAuthoritative(got) {
		t.Fatalf("provisional number classified authoritative: %s", got)
	}
}

func TestFormatsNeverCollide(t *testing.T) {
	// Same numeric value in both forms must render differently.
	a := Format(2026, 42)
	p := Provisional("WB", 42)
	if a == p {
		t.Fatalf("authoritative and provisional forms collided: %s", a)
	}
}
