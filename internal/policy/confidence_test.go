package policy

import "testing"

func TestClassifyTiers(t *testing.T) {
	p := NewConfidencePolicy()

	cases := []struct {
		tier string
		want Directive
	}{
		{"critical", AutoIsolate},
		{"high", RequireConfirmation},
		{"medium", RequireConfirmation},
		{"low", Skip},
	}
	for _, tc := range cases {
		if got := p.Classify(tc.tier); got != tc.want {
			t.Fatalf("Classify(%q) = %v, want %v", tc.tier, got, tc.want)
		}
	}
}

func TestClassifyNormalizesInput(t *testing.T) {
	p := NewConfidencePolicy()

	if got := p.Classify("CRITICAL"); got != AutoIsolate {
		t.Fatalf("Classify(CRITICAL) = %v, want AutoIsolate", got)
	}
	if got := p.Classify("  Low  "); got != Skip {
		t.Fatalf("Classify with whitespace = %v, want Skip", got)
	}
}

func TestClassifyUnknownTierRequiresConfirmation(t *testing.T) {
	p := NewConfidencePolicy()

	for _, tier := range []string{"", "severe", "informational"} {
		if got := p.Classify(tier); got != RequireConfirmation {
			t.Fatalf("Classify(%q) = %v, want RequireConfirmation", tier, got)
		}
	}
}

func TestDirectiveString(t *testing.T) {
	if AutoIsolate.String() != "auto_isolate" {
		t.Fatalf("AutoIsolate.String() = %q", AutoIsolate.String())
	}
	if RequireConfirmation.String() != "require_confirmation" {
		t.Fatalf("RequireConfirmation.String() = %q", RequireConfirmation.String())
	}
	if Skip.String() != "skip" {
		t.Fatalf("Skip.String() = %q", Skip.String())
	}
}
