package identity

import "testing"

func TestEqualIgnoresCase(t *testing.T) {
	tests := []struct {
		a, b Address
		want bool
	}{
		{"0xAbC", "0xabc", true},
		{"0xabc", " 0xabc ", true},
		{"0xabc", "0xdef", false},
		{Zero, Zero, true},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  0xAbCdEf "); got != "0xabcdef" {
		t.Errorf("Normalize() = %q", got)
	}
}

func TestIsZero(t *testing.T) {
	if !Zero.IsZero() || !Address("   ").IsZero() {
		t.Errorf("blank addresses must be zero")
	}
	if Address("0xabc").IsZero() {
		t.Errorf("non-blank address must not be zero")
	}
}
