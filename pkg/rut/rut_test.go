package rut

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.345.678-5", "123456785"},
		{"12345678-5", "123456785"},
		{"12345678k", "12345678K"},
		{" 7.654.321-6 ", "76543216"},
		{"07.654.321-6", "76543216"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"7.654.321-6", true},
		{"7654321-6", true},
		{"7.654.321-0", false},
		{"7.654.321-5", false},
		{"12.345.678-5", true},
		{"12345678-4", false},
		{"20.930.055-9", true},
		{"1-9", false},      // body too short
		{"123456a8-5", false}, // non-digit body
		{"", false},
		{"-", false},
	}
	for _, tt := range tests {
		if got := Validate(tt.in); got != tt.want {
			t.Errorf("Validate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate_SingleDigitMutation(t *testing.T) {
	// Any single-digit mutation of a valid body must fail against the
	// original check character.
	valid := "76543216"
	for i := 0; i < len(valid)-1; i++ {
		for d := byte('0'); d <= '9'; d++ {
			if valid[i] == d {
				continue
			}
			mutated := valid[:i] + string(d) + valid[i+1:]
			if Validate(mutated) {
				t.Errorf("Validate(%q) = true for mutated body", mutated)
			}
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123456785", "12.345.678-5"},
		{"76543216", "7.654.321-6"},
		{"12345678K", "12.345.678-K"},
		{"12.345.678-5", "12.345.678-5"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, r := range []string{"7654321-6", "12.345.678-5", "20930055-9"} {
		if !Validate(Format(Normalize(r))) {
			t.Errorf("round trip failed for %q", r)
		}
	}
}
