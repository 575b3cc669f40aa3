package core

import "testing"

func TestParseAction(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Action
	}{
		{"left", "left", ActionLeft},
		{"right", "right", ActionRight},
		{"soft drop", "down", ActionDown},
		{"rotate", "rotate", ActionRotate},
		{"hard drop", "drop", ActionDrop},
		{"start", "start", ActionStart},
		{"upper case", "LEFT", ActionNone},
		{"surrounding spaces", " start ", ActionNone},
		{"mixed case and spaces", "  Rotate ", ActionNone},
		{"unknown", "hold", ActionNone},
		{"empty", "", ActionNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseAction(tc.input); got != tc.expected {
				t.Errorf("ParseAction(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestActionStringRoundTrip(t *testing.T) {
	for _, a := range Actions() {
		if got := ParseAction(a.String()); got != a {
			t.Errorf("ParseAction(%q) = %v, expected %v", a.String(), got, a)
		}
	}

	if Action(99).String() != "unknown" {
		t.Error("out-of-range action should print as unknown")
	}
}
