package prompt

import (
	"strings"
	"testing"
	"time"
)

func TestBuildInstruction(t *testing.T) {
	date := time.Date(1995, time.November, 2, 0, 0, 0, 0, time.UTC)
	past := "[1969: Moon landing, Sea of Tranquility], [1903: First flight, Kitty Hawk]\n"

	in := BuildInstruction(date, past)

	if !strings.Contains(in.System, "creative prompt engineer") {
		t.Errorf("system prompt missing persona: %q", in.System)
	}
	if !strings.Contains(in.System, "ASCII") {
		t.Errorf("system prompt missing ASCII constraint: %q", in.System)
	}
	if !strings.Contains(in.System, "watercolor") {
		t.Errorf("system prompt missing style: %q", in.System)
	}

	for _, want := range []string{
		"November 2",
		"[1969: Moon landing, Sea of Tranquility], [1903: First flight, Kitty Hawk]",
		"[Year: event, Location]",
		"A whimsical watercolor painting of...",
		"within 100 tokens",
		"Allowed punctuation",
	} {
		if !strings.Contains(in.User, want) {
			t.Errorf("user prompt missing %q:\n%s", want, in.User)
		}
	}
	if strings.Contains(in.User, "1995") {
		t.Errorf("user prompt should not pin the year: %q", in.User)
	}
}

func TestBuildInstructionNoPastEvents(t *testing.T) {
	in := BuildInstruction(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), "")
	if !strings.Contains(in.User, "(none yet)") {
		t.Errorf("expected placeholder for empty ledger:\n%s", in.User)
	}
	if !strings.Contains(in.User, "June 1") {
		t.Errorf("expected month/day in user prompt:\n%s", in.User)
	}
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "soup nazi",
			raw:      "[1995: The Soup Nazi, New York]\nA whimsical watercolor painting of a panda refusing to serve soup...",
			expected: "[1995: The Soup Nazi, New York]\nA whimsical watercolor painting of a panda refusing to serve soup...",
		},
		{
			name:     "cut mid sentence",
			raw:      "A whimsical watercolor painting of a panda at Carnaval. It dances with feathers and",
			expected: "A whimsical watercolor painting of a panda at Carnaval.",
		},
		{
			name:     "typography then cut",
			raw:      "  A panda in a café — sipping “tea”. Then it",
			expected: `A panda in a cafe - sipping "tea".`,
		},
		{
			name:     "no sentence",
			raw:      "A whimsical watercolor painting of",
			expected: "",
		},
		{name: "empty", raw: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Finalize(tt.raw); got != tt.expected {
				t.Errorf("Finalize(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestMonthDay(t *testing.T) {
	if got := MonthDay(time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC)); got != "February 29" {
		t.Errorf("MonthDay = %q", got)
	}
}
