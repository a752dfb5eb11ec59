package sanitize

import (
	"regexp"
	"strings"
	"testing"
)

var allowed = regexp.MustCompile(`^[a-zA-Z0-9 \-_#.]*$`)

func TestFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{
			name:  "accented turkish title with emoji",
			input: "Büyük Şehir: Canlı! 🎬",
			max:   100,
			want:  "Buyuk Sehir Canl",
		},
		{
			name:  "illegal path characters removed",
			input: `a\b/c*d?e:f"g<h>i|j`,
			max:   100,
			want:  "abcdefghij",
		},
		{
			name:  "separator runs collapse to single underscore",
			input: "one -- two __ three",
			max:   100,
			want:  "one _ two _ three",
		},
		{
			name:  "whitespace runs collapse",
			input: "too   many\t\tspaces",
			max:   100,
			want:  "too many spaces",
		},
		{
			name:  "kept characters survive",
			input: "Track #4 - v2.0",
			max:   100,
			want:  "Track #4 _ v2.0",
		},
		{
			name:  "truncation backs off to word boundary",
			input: "alpha beta gamma",
			max:   12,
			want:  "alpha beta",
		},
		{
			name:  "no space means hard truncate",
			input: "abcdefghijklmnop",
			max:   10,
			want:  "abcdefghij",
		},
		{
			name:  "empty input",
			input: "",
			max:   100,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filename(tt.input, tt.max)
			if got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilenameInvariants(t *testing.T) {
	inputs := []string{
		"Büyük Şehir: Canlı! 🎬",
		strings.Repeat("word ", 100),
		strings.Repeat("x", 500),
		"日本語タイトル only ascii survives",
		"  leading and trailing   ",
	}

	for _, in := range inputs {
		got := Filename(in, DefaultMaxLength)
		if len(got) > DefaultMaxLength {
			t.Errorf("Filename(%q) length %d exceeds max", in, len(got))
		}
		if !allowed.MatchString(got) {
			t.Errorf("Filename(%q) = %q contains disallowed characters", in, got)
		}
		if got != Filename(in, DefaultMaxLength) {
			t.Errorf("Filename(%q) not deterministic", in)
		}
	}
}
