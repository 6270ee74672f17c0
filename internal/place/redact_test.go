package place

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/playperu/findyourcity/internal/catalog"
)

func TestRedact(t *testing.T) {
	r := NewRedactor([]string{"Lima", "Peru", "Mexico", "Mexico City", "São Paulo", "Reykjavík", "UK"})

	tests := []struct {
		name  string
		text  string
		extra []string
		want  string
	}{
		{
			name: "case insensitive",
			text: "You wake in LIMA, the capital of peru.",
			want: "You wake in [redacted], the capital of [redacted].",
		},
		{
			name: "whole words only",
			text: "You ferry out to Limassol and sip Peruvian coffee.",
			want: "You ferry out to Limassol and sip Peruvian coffee.",
		},
		{
			name: "longest first",
			text: "You commute across Mexico City before leaving Mexico.",
			want: "You commute across [redacted] before leaving [redacted].",
		},
		{
			name: "unicode names and boundaries",
			text: "You stroll São Paulo, then fly to Reykjavík's harbor.",
			want: "You stroll [redacted], then fly to [redacted]'s harbor.",
		},
		{
			name: "non-ascii neighbour is part of the word",
			text: "Limaé is not a city.",
			want: "Limaé is not a city.",
		},
		{
			name: "short tokens are skipped",
			text: "You queue politely, as everyone in the UK does.",
			want: "You queue politely, as everyone in the UK does.",
		},
		{
			name:  "extra names",
			text:  "You shop in Tbilisi, Georgia.",
			extra: []string{"Tbilisi", "Georgia"},
			want:  "You shop in [redacted], [redacted].",
		},
		{
			name:  "short extra names are redacted",
			text:  "You wake in Bo and take a bus toward Sierra Leone's coast.",
			extra: []string{"Bo", "Sierra Leone"},
			want:  "You wake in [redacted] and take a bus toward [redacted]'s coast.",
		},
		{
			name:  "blank extra names are ignored",
			text:  "You shop in Lima.",
			extra: []string{"", "  "},
			want:  "You shop in [redacted].",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Redact(tt.text, tt.extra...))
		})
	}
}

func TestRedactCatalogNames(t *testing.T) {
	r := NewRedactor(catalog.Default().Names())
	got := r.Redact("You catch the subway in Tokyo and ferries in New York, USA.")
	assert.Equal(t, "You catch the subway in [redacted] and ferries in [redacted], [redacted].", got)
}
