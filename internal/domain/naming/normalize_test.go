package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"ATP synthase", "atp synthase"},
		{"atp-synthase", "atp synthase"},
		{"ATP Synthase ", "atp synthase"},
		{"  (S)-Malate  dehydrogenase;;", "s malate dehydrogenase"},
		{"Café", "cafe"},
		{"STRASSE", "strasse"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("atp synthase", "atp synthase"))
	assert.InDelta(t, 11.0/12.0, Similarity("atp synthse", "atp synthase"), 1e-9)
	assert.Equal(t, 0.0, Similarity("abc", ""))
	assert.InDelta(t, Similarity("kinase", "kinsae"), Similarity("kinsae", "kinase"), 1e-12)
}

//Personal.AI order the ending
