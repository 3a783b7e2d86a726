package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimQuotes(t *testing.T) {
	assert.Equal(t, "Atlas", TrimQuotes(`"Atlas"`))
	assert.Equal(t, "Atlas", TrimQuotes("Atlas"))
	assert.Equal(t, "", TrimQuotes(`""`))
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   \t ", nil},
		{"plain", "reload Minotaur 1", []string{"reload", "Minotaur", "1"}},
		{"quoted", `reload "Atlas AS7-D" 1`, []string{"reload", "Atlas AS7-D", "1"}},
		{"extra spaces", "  advance   3 ", []string{"advance", "3"}},
		{"empty quoted", `status ""`, []string{"status", ""}},
		{"escaped quote", `status "The ""Hound"""`, []string{"status", `The "Hound"`}},
		{"joined", `x"y z"w`, []string{"xy zw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitArgs(tt.line))
		})
	}
}
