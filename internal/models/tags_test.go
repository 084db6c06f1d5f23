package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTags_RoundTripKeepsOrder(t *testing.T) {
	in := []string{"Trauma", "Anxiété", "Couple"}
	assert.Equal(t, in, DecodeTags(EncodeTags(in)))
}

func TestDecodeTags_Lenient(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"null", "null"},
		{"malformed", "[\"Trauma\""},
		{"object", `{"a":1}`},
		{"plain text", "Trauma, Couple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeTags(tt.raw)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestEncodeTags_Empty(t *testing.T) {
	assert.Equal(t, "[]", EncodeTags(nil))
	assert.Equal(t, "[]", EncodeTags([]string{}))
}

func TestValidateTags(t *testing.T) {
	assert.NoError(t, ValidateTags("languages", []string{"Français", "Anglais"}, Languages))
	assert.Error(t, ValidateTags("languages", nil, Languages))
	assert.Error(t, ValidateTags("languages", []string{"Klingon"}, Languages))
	assert.Error(t, ValidateTags("languages", []string{"Français", "Français"}, Languages))
}
