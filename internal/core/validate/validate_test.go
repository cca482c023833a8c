package validate

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonBlank(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"text", "call vendor", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NonBlank(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "NonBlank(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestItemID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"canonical", "task-a1b2c3d4", false},
		{"short hex", "task-abcd", false},
		{"empty string", "", true},
		{"missing prefix", "a1b2c3d4", true},
		{"uppercase hex", "task-A1B2C3D4", true},
		{"path traversal", "../task-a1b2c3d4", true},
		{"trailing text", "task-a1b2c3d4.md", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ItemID(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "ItemID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		})
	}
}

func TestQuarterAndYear(t *testing.T) {
	for q := 1; q <= 4; q++ {
		assert.NoError(t, Quarter(q))
	}
	assert.Error(t, Quarter(0))
	assert.Error(t, Quarter(5))

	assert.NoError(t, Year(2026))
	assert.Error(t, Year(0))
}

func TestItemIDField(t *testing.T) {
	err := ItemIDField("id", "nope")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "id", fieldErrs[0].Field)

	assert.NoError(t, ItemIDField("id", "task-0000aaaa"))
	assert.NoError(t, NonBlankField("text", "ok"))
	assert.Error(t, NonBlankField("text", " "))
}
