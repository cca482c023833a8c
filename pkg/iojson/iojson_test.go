package iojson

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWith_MarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer

	require.NoError(t, WriteWith(&out, &errOut, map[string]any{"bad": make(chan int)}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "json_error")
}

func TestWriteLine(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, WriteLine(&out, map[string]string{"id": "task-0000aaaa"}))
	require.NoError(t, WriteLine(&out, map[string]string{"id": "task-0000bbbb"}))
	assert.Equal(t, "{\"id\":\"task-0000aaaa\"}\n{\"id\":\"task-0000bbbb\"}\n", out.String())
}

func TestMarshalError(t *testing.T) {
	got := MarshalError("item not found", map[string]any{"id": "task-0000aaaa"})
	assert.Contains(t, got, `"message": "item not found"`)
	assert.Contains(t, got, `"id": "task-0000aaaa"`)
}

func TestDecode(t *testing.T) {
	type input struct {
		Title string `json:"title"`
	}

	got, err := Decode[input](strings.NewReader(`{"title":"Fix login"}`))
	require.NoError(t, err)
	assert.Equal(t, "Fix login", got.Title)

	_, err = Decode[input](strings.NewReader(`{"titel":"typo"}`))
	require.Error(t, err)

	_, err = Decode[input](strings.NewReader(`not json`))
	require.Error(t, err)
}
