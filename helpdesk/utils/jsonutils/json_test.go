package jsonutils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteKeepsHTMLCharacters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]string{"text": "Q&A <order>"}))
	assert.Equal(t, "{\n  \"text\": \"Q&A <order>\"\n}\n", buf.String())
}
