package jsonutils

import (
	"encoding/json"
	"io"
)

// Write encodes v as indented JSON without HTML escaping, so customer text
// like "Q&A <order>" prints as typed.
func Write(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
