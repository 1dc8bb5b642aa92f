package surface

import (
	"encoding/json"
	"io"
)

// JSONRenderer marshals a Record to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, rec *Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rec)
}
