package options

import (
	"encoding/json"
	"io"

	"github.com/flarebyte/roast/internal/archive"
)

// Summary is the single JSON line printed after an archive is written.
type Summary struct {
	Output  string `json:"output"`
	Format  string `json:"format"`
	Digest  string `json:"digest"`
	Size    int64  `json:"size"`
	Entries int    `json:"entries"`
	Commit  string `json:"commit,omitempty"`
	Version string `json:"version,omitempty"`
}

// SummaryOf describes res.
func SummaryOf(res archive.Result) Summary {
	return Summary{
		Output:  res.Output,
		Format:  res.Format.String(),
		Digest:  res.Digest.String(),
		Size:    res.Size,
		Entries: len(res.Entries),
	}
}

// WriteJSON writes v as one JSON line.
func WriteJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
