// Package export renders built SFDR states for downstream consumers: a
// JSON record per extraction run and an XLSX summary across states.
package export

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"regintel/internal/domain"
)

// Metadata describes the extraction run that produced a state.
type Metadata struct {
	DocumentID   uuid.UUID `json:"document_id"`
	ISIN         string    `json:"isin"`
	DocumentType string    `json:"document_type"`
	Worker       string    `json:"worker"`
}

// Record pairs a built state with its run metadata.
type Record struct {
	State    *domain.SFDRState `json:"state"`
	Metadata Metadata          `json:"metadata"`
}

// WriteJSON writes the record to w as indented JSON.
func WriteJSON(w io.Writer, rec *Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
