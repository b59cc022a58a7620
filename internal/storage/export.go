package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/ljsim/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Samples []dynamo.Sample `json:"samples"`
}

// ExportJSON writes the metadata and full series of a stored run to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: *meta, Samples: samples})
}
