package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/liamcoop/bpmnconstraints/compiler"
)

// Export is the on-disk form of a compiled model: one list per output format.
type Export struct {
	DeclareModel []string `json:"declare_model"`
	LTLModel     []string `json:"ltl_model"`
}

// NewExport builds the export of m.
func NewExport(m *Model) Export {
	return Export{
		DeclareModel: m.Strings(compiler.FormatDeclare),
		LTLModel:     m.Strings(compiler.FormatLTLf),
	}
}

// WriteJSON writes the export of m to w, indented.
func WriteJSON(w io.Writer, m *Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewExport(m)); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// SaveFile writes the export of m to path.
func SaveFile(path string, m *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteJSON(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSON reads an export written by WriteJSON.
func ReadJSON(r io.Reader) (Export, error) {
	var e Export
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return Export{}, fmt.Errorf("failed to decode model export: %w", err)
	}
	return e, nil
}
