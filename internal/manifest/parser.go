// Package manifest parses the optional CSV manifest some gestorías attach
// to an upload, mapping each file to its document type. The files come out
// of Spanish desktop accounting tools, so separators, headers, and charsets
// follow their conventions.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	enc "github.com/ocrasesorias/facturas/internal/encoding"
	"github.com/ocrasesorias/facturas/internal/invoice"
)

const (
	colFile = "Archivo"
	colType = "Tipo"
)

// Parser reads manifest CSV exports (`;`-separated, header row required)
// and produces per-filename document type hints.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the document type hint per filename. Rows with an empty
// filename or an unknown type value are skipped; exports pad their files
// with footer rows and free-text notes.
func (p *Parser) Parse(r io.Reader) (map[string]invoice.DocumentType, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	fileIdx, typeIdx, headerIdx, ok := detectHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no manifest header found: expected %q and %q columns", colFile, colType)
	}

	hints := make(map[string]invoice.DocumentType)

	for _, row := range rows[headerIdx+1:] {
		filename := cellValue(row, fileIdx)
		if filename == "" {
			continue
		}

		docType, ok := parseDocumentType(cellValue(row, typeIdx))
		if !ok {
			continue
		}

		hints[filename] = docType
	}

	return hints, nil
}

// detectHeader scans rows for the one carrying both known columns. Exports
// often lead with title and date rows before the real header.
func detectHeader(rows [][]string) (fileIdx, typeIdx, headerIdx int, ok bool) {
	for rowIdx, row := range rows {
		fileIdx, typeIdx = -1, -1

		for i, cell := range row {
			switch strings.TrimSpace(cell) {
			case colFile:
				fileIdx = i
			case colType:
				typeIdx = i
			}
		}

		if fileIdx >= 0 && typeIdx >= 0 {
			return fileIdx, typeIdx, rowIdx, true
		}
	}

	return 0, 0, 0, false
}

// parseDocumentType maps a manifest type cell to a document type. Both the
// Spanish values and the API's own are accepted.
func parseDocumentType(s string) (invoice.DocumentType, bool) {
	switch strings.ToLower(s) {
	case "gasto", "compra", "expense":
		return invoice.DocumentExpense, true
	case "ingreso", "venta", "income":
		return invoice.DocumentIncome, true
	}

	return "", false
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
