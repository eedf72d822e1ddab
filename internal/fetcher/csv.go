// Package fetcher reads declaration-line tables from XLSX and CSV
// files into a raw header plus records.
package fetcher

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a CSV file and returns its header row and records.
// Files that are not valid UTF-8 are decoded as CP949 (EUC-KR),
// which Korean customs systems still emit.
func ReadCSV(path string) ([]string, [][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: read file")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		zap.L().Debug("csv: input not UTF-8, decoding as CP949", zap.String("path", path))
		r = transform.NewReader(bytes.NewReader(data), korean.EUCKR.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // exports pad or drop trailing cells

	var header []string
	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		if header == nil {
			header = record
			continue
		}
		records = append(records, record)
	}
	if header == nil {
		return nil, nil, eris.Errorf("csv: %s has no header row", path)
	}
	return header, records, nil
}
