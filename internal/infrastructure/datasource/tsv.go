// Package datasource fetches the compound table from a URL, a local file or
// an object store and parses it as tab-separated values.
package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/turtacn/druglike/internal/domain/compound"
	"github.com/turtacn/druglike/pkg/errors"
)

// missingMarkers are the cell values treated as absent, matching the
// default NA tokens of common dataframe readers.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell counts as missing.
func IsMissing(cell string) bool {
	_, ok := missingMarkers[strings.TrimSpace(cell)]
	return ok
}

// ParseStats summarises one parse.
type ParseStats struct {
	Rows    int
	Dropped int
}

// ParseTSV reads a header line and data rows.  Rows with a missing value in
// any column, or with fewer or more fields than the header, are dropped.
// The header must contain generic_name and smiles.
func ParseTSV(r io.Reader) (*compound.Dataset, ParseStats, error) {
	var stats ParseStats

	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, stats, errors.New(errors.ErrCodeDatasetEmpty, "dataset has no header")
	}
	if err != nil {
		return nil, stats, errors.Wrap(err, errors.ErrCodeDatasetParseFailed, "failed to read header")
	}
	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		columns[i] = h
		index[h] = i
	}
	for _, req := range compound.RequiredColumns {
		if _, ok := index[req]; !ok {
			return nil, stats, errors.New(errors.ErrCodeDatasetColumnMissing, "required column missing").
				WithDetail(fmt.Sprintf("column=%s header=%v", req, columns))
		}
	}

	var records []compound.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, stats, errors.Wrap(err, errors.ErrCodeDatasetParseFailed, "failed to read row").
				WithDetail(fmt.Sprintf("line=%d", line))
		}
		stats.Rows++
		if !complete(row, len(columns)) {
			stats.Dropped++
			continue
		}
		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			fields[col] = strings.TrimSpace(row[i])
		}
		records = append(records, compound.Record{
			Name:   fields[compound.ColumnName],
			SMILES: fields[compound.ColumnSMILES],
			Fields: fields,
		})
	}
	return compound.New(columns, records), stats, nil
}

func complete(row []string, width int) bool {
	if len(row) != width {
		return false
	}
	for _, cell := range row {
		if IsMissing(cell) {
			return false
		}
	}
	return true
}
