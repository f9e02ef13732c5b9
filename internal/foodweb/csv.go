package foodweb

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/befsim/internal/dynamo"
)

// ReadCSV parses a comma separated 0/1 matrix and validates it.
func ReadCSV(r io.Reader) (Matrix, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	m := make(Matrix, 0, len(records))
	for i, record := range records {
		row := make([]int, len(record))
		for j, field := range record {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, dynamo.Invalidf("row %d column %d: %q is not an integer", i, j, field)
			}
			row[j] = v
		}
		m = append(m, row)
	}

	if err := Check(m); err != nil {
		return nil, err
	}
	return m, nil
}

func WriteCSV(w io.Writer, m Matrix) error {
	cw := csv.NewWriter(w)
	for _, row := range m {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = strconv.Itoa(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
