// Package dataset reads retention measurements from delimited text files
// and .xlsx workbooks.
//
// The first column holds the suction ψ and the second the volumetric water
// content θ; further columns are ignored. A leading header row names the two
// axes. The delimiter (comma, semicolon or tab) is detected from the first
// lines, and with a semicolon delimiter decimal commas are accepted. Rows
// with a missing cell are dropped; any other defect is a *errors.ParseError.
package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/wrcfit/pkg/errors"
	"github.com/YuminosukeSato/wrcfit/pkg/log"
	"github.com/YuminosukeSato/wrcfit/retention"
)

// Axis names used when the input has no header row.
const (
	DefaultPsiName   = "Psi"
	DefaultThetaName = "Theta"
)

const sniffLines = 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is an ingested measurement file.
type Table struct {
	Source    string
	PsiName   string
	ThetaName string
	Sample    retention.Sample
	// Dropped counts rows skipped for a missing cell.
	Dropped int
	// Delimiter is the detected field separator, zero for workbooks.
	Delimiter rune
}

// row is one input record with its 1-based line or sheet row number.
type row struct {
	line  int
	cells []string
}

// Open reads the measurement file at path. .xlsx and .xlsm workbooks are
// read from their first sheet; legacy .xls and .ods files are rejected with
// errors.ErrUnsupportedFormat.
func Open(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls", ".ods":
		return nil, errors.NewParseError(path, 0, "legacy spreadsheet input is not supported, save the sheet as .xlsx or CSV",
			errors.ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParseError(path, 0, "cannot open file", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(f, path)
	}
	return Read(f, path)
}

// Read parses a delimited table from r. source names the input in errors and
// logs.
func Read(r io.Reader, source string) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewParseError(source, 0, "read failed", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.NewParseError(source, 0, "no rows", errors.ErrEmptyData)
	}

	delim := sniff(raw)
	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				line = csvErr.Line
			}
			return nil, errors.NewParseError(source, line, "malformed row", err)
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row{line: line, cells: rec})
	}
	return build(source, delim, delim, rows)
}

// ReadWorkbook parses the first two columns of the first sheet of an .xlsx
// workbook with the same header and missing-cell rules as Read.
func ReadWorkbook(r io.Reader, source string) (*Table, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.NewParseError(source, 0, "cannot open workbook", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParseError(source, 0, "workbook has no sheets", errors.ErrEmptyData)
	}
	recs, err := wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewParseError(source, 0, fmt.Sprintf("read sheet %q", sheets[0]), err)
	}
	rows := make([]row, len(recs))
	for i, rec := range recs {
		rows[i] = row{line: i + 1, cells: rec}
	}
	return build(source, 0, ',', rows)
}

// build turns raw rows into a Table. delim is recorded on the table, numDelim
// decides whether decimal commas are accepted.
func build(source string, delim, numDelim rune, rows []row) (*Table, error) {
	t := &Table{
		Source:    source,
		PsiName:   DefaultPsiName,
		ThetaName: DefaultThetaName,
		Delimiter: delim,
	}

	var psi, theta []float64
	first := true
	for _, r := range rows {
		rec, line := r.cells, r.line
		if blank(rec) {
			continue
		}

		if first {
			first = false
			if len(rec) < 2 {
				return nil, errors.NewParseError(source, line,
					"need two columns: suction and water content", nil)
			}
			if isHeader(rec[0], rec[1], numDelim) {
				t.PsiName = strings.TrimSpace(rec[0])
				t.ThetaName = strings.TrimSpace(rec[1])
				continue
			}
		}

		if len(rec) < 2 || missing(rec[0]) || missing(rec[1]) {
			t.Dropped++
			continue
		}
		x, err := parseNumber(rec[0], numDelim)
		if err != nil {
			return nil, errors.NewParseError(source, line, fmt.Sprintf("suction %q is not a number", rec[0]), err)
		}
		y, err := parseNumber(rec[1], numDelim)
		if err != nil {
			return nil, errors.NewParseError(source, line, fmt.Sprintf("water content %q is not a number", rec[1]), err)
		}
		psi = append(psi, x)
		theta = append(theta, y)
	}

	if len(psi) == 0 {
		return nil, errors.NewParseError(source, 0, "no data rows", errors.ErrEmptyData)
	}
	var err error
	t.Sample, err = retention.NewSample(psi, theta)
	if err != nil {
		return nil, errors.NewParseError(source, 0, "invalid measurements", err)
	}

	log.GetLoggerWithName("dataset").Info("Sample loaded",
		log.OperationKey, log.OperationIngest,
		log.SourceKey, source,
		log.SamplesKey, t.Sample.Len(),
		log.DroppedKey, t.Dropped,
	)
	return t, nil
}

// isHeader reports whether the first row names the axes: neither cell is a
// number or a missing marker.
func isHeader(psi, theta string, delim rune) bool {
	for _, c := range []string{psi, theta} {
		if missing(c) {
			return false
		}
		if _, err := parseNumber(c, delim); err == nil {
			return false
		}
	}
	return true
}

// sniff picks the separator whose count is the same non-zero number on each
// of the first lines, preferring tab, then semicolon, then comma. Without a
// consistent candidate the most frequent one on the first line wins.
func sniff(raw []byte) rune {
	var lines []string
	for _, l := range strings.Split(string(raw), "\n") {
		if l = strings.TrimRight(l, "\r"); strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
		if len(lines) == sniffLines {
			break
		}
	}

	candidates := []rune{'\t', ';', ','}
	for _, c := range candidates {
		n := strings.Count(lines[0], string(c))
		if n == 0 {
			continue
		}
		consistent := true
		for _, l := range lines[1:] {
			if strings.Count(l, string(c)) != n {
				consistent = false
				break
			}
		}
		if consistent {
			return c
		}
	}

	best, bestN := ',', 0
	for _, c := range candidates {
		if n := strings.Count(lines[0], string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func missing(field string) bool {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "", "nan", "na", "n/a", "null", "none", "-":
		return true
	}
	return false
}

func parseNumber(field string, delim rune) (float64, error) {
	s := strings.TrimSpace(field)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && delim != ',' && strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if alt, altErr := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); altErr == nil {
			return alt, nil
		}
	}
	return v, err
}
