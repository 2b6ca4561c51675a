package parse

import (
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"
)

// Reads a CSV table into out, which must be a pointer to a slice of
// structs with csv tags.
//
// Unicode BOMs are stripped, CRLF and CR line endings normalized, and
// header names lower-cased before matching against the tags. If any
// of the required columns is missing, false is returned and out is
// left untouched.
func readTable(data io.Reader, out interface{}, required ...string) (bool, error) {
	buf, err := io.ReadAll(bom.NewReader(data))
	if err != nil {
		return false, errors.Wrap(err, "reading")
	}

	text := strings.ReplaceAll(string(buf), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimLeft(text, "\n")

	header, body, _ := strings.Cut(text, "\n")
	columns, err := newCSVReader(strings.NewReader(header)).Read()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "reading header")
	}

	present := map[string]bool{}
	for i, column := range columns {
		columns[i] = strings.ToLower(strings.TrimSpace(column))
		present[columns[i]] = true
	}
	for _, column := range required {
		if !present[column] {
			return false, nil
		}
	}

	normalized := strings.Join(columns, ",") + "\n" + body
	err = gocsv.UnmarshalCSV(newCSVReader(strings.NewReader(normalized)), out)
	if err != nil {
		return false, errors.Wrap(err, "unmarshaling")
	}

	return true, nil
}

// Splits LF separated lines into fields. A double quote toggles
// quoting and is dropped from the field, wherever in the field it
// appears, and commas are only delimiters outside quotes. Inside
// quotes, a doubled quote is a literal one. Blank lines are skipped
// and rows may have any number of fields.
type lineReader struct {
	lines []string
}

func newCSVReader(in io.Reader) gocsv.CSVReader {
	buf, err := io.ReadAll(in)
	if err != nil {
		return &lineReader{}
	}
	return &lineReader{lines: strings.Split(string(buf), "\n")}
}

func (r *lineReader) Read() ([]string, error) {
	for len(r.lines) > 0 {
		line := r.lines[0]
		r.lines = r.lines[1:]
		if strings.TrimSpace(line) == "" {
			continue
		}
		return splitLine(line), nil
	}
	return nil, io.EOF
}

func (r *lineReader) ReadAll() ([][]string, error) {
	records := [][]string{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func splitLine(line string) []string {
	fields := []string{}
	field := strings.Builder{}
	quoted := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && quoted && i+1 < len(line) && line[i+1] == '"':
			field.WriteByte('"')
			i++
		case c == '"':
			quoted = !quoted
		case c == ',' && !quoted:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(c)
		}
	}

	return append(fields, field.String())
}
