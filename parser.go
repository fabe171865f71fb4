// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.
package cushion

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Delimiter is the cell separator of a delimited text file.
type Delimiter rune

// The supported delimiters.
const (
	Comma Delimiter = ','
	Tab   Delimiter = '\t'
	Space Delimiter = ' '
)

var delimiterNames = map[string]Delimiter{
	"comma": Comma,
	",":     Comma,
	"tab":   Tab,
	"\t":    Tab,
	"space": Space,
	" ":     Space,
}

// ParseDelimiter accepts a delimiter name ("comma", "tab", "space") or the
// delimiter character itself.
func ParseDelimiter(s string) (Delimiter, error) {
	if d, ok := delimiterNames[s]; ok {
		return d, nil
	}
	return 0, &statusError{status: http.StatusBadRequest, msg: "unsupported delimiter " + strconv.Quote(s)}
}

func (d Delimiter) String() string {
	switch d {
	case Comma:
		return "comma"
	case Tab:
		return "tab"
	case Space:
		return "space"
	}
	return string(rune(d))
}

// Row is one data row: the non-empty cells keyed by their column name.
type Row struct {
	// Line is the 1-based line (or spreadsheet row) the row started on.
	Line   int
	Values map[string]string
}

// RowSource is a forward-only sequence of rows. Next returns io.EOF after
// the last row.
type RowSource interface {
	Header() []string
	Next(*Row) error
}

type cellReader interface {
	// Read returns the cells of the next record and the line it started on.
	Read() ([]string, int, error)
}

// Parser reads rows from tabular input. The first record names the columns;
// columns with an empty name are ignored. Cells beyond the header are
// dropped, missing trailing cells and empty cells are omitted from the row,
// and records with no non-empty cell are skipped.
type Parser struct {
	src     cellReader
	closer  io.Closer
	header  []string
	columns []int
}

var _ RowSource = &Parser{}

// NewParser reads the header from r, a delimited text stream in UTF-8, and
// returns a parser positioned at the first data row. A leading byte order
// mark is dropped, and a UTF-16 one switches decoding to UTF-16. Invalid
// UTF-8 is reported as malformed input. An empty stream yields an empty
// header and no rows.
func NewParser(r io.Reader, d Delimiter) (*Parser, error) {
	if d == 0 {
		d = Comma
	}
	text := transform.Chain(unicode.BOMOverride(transform.Nop), encoding.UTF8Validator)
	cr := csv.NewReader(transform.NewReader(r, text))
	cr.Comma = rune(d)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return newParser(&csvReader{r: cr}, nil)
}

func newParser(src cellReader, closer io.Closer) (*Parser, error) {
	p := &Parser{src: src, closer: closer}
	cells, _, err := src.Read()
	if err == io.EOF {
		return p, nil
	}
	if err != nil {
		return nil, parseError(err)
	}
	for i, name := range cells {
		if name == "" {
			continue
		}
		p.header = append(p.header, name)
		p.columns = append(p.columns, i)
	}
	return p, nil
}

// Header returns the non-empty column names, in file order.
func (p *Parser) Header() []string {
	return append([]string(nil), p.header...)
}

// Next reads the next row into row.
func (p *Parser) Next(row *Row) error {
	for {
		cells, line, err := p.src.Read()
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return parseError(err)
		}
		values := make(map[string]string, len(p.columns))
		for i, col := range p.columns {
			if col >= len(cells) {
				break
			}
			if cells[col] == "" {
				continue
			}
			values[p.header[i]] = cells[col]
		}
		if len(values) == 0 {
			continue
		}
		row.Line = line
		row.Values = values
		return nil
	}
}

// Close releases the underlying source, if it needs releasing.
func (p *Parser) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

type csvReader struct {
	r *csv.Reader
}

func (c *csvReader) Read() ([]string, int, error) {
	cells, err := c.r.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := c.r.FieldPos(0)
	return cells, line, nil
}

func parseError(err error) error {
	return &statusError{status: http.StatusBadRequest, msg: errors.Wrap(err, "malformed input").Error()}
}
