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
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// NewXLSXParser returns a Parser over one worksheet of an .xlsx workbook,
// with the same header and row semantics as NewParser. An empty sheet name
// selects the first worksheet. The caller should Close the parser.
func NewXLSXParser(r io.Reader, sheet string) (*Parser, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, parseError(err)
	}
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, parseError(errors.Wrapf(err, "sheet %q", sheet))
	}
	src := &xlsxReader{rows: rows}
	p, err := newParser(src, closers{rows, f})
	if err != nil {
		_ = rows.Close()
		_ = f.Close()
		return nil, err
	}
	return p, nil
}

type xlsxReader struct {
	rows *excelize.Rows
	line int
}

func (x *xlsxReader) Read() ([]string, int, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, 0, err
		}
		return nil, 0, io.EOF
	}
	x.line++
	cells, err := x.rows.Columns()
	if err != nil {
		return nil, 0, err
	}
	return cells, x.line, nil
}

type closers []io.Closer

func (c closers) Close() error {
	var first error
	for _, cl := range c {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
