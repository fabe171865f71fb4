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
	"net/http"
	"strings"
	"testing"

	"gitlab.com/flimzy/testy"
)

func readRows(t *testing.T, src RowSource) []Row {
	t.Helper()
	var rows []Row
	for {
		var row Row
		err := src.Next(&row)
		if err == io.EOF {
			return rows
		}
		if err != nil {
			t.Fatal(err)
		}
		rows = append(rows, row)
	}
}

func TestParser(t *testing.T) {
	type tst struct {
		input    string
		delim    Delimiter
		header   []string
		expected []Row
	}
	tests := testy.NewTable()
	tests.Add("empty input", tst{
		input: "",
	})
	tests.Add("header only", tst{
		input:  "a,b\n",
		header: []string{"a", "b"},
	})
	tests.Add("empty cells omitted", tst{
		input:  "a,b\n1,\n",
		header: []string{"a", "b"},
		expected: []Row{
			{Line: 2, Values: map[string]string{"a": "1"}},
		},
	})
	tests.Add("ragged rows", tst{
		input:  "a,b,c\n1\n1,2,3,4,5\n",
		header: []string{"a", "b", "c"},
		expected: []Row{
			{Line: 2, Values: map[string]string{"a": "1"}},
			{Line: 3, Values: map[string]string{"a": "1", "b": "2", "c": "3"}},
		},
	})
	tests.Add("unnamed columns dropped", tst{
		input:  "a,,c\n1,2,3\n",
		header: []string{"a", "c"},
		expected: []Row{
			{Line: 2, Values: map[string]string{"a": "1", "c": "3"}},
		},
	})
	tests.Add("blank rows skipped", tst{
		input:  "a,b\n\n,\n1,2\n",
		header: []string{"a", "b"},
		expected: []Row{
			{Line: 4, Values: map[string]string{"a": "1", "b": "2"}},
		},
	})
	tests.Add("byte order mark", tst{
		input:  "\ufeffa,b\n1,2\n",
		header: []string{"a", "b"},
		expected: []Row{
			{Line: 2, Values: map[string]string{"a": "1", "b": "2"}},
		},
	})
	tests.Add("quoted cells", tst{
		input:  "a,b\n\"x, y\",\"multi\nline\"\n3,4\n",
		header: []string{"a", "b"},
		expected: []Row{
			{Line: 2, Values: map[string]string{"a": "x, y", "b": "multi\nline"}},
			{Line: 4, Values: map[string]string{"a": "3", "b": "4"}},
		},
	})
	tests.Add("tab", tst{
		input:  "a\tb\n1,5\t2\n",
		delim:  Tab,
		header: []string{"a", "b"},
		expected: []Row{
			{Line: 2, Values: map[string]string{"a": "1,5", "b": "2"}},
		},
	})
	tests.Add("space", tst{
		input:  "genus species\nQuercus alba\n",
		delim:  Space,
		header: []string{"genus", "species"},
		expected: []Row{
			{Line: 2, Values: map[string]string{"genus": "Quercus", "species": "alba"}},
		},
	})
	tests.Add("utf-16 with byte order mark", tst{
		input:  "\xff\xfea\x00\n\x001\x00\n\x00",
		header: []string{"a"},
		expected: []Row{
			{Line: 2, Values: map[string]string{"a": "1"}},
		},
	})
	tests.Add("utf-8 text", tst{
		input:  "name\nÅsa Ölund\n",
		header: []string{"name"},
		expected: []Row{
			{Line: 2, Values: map[string]string{"name": "Åsa Ölund"}},
		},
	})

	tests.Run(t, func(t *testing.T, test tst) {
		p, err := NewParser(strings.NewReader(test.input), test.delim)
		if err != nil {
			t.Fatal(err)
		}
		if d := testy.DiffInterface(test.header, p.Header()); d != nil {
			t.Errorf("Unexpected header:\n%s", d)
		}
		if d := testy.DiffInterface(test.expected, readRows(t, p)); d != nil {
			t.Error(d)
		}
	})
}

func TestParserReparse(t *testing.T) {
	const input = "a,b,c\n1,,3\n4,5\n"
	first, err := NewParser(strings.NewReader(input), Comma)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewParser(strings.NewReader(input), Comma)
	if err != nil {
		t.Fatal(err)
	}
	if d := testy.DiffInterface(readRows(t, first), readRows(t, second)); d != nil {
		t.Error(d)
	}
}

func TestParserReadError(t *testing.T) {
	_, err := NewParser(testy.ErrorReader("", io.ErrUnexpectedEOF), Comma)
	testy.StatusError(t, "malformed input: unexpected EOF", http.StatusBadRequest, err)
}

func TestParserInvalidUTF8(t *testing.T) {
	p, err := NewParser(strings.NewReader("genus\nCaf\xe9\n"), Comma)
	if err == nil {
		var row Row
		err = p.Next(&row)
	}
	testy.StatusError(t, "malformed input: encoding: invalid UTF-8", http.StatusBadRequest, err)
}

func TestParseDelimiter(t *testing.T) {
	tests := map[string]Delimiter{
		"comma": Comma,
		",":     Comma,
		"tab":   Tab,
		"\t":    Tab,
		"space": Space,
		" ":     Space,
	}
	for in, expected := range tests {
		d, err := ParseDelimiter(in)
		if err != nil {
			t.Fatal(err)
		}
		if d != expected {
			t.Errorf("Unexpected delimiter %s for %q", d, in)
		}
	}
	_, err := ParseDelimiter("pipe")
	testy.StatusError(t, `unsupported delimiter "pipe"`, http.StatusBadRequest, err)
}
