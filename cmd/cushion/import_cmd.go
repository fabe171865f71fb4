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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-kivik/cushion"
)

const (
	msgImported = "Your data was imported successfully."
	msgProblem  = "There was a problem with one or more rows in your data. Please correct these rows and try uploading again."
)

var errRejected = errors.New("import rejected")

func newImportCmd(a *app) *cobra.Command {
	var (
		opts           cushion.ImportOptions
		delimiter      string
		sheet          string
		create         bool
		overwrite      bool
		skipDuplicates bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a delimited text file or .xlsx workbook",
		Long: `Import coerces every row of FILE by the selected model and saves the
resulting documents in one bulk write. If any row is invalid, or any
document already exists and --overwrite is not given, nothing is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("delimiter") {
				delimiter = a.cfg.Delimiter
			}
			d, err := cushion.ParseDelimiter(delimiter)
			if err != nil {
				return err
			}
			opts.Delimiter = d
			opts.Overwrite = overwrite
			opts.SkipDuplicates = skipDuplicates

			store, err := a.store()
			if err != nil {
				return err
			}
			ctx := a.context(cmd)
			if create {
				created, err := store.EnsureDB(ctx)
				if err != nil {
					return err
				}
				if created {
					a.log.WithField("db", store.DBName()).Info("database created")
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			src, err := openSource(f, d, sheet)
			if err != nil {
				return err
			}
			if c, ok := src.(io.Closer); ok {
				defer func() { _ = c.Close() }()
			}

			imp := cushion.NewImporter(store, a.reg, cushion.WithLogger(a.log), cushion.WithMetrics(a.metrics))
			out, err := imp.ImportRows(ctx, src, opts)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), out)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.Model, "model", "m", "", "registered model to coerce rows by (default: store rows as text)")
	flags.BoolVar(&overwrite, "overwrite", false, "update documents that already exist")
	flags.BoolVar(&skipDuplicates, "skip-duplicates", false, "drop rows that duplicate an earlier row")
	flags.StringVarP(&delimiter, "delimiter", "d", "comma", "cell delimiter: comma, tab or space (default $CUSHION_DELIMITER)")
	flags.StringVar(&sheet, "sheet", "", "worksheet of an .xlsx file (default: the first)")
	flags.BoolVar(&create, "create", false, "create the database if it does not exist")
	return cmd
}

func openSource(f *os.File, d cushion.Delimiter, sheet string) (cushion.RowSource, error) {
	if strings.EqualFold(filepath.Ext(f.Name()), ".xlsx") {
		return cushion.NewXLSXParser(f, sheet)
	}
	return cushion.NewParser(f, d)
}

// report prints the outcome of an import, and returns errRejected if any
// record was refused.
func report(w io.Writer, out *cushion.Outcome) error {
	if len(out.Errors) == 0 {
		_, err := fmt.Fprintf(w, "%s %d documents saved.\n", msgImported, out.Saved)
		return err
	}
	fmt.Fprintln(w, msgProblem)
	for _, e := range out.Errors {
		fmt.Fprintf(w, "\nline %d: %s\n", e.Line, e.Message)
		if e.Diff != "" {
			fmt.Fprint(w, e.Diff)
			continue
		}
		fmt.Fprintln(w, formatRecord(e.Record))
	}
	return errRejected
}

// formatRecord renders rec as one line of key=value pairs, sorted by key.
func formatRecord(rec cushion.Record) string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		v, _ := json.Marshal(rec[k])
		parts[i] = k + "=" + string(v)
	}
	return "  " + strings.Join(parts, " ")
}
