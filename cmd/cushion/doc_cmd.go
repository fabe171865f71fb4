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
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-kivik/cushion"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema ID",
		Short: "Show the editable fields of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			doc, err := store.Get(a.context(cmd), args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FIELD\tTYPE\tVALUE")
			for _, f := range cushion.InferSchema(doc) {
				name := f.Name
				if f.Concealed {
					name += " (system)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%v\n", name, f.Type, doc[f.Name])
			}
			return tw.Flush()
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID FIELD=VALUE...",
		Short: "Change fields of a document, keeping their types",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string, len(args)-1)
			for _, arg := range args[1:] {
				field, value, ok := strings.Cut(arg, "=")
				if !ok || field == "" {
					return errors.Errorf("invalid assignment %q, expected FIELD=VALUE", arg)
				}
				values[field] = value
			}
			store, err := a.store()
			if err != nil {
				return err
			}
			rev, err := cushion.EditDocument(a.context(cmd), store, args[0], values)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rev)
			return nil
		},
	}
}

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the registered models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, name := range a.reg.Names() {
				m, _ := a.reg.Get(name)
				fmt.Fprintln(w, name)
				identity := make(map[string]bool)
				for _, f := range m.IdentityFields() {
					identity[f] = true
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, f := range m.Fields() {
					mark := ""
					if identity[f.Name] {
						mark = "identity"
					}
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Name, f.Type, mark)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Print a document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			doc, err := store.Get(a.context(cmd), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			return store.Delete(a.context(cmd), args[0])
		},
	}
}
