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
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-kivik/cushion/couchstore"
)

func newDatabasesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List databases with their document counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			ctx := a.context(cmd)
			dbs, err := couchstore.AllDBs(ctx, client)
			if err != nil {
				return err
			}
			for _, name := range dbs {
				s, err := couchstore.New(client, name)
				if err != nil {
					return err
				}
				info, err := s.Info(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", info.Name, info.DocCount)
			}
			return nil
		},
	}
}

func newCompactCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Start compaction of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			if err := s.Compact(a.context(cmd)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database '%s' has been compacted.\n", s.DBName())
			return nil
		},
	}
}

func newEmptyCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "empty",
		Short: "Delete every document of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			if !yes {
				return errors.Errorf("refusing to empty '%s' without --yes", s.DBName())
			}
			if err := s.Empty(a.context(cmd)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database '%s' has been emptied.\n", s.DBName())
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm that every document should be deleted")
	return cmd
}

func newDropCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Delete the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			if !yes {
				return errors.Errorf("refusing to delete '%s' without --yes", s.DBName())
			}
			if err := s.Destroy(a.context(cmd)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database '%s' has been deleted.\n", s.DBName())
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm that the database should be deleted")
	return cmd
}

func newViewsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the views of each design document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			views, err := s.DesignViews(a.context(cmd))
			if err != nil {
				return err
			}
			names := make([]string, 0, len(views))
			for name := range views {
				names = append(names, name)
			}
			sort.Strings(names)
			w := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(w, name)
				for _, view := range views[name] {
					fmt.Fprintf(w, "  %s\n", view)
				}
			}
			return nil
		},
	}
}
