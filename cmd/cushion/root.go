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
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-kivik/cushion"
	"github.com/go-kivik/cushion/chttp"
	"github.com/go-kivik/cushion/couchstore"
	"github.com/go-kivik/cushion/internal/config"
	"github.com/go-kivik/cushion/specimen"
)

// app holds what the subcommands share. It is populated before any
// subcommand runs.
type app struct {
	cfg      *config.Configuration
	log      *logrus.Logger
	reg      *cushion.Registry
	metrics  *cushion.Metrics
	gatherer *prometheus.Registry
	client   *chttp.Client

	url, db, logLevel, metricsFile string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "cushion",
		Short:        "Import tabular data into CouchDB as typed documents",
		Version:      cushion.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.writeMetrics()
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.url, "url", "", "CouchDB server URL (default $COUCHDB_URL)")
	flags.StringVar(&a.db, "db", "", "database name (default $COUCHDB_DATABASE)")
	flags.StringVar(&a.logLevel, "log-level", "", "silent, error, warn, info, debug or trace (default $LOG_LEVEL)")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "write import metrics to this file in the Prometheus text format")

	cmd.AddCommand(
		newImportCmd(a),
		newSchemaCmd(a),
		newEditCmd(a),
		newModelsCmd(a),
		newGetCmd(a),
		newDeleteCmd(a),
		newDatabasesCmd(a),
		newCompactCmd(a),
		newEmptyCmd(a),
		newDropCmd(a),
		newViewsCmd(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.DefaultEnvFiles...)
	if err != nil {
		return err
	}
	if a.url != "" {
		cfg.CouchDB.URL = a.url
	}
	if a.db != "" {
		cfg.CouchDB.Database = a.db
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.log = cfg.Logger(cmd.ErrOrStderr())

	a.reg = cushion.NewRegistry()
	if err := specimen.Register(a.reg, specimen.Options{ProtectedSpecies: cfg.ProtectedSpecies}); err != nil {
		return err
	}
	a.reg.Freeze()

	a.gatherer = prometheus.NewRegistry()
	a.metrics = cushion.NewMetrics(a.gatherer)
	return nil
}

func (a *app) writeMetrics() error {
	if a.metricsFile == "" || a.gatherer == nil {
		return nil
	}
	return errors.Wrap(prometheus.WriteToTextfile(a.metricsFile, a.gatherer), "write metrics")
}

// context returns the command's context, traced at debug level.
func (a *app) context(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if !a.log.IsLevelEnabled(logrus.DebugLevel) {
		return ctx
	}
	return chttp.WithClientTrace(ctx, &chttp.ClientTrace{
		Request: func(req *http.Request) {
			a.log.WithFields(requestFields(req)).Trace("couchdb request")
		},
		Response: func(res *http.Response, elapsed time.Duration) {
			a.log.WithFields(requestFields(res.Request)).WithFields(logrus.Fields{
				"status":  res.StatusCode,
				"elapsed": elapsed,
			}).Debug("couchdb response")
		},
		Failure: func(req *http.Request, err error, elapsed time.Duration) {
			a.log.WithFields(requestFields(req)).WithField("elapsed", elapsed).WithError(err).Debug("couchdb request failed")
		},
	})
}

func requestFields(req *http.Request) logrus.Fields {
	if req == nil {
		return logrus.Fields{}
	}
	return logrus.Fields{
		"method": req.Method,
		"url":    req.URL.Redacted(),
	}
}

func (a *app) connect() (*chttp.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	client, err := a.cfg.Client()
	if err != nil {
		return nil, err
	}
	client.UserAgents = []string{"cushion/" + cushion.Version}
	a.client = client
	return client, nil
}

func (a *app) store() (*couchstore.Store, error) {
	if a.cfg.CouchDB.Database == "" {
		return nil, errors.New("database name required (--db or COUCHDB_DATABASE)")
	}
	client, err := a.connect()
	if err != nil {
		return nil, err
	}
	return couchstore.New(client, a.cfg.CouchDB.Database)
}
