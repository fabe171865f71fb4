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

// Package config loads the command line tool's configuration from the
// environment and optional .env files.
package config

import (
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/go-kivik/cushion"
	"github.com/go-kivik/cushion/chttp"
)

// DefaultEnvFiles are loaded, if present, by Load.
var DefaultEnvFiles = []string{".env", ".env.local"}

// CouchDB authentication mechanisms.
const (
	AuthCookie = "cookie"
	AuthBasic  = "basic"
	AuthProxy  = "proxy"
)

// CouchDBOptions locate and authenticate against the CouchDB server.
type CouchDBOptions struct {
	// URL may carry credentials, used for cookie and basic auth.
	URL         string   `env:"COUCHDB_URL" envDefault:"http://localhost:5984/"`
	Database    string   `env:"COUCHDB_DATABASE"`
	Auth        string   `env:"COUCHDB_AUTH" envDefault:"cookie"`
	ProxyUser   string   `env:"COUCHDB_PROXY_USER"`
	ProxySecret string   `env:"COUCHDB_PROXY_SECRET"`
	ProxyRoles  []string `env:"COUCHDB_PROXY_ROLES" envSeparator:","`
}

// Configuration of the cushion tool.
type Configuration struct {
	CouchDB          CouchDBOptions
	LogLevel         string   `env:"LOG_LEVEL" envDefault:"info"`
	ProtectedSpecies []string `env:"CUSHION_PROTECTED_SPECIES" envSeparator:","`
	Delimiter        string   `env:"CUSHION_DELIMITER" envDefault:"comma"`
}

// LoadEnv loads those of envFiles that exist into the process environment,
// without overriding variables that are already set. It returns the number
// of files loaded.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads envFiles, then parses the environment.
func Load(envFiles ...string) (*Configuration, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, errors.Wrap(err, "load env files")
	}
	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	if _, err := cushion.ParseDelimiter(c.Delimiter); err != nil {
		return nil, err
	}
	return c, nil
}

// LogrusLogLevel maps LogLevel to a logrus level. Unknown names mean info.
func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	case "trace":
		return logrus.TraceLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger returns a text logger writing to w at the configured level.
func (c *Configuration) Logger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(c.LogrusLogLevel())
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// Client connects to CouchDB with the configured authentication.
func (c *Configuration) Client() (*chttp.Client, error) {
	switch c.CouchDB.Auth {
	case AuthCookie, "":
		return chttp.New(c.CouchDB.URL)
	case AuthBasic:
		dsn, user, err := splitUser(c.CouchDB.URL)
		if err != nil {
			return nil, err
		}
		client, err := chttp.New(dsn)
		if err != nil || user == nil {
			return client, err
		}
		password, _ := user.Password()
		return client, client.Authenticate(&chttp.BasicAuth{Username: user.Username(), Password: password})
	case AuthProxy:
		if c.CouchDB.ProxyUser == "" {
			return nil, errors.New("COUCHDB_PROXY_USER required for proxy auth")
		}
		dsn, _, err := splitUser(c.CouchDB.URL)
		if err != nil {
			return nil, err
		}
		client, err := chttp.New(dsn)
		if err != nil {
			return nil, err
		}
		return client, client.Authenticate(&chttp.ProxyAuth{
			Username: c.CouchDB.ProxyUser,
			Secret:   c.CouchDB.ProxySecret,
			Roles:    c.CouchDB.ProxyRoles,
		})
	}
	return nil, errors.Errorf("unsupported auth %q", c.CouchDB.Auth)
}

// splitUser removes the credentials from dsn.
func splitUser(dsn string) (string, *url.Userinfo, error) {
	if !strings.HasPrefix(dsn, "http://") && !strings.HasPrefix(dsn, "https://") {
		dsn = "http://" + dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", nil, errors.Wrap(err, "parse COUCHDB_URL")
	}
	user := u.User
	u.User = nil
	return u.String(), user, nil
}
