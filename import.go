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
	"context"
	"io"
	"net/http"

	kivik "github.com/go-kivik/kivik/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ImportState is a phase of an import.
type ImportState int

// Import phases. Done and Rejected are final.
const (
	Parsing ImportState = iota
	Coercing
	Reconciling
	Saving
	Done
	Rejected
)

func (s ImportState) String() string {
	switch s {
	case Parsing:
		return "parsing"
	case Coercing:
		return "coercing"
	case Reconciling:
		return "reconciling"
	case Saving:
		return "saving"
	case Done:
		return "done"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// ImportOptions select how an import treats its input.
type ImportOptions struct {
	// Model is the registered model rows are coerced by. If empty, rows are
	// stored as untyped text records.
	Model string
	// Overwrite updates documents that already exist, instead of rejecting
	// the import.
	Overwrite bool
	// SkipDuplicates silently drops records that collide with another
	// record of the same import.
	SkipDuplicates bool
	// Delimiter separates cells of delimited text. Defaults to Comma.
	Delimiter Delimiter
}

// ImportError is a problem with one record of an import.
type ImportError struct {
	// Line is where the record starts in the input.
	Line int
	// Record is the offending record. For failed coercions it holds the raw
	// row values.
	Record Record
	// Diff, for duplicates, shows how the record differs from the record it
	// collided with.
	Diff    string
	Message string
	Err     error
}

// Outcome is the result of an import.
type Outcome struct {
	State ImportState
	// Saved is the number of documents written.
	Saved  int
	Errors []ImportError
}

// Importer loads tabular data into a Store.
type Importer struct {
	store   Store
	reg     *Registry
	log     logrus.FieldLogger
	metrics *Metrics
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger sets the logger phase transitions are reported to.
func WithLogger(log logrus.FieldLogger) ImporterOption {
	return func(i *Importer) {
		if log != nil {
			i.log = log
		}
	}
}

// WithMetrics sets the counters updated by each import.
func WithMetrics(m *Metrics) ImporterOption {
	return func(i *Importer) {
		i.metrics = m
	}
}

// NewImporter returns an importer writing to store, resolving model names
// with reg.
func NewImporter(store Store, reg *Registry, opts ...ImporterOption) *Importer {
	i := &Importer{
		store: store,
		reg:   reg,
		log:   logrusNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import parses delimited text from r and imports its rows. See ImportRows.
func (i *Importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*Outcome, error) {
	p, err := NewParser(r, opts.Delimiter)
	if err != nil {
		return nil, err
	}
	return i.ImportRows(ctx, p, opts)
}

type candidate struct {
	line int
	rec  Record
}

// ImportRows coerces every row of src and saves the resulting records with
// a single bulk write.
//
// Nothing is written if any row fails coercion, or if any record already
// exists and opts.Overwrite is false; the outcome is then Rejected and lists
// every offending record. With Overwrite, existing documents are updated
// in place. Records that collide with each other during the write are
// reported with a diff, unless opts.SkipDuplicates is set.
//
// Problems with records are reported in the Outcome. The returned error is
// reserved for failures of the import as a whole, such as an unknown model,
// unreadable input or an unavailable store.
func (i *Importer) ImportRows(ctx context.Context, src RowSource, opts ImportOptions) (*Outcome, error) {
	var model *Model
	if opts.Model != "" {
		if i.reg == nil {
			return nil, &NotRegisteredError{Name: opts.Model}
		}
		m, err := i.reg.Lookup(opts.Model)
		if err != nil {
			return nil, err
		}
		model = m
	}
	label := opts.Model
	if label == "" {
		label = "raw"
	}
	log := i.log.WithField("model", label)

	cands, errs, err := i.coerce(log, src, model)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return i.finish(log, label, &Outcome{State: Rejected, Errors: errs}, 0), nil
	}

	log.WithFields(logrus.Fields{"phase": Reconciling.String(), "rows": len(cands)}).Debug("import phase")
	errs, err = i.reconcile(ctx, cands, opts.Overwrite)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return i.finish(log, label, &Outcome{State: Rejected, Errors: errs}, 0), nil
	}

	log.WithFields(logrus.Fields{"phase": Saving.String(), "rows": len(cands)}).Debug("import phase")
	out, skipped, err := i.save(ctx, cands, opts.SkipDuplicates)
	if err != nil {
		return nil, err
	}
	return i.finish(log, label, out, skipped), nil
}

func (i *Importer) coerce(log logrus.FieldLogger, src RowSource, model *Model) ([]candidate, []ImportError, error) {
	log.WithField("phase", Parsing.String()).Debug("import phase")
	var (
		cands []candidate
		errs  []ImportError
		row   Row
	)
	for {
		err := src.Next(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rec := recordFromRow(row.Values)
		if model != nil {
			raw := rec.Clone()
			if err := model.CoerceRecord(rec); err != nil {
				errs = append(errs, ImportError{
					Line:    row.Line,
					Record:  raw,
					Message: err.Error(),
					Err:     err,
				})
				continue
			}
		}
		cands = append(cands, candidate{line: row.Line, rec: rec})
	}
	log.WithFields(logrus.Fields{
		"phase":  Coercing.String(),
		"rows":   len(cands) + len(errs),
		"errors": len(errs),
	}).Debug("import phase")
	return cands, errs, nil
}

// reconcile looks up the ids of cands in the store. With overwrite, the
// current revision of each existing document is copied into its candidate;
// otherwise every candidate that already exists is returned as an error.
func (i *Importer) reconcile(ctx context.Context, cands []candidate, overwrite bool) ([]ImportError, error) {
	ids := make([]string, 0, len(cands))
	seen := make(map[string]struct{}, len(cands))
	for _, c := range cands {
		id := c.rec.ID()
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	existing, err := i.store.Query(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "query existing documents")
	}
	if len(existing) == 0 {
		return nil, nil
	}
	revs := make(map[string]string, len(existing))
	for _, doc := range existing {
		revs[doc.ID] = doc.Rev
	}
	var errs []ImportError
	for _, c := range cands {
		rev, ok := revs[c.rec.ID()]
		if !ok {
			continue
		}
		if overwrite {
			c.rec.SetRev(rev)
			continue
		}
		errs = append(errs, ImportError{
			Line:    c.line,
			Record:  c.rec,
			Message: MessageExists,
			Err:     &ConflictError{ID: c.rec.ID()},
		})
	}
	return errs, nil
}

func (i *Importer) save(ctx context.Context, cands []candidate, skipDuplicates bool) (*Outcome, int, error) {
	out := &Outcome{State: Done}
	if len(cands) == 0 {
		return out, 0, nil
	}
	docs := make([]Record, len(cands))
	byID := make(map[string][]int, len(cands))
	for n, c := range cands {
		docs[n] = c.rec
		if id := c.rec.ID(); id != "" {
			byID[id] = append(byID[id], n)
		}
	}
	results, err := i.store.BulkSave(ctx, docs)
	if err != nil {
		return nil, 0, errors.Wrap(err, "bulk save")
	}
	if len(results) != len(docs) {
		return nil, 0, &statusError{
			status: http.StatusBadGateway,
			msg:    "bulk save returned a different number of results than documents",
		}
	}
	var skipped int
	for n, res := range results {
		if res.Err == nil {
			out.Saved++
			continue
		}
		c := cands[n]
		if partner, ok := duplicateOf(byID[c.rec.ID()], n); ok && kivik.HTTPStatus(res.Err) == http.StatusConflict {
			if skipDuplicates {
				skipped++
				continue
			}
			other := cands[partner]
			diff := recordDiff(other.rec, other.line, c.rec, c.line)
			out.Errors = append(out.Errors, ImportError{
				Line:    c.line,
				Record:  c.rec,
				Diff:    diff,
				Message: MessageDuplicate,
				Err:     &DuplicateError{ID: c.rec.ID(), Diff: diff},
			})
			continue
		}
		out.Errors = append(out.Errors, ImportError{
			Line:    c.line,
			Record:  c.rec,
			Message: res.Err.Error(),
			Err:     res.Err,
		})
	}
	if len(out.Errors) > 0 {
		out.State = Rejected
	}
	return out, skipped, nil
}

// duplicateOf returns the first index of same, other than n.
func duplicateOf(same []int, n int) (int, bool) {
	for _, idx := range same {
		if idx != n {
			return idx, true
		}
	}
	return 0, false
}

func (i *Importer) finish(log logrus.FieldLogger, label string, out *Outcome, skipped int) *Outcome {
	fields := logrus.Fields{
		"phase":  out.State.String(),
		"saved":  out.Saved,
		"errors": len(out.Errors),
	}
	if skipped > 0 {
		fields["skipped"] = skipped
	}
	if out.State == Rejected {
		log.WithFields(fields).Warn("import rejected")
	} else {
		log.WithFields(fields).Info("import done")
	}
	i.metrics.observe(label, out, skipped)
	return out
}
