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

// Package specimen defines the models of herbarium specimen records: the
// Specimen itself and the SimilarSpecies cross-reference.
package specimen

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-kivik/cushion"
)

// Registered model names.
const (
	ModelSpecimen       = "Specimen"
	ModelSimilarSpecies = "SimilarSpecies"
)

// FeetPerMetre converts metric elevations to the canonical feet.
var FeetPerMetre = decimal.RequireFromString("3.280839895013123")

// Options configure the specimen models.
type Options struct {
	// ProtectedSpecies are species whose records are flagged is_protected,
	// such as endangered plants whose locations must not be published.
	ProtectedSpecies []string
	// Now stamps date_modified. Defaults to time.Now.
	Now func() time.Time
}

// NewSpecimen returns the Specimen model. Its ID is derived from the
// taxon, the collection site and date, and the collector.
func NewSpecimen(opts Options) (*cushion.Model, error) {
	return cushion.NewModel(ModelSpecimen, []cushion.Field{
		{Name: "genus", Type: cushion.Text},
		{Name: "species", Type: cushion.Text},
		{Name: "latitude", Type: cushion.Float},
		{Name: "longitude", Type: cushion.Float},
		{Name: "year", Type: cushion.Text},
		{Name: "month", Type: cushion.Text},
		{Name: "day", Type: cushion.Text},
		{Name: "collector", Type: cushion.Text},
		{Name: "collection", Type: cushion.Text},
		{Name: "elevation", Type: cushion.Integer},
		{Name: "elevation_units", Type: cushion.Text},
	},
		cushion.WithIdentity("genus", "species", "latitude", "longitude", "year", "month", "day", "collector"),
		cushion.WithProtected("species", opts.ProtectedSpecies...),
		cushion.WithTransform(
			&cushion.UnitConversion{
				Field:     "elevation",
				UnitField: "elevation_units",
				From:      []string{"m.", "m"},
				To:        "ft.",
				Factor:    FeetPerMetre,
				Type:      cushion.Integer,
			},
			cushion.ProtectionFlag{},
			&cushion.Timestamp{Now: opts.Now},
		),
	)
}

// NewSimilarSpecies returns the SimilarSpecies model, which links a species
// to one that is easily confused with it.
func NewSimilarSpecies(opts Options) (*cushion.Model, error) {
	return cushion.NewModel(ModelSimilarSpecies, []cushion.Field{
		{Name: "species", Type: cushion.Text},
		{Name: "similar_species", Type: cushion.Text},
	},
		cushion.WithIdentity("species", "similar_species"),
		cushion.WithTransform(&cushion.Timestamp{Now: opts.Now}),
	)
}

// Register adds both models to reg.
func Register(reg *cushion.Registry, opts Options) error {
	for _, build := range []func(Options) (*cushion.Model, error){NewSpecimen, NewSimilarSpecies} {
		m, err := build(opts)
		if err != nil {
			return err
		}
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}
