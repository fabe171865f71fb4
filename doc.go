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
/*
Package cushion coerces untyped, delimited-text rows into typed CouchDB
documents and imports them in bulk.

# Models

A Model declares the type of each field, the ordered identity fields from
which a deterministic document ID is derived, and an optional transform run
after coercion:

	reg := cushion.NewRegistry()
	m, err := cushion.NewModel("SimilarSpecies",
	    []cushion.Field{
	        {Name: "species", Type: cushion.Text},
	        {Name: "similar_species", Type: cushion.Text},
	    },
	    cushion.WithIdentity("species", "similar_species"),
	)
	if err != nil {
	    return err
	}
	if err := reg.Register(m); err != nil {
	    return err
	}

# Importing

An Importer parses a file, coerces every row, reconciles the candidates with
documents already in the store, and writes them with a single bulk request:

	imp := cushion.NewImporter(store, reg, cushion.WithLogger(log))
	outcome, err := imp.Import(ctx, file, cushion.ImportOptions{
	    Model:     "SimilarSpecies",
	    Delimiter: cushion.Comma,
	})

An import is all or nothing: if any row fails coercion, or collides with an
existing document while Overwrite is unset, nothing is written and every
problem is reported in outcome.Errors. err is reserved for failures the
caller must handle, such as an unreachable store.

# Schemas

InferSchema derives an editable field layout from an arbitrary document,
and Schema.Apply coerces submitted form values back onto the document.
*/
package cushion
