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

// Record is a document: a mapping of field names to values, plus the
// reserved metadata keys _id and _rev.
type Record map[string]interface{}

// ID returns the record's _id, or "" if unset.
func (r Record) ID() string {
	id, _ := r[KeyID].(string)
	return id
}

// Rev returns the record's _rev, or "" if unset.
func (r Record) Rev() string {
	rev, _ := r[KeyRev].(string)
	return rev
}

// SetID sets the record's _id.
func (r Record) SetID(id string) {
	r[KeyID] = id
}

// SetRev sets the record's _rev.
func (r Record) SetRev(rev string) {
	r[KeyRev] = rev
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// recordFromRow copies an untyped row into a new record.
func recordFromRow(row map[string]string) Record {
	r := make(Record, len(row))
	for k, v := range row {
		r[k] = v
	}
	return r
}
