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
	"fmt"
	"net/http"
	"strings"
)

// CoercionError is returned when a raw value cannot be converted to the
// declared type of its field, or when a transform precondition fails.
type CoercionError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("Attribute '%s' with value '%v' couldn't be validated: %s", e.Field, e.Value, e.Reason)
}

// StatusCode returns http.StatusBadRequest.
func (e *CoercionError) StatusCode() int { return http.StatusBadRequest }

// HTTPStatus returns http.StatusBadRequest.
func (e *CoercionError) HTTPStatus() int { return http.StatusBadRequest }

// ConflictError reports a candidate record whose id already exists in the
// store while overwriting was not requested.
type ConflictError struct {
	ID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("document %q already exists", e.ID)
}

// StatusCode returns http.StatusConflict.
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// HTTPStatus returns http.StatusConflict.
func (e *ConflictError) HTTPStatus() int { return http.StatusConflict }

// DuplicateError reports two records of the same batch that share an id.
// Diff holds a unified diff of the two records.
type DuplicateError struct {
	ID   string
	Diff string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate document %q in batch", e.ID)
}

// StatusCode returns http.StatusConflict.
func (e *DuplicateError) StatusCode() int { return http.StatusConflict }

// HTTPStatus returns http.StatusConflict.
func (e *DuplicateError) HTTPStatus() int { return http.StatusConflict }

// AlreadyRegisteredError is returned when registering a model name twice.
type AlreadyRegisteredError struct {
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("'%s' is already registered.", e.Name)
}

// StatusCode returns http.StatusConflict.
func (e *AlreadyRegisteredError) StatusCode() int { return http.StatusConflict }

// NotRegisteredError is returned when looking up or unregistering an unknown
// model name.
type NotRegisteredError struct {
	Name string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("'%s' is not registered.", e.Name)
}

// StatusCode returns http.StatusNotFound.
func (e *NotRegisteredError) StatusCode() int { return http.StatusNotFound }

// FormErrors collects the per-field failures of a form submission.
type FormErrors []error

func (e FormErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// StatusCode returns http.StatusBadRequest.
func (e FormErrors) StatusCode() int { return http.StatusBadRequest }

func missingArg(arg string) error {
	return &statusError{status: http.StatusBadRequest, msg: arg + " required"}
}

type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

// StatusCode returns the embedded status code.
func (e *statusError) StatusCode() int { return e.status }

// HTTPStatus returns the embedded status code.
func (e *statusError) HTTPStatus() int { return e.status }
