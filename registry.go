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
	"net/http"
	"sort"
	"sync"
)

// Registry maps model names to models. It is populated at startup, then
// frozen; a frozen registry is read-only and safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Register adds m under its name. Registering a name twice fails with
// *AlreadyRegisteredError.
func (r *Registry) Register(m *Model) error {
	if m == nil {
		return missingArg("model")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errFrozen
	}
	if _, ok := r.models[m.Name()]; ok {
		return &AlreadyRegisteredError{Name: m.Name()}
	}
	r.models[m.Name()] = m
	return nil
}

// Unregister removes and returns the named model. Unknown names fail with
// *NotRegisteredError.
func (r *Registry) Unregister(name string) (*Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return nil, errFrozen
	}
	m, ok := r.models[name]
	if !ok {
		return nil, &NotRegisteredError{Name: name}
	}
	delete(r.models, name)
	return m, nil
}

// Get returns the named model.
func (r *Registry) Get(name string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[name]
	return m, ok
}

// Lookup is like Get, but reports an unknown name as *NotRegisteredError.
func (r *Registry) Lookup(name string) (*Model, error) {
	if m, ok := r.Get(name); ok {
		return m, nil
	}
	return nil, &NotRegisteredError{Name: name}
}

// Names returns the registered model names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Freeze makes the registry read-only. Later calls to Register and
// Unregister fail.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

var errFrozen = &statusError{status: http.StatusMethodNotAllowed, msg: "registry is frozen"}
