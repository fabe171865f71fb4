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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record outcomes counted by Metrics.
const (
	OutcomeSaved   = "saved"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics counts import activity.
type Metrics struct {
	records *prometheus.CounterVec
	imports *prometheus.CounterVec
}

// NewMetrics creates the import counters and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cushion",
			Subsystem: "import",
			Name:      "records_total",
			Help:      "Imported records broken down by model and outcome.",
		}, []string{"model", "outcome"}),
		imports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cushion",
			Name:      "imports_total",
			Help:      "Import calls broken down by model and final state.",
		}, []string{"model", "state"}),
	}
}

func (m *Metrics) observe(model string, o *Outcome, skipped int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(model, OutcomeSaved).Add(float64(o.Saved))
	m.records.WithLabelValues(model, OutcomeFailed).Add(float64(len(o.Errors)))
	m.records.WithLabelValues(model, OutcomeSkipped).Add(float64(skipped))
	m.imports.WithLabelValues(model, o.State.String()).Inc()
}
