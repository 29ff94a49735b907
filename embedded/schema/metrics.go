/*
Copyright 2025 Nuvix Contributors. All rights reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package schema

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nuvix_schema_mutations_total",
		Help: "Number of schema mutations grouped by entity, operation and outcome",
	}, []string{"entity", "operation", "status"})

	metricsMutationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nuvix_schema_mutation_duration_seconds",
		Help:    "Duration of schema mutations",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "operation"})
)

func (e *Engine) observe(entity, operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	metricsMutations.WithLabelValues(entity, operation, status).Inc()
	metricsMutationDuration.WithLabelValues(entity, operation).Observe(time.Since(start).Seconds())
}
