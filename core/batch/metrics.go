// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics - prometheus counters for a run, on their own registry so several processors can coexist
type Metrics struct {
	registry *prometheus.Registry
	files    *prometheus.CounterVec
	editors  *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tiffscale_files_total",
			Help: "Number of files processed, by outcome.",
		}, []string{"outcome"}),
		editors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tiffscale_scaling_source_total",
			Help: "Number of files whose scaling was found, by editor.",
		}, []string{"editor"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tiffscale_file_duration_seconds",
			Help:    "Time taken to process one file.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

func (m *Metrics) observe(result FileResult, elapsed time.Duration) {
	m.files.WithLabelValues(string(result.Outcome)).Inc()
	if result.Scaling.Matched() {
		m.editors.WithLabelValues(result.Scaling.Editor).Inc()
	}
	m.duration.Observe(elapsed.Seconds())
}

// WriteToTextfile - writes the metrics in the text format node_exporter's textfile collector reads
func (m *Metrics) WriteToTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.registry)
}
