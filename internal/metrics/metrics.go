// Package metrics holds the domain counters exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Uploads counts finished uploads by terminal state.
type Uploads struct {
	total *prometheus.CounterVec
}

// NewUploads registers gifstore_uploads_total on reg.
func NewUploads(reg prometheus.Registerer) (*Uploads, error) {
	u := &Uploads{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gifstore_uploads_total",
				Help: "Uploads by terminal pipeline state.",
			},
			[]string{"state"},
		),
	}
	if err := reg.Register(u.total); err != nil {
		return nil, err
	}
	return u, nil
}

// ObserveUpload implements service.UploadObserver.
func (u *Uploads) ObserveUpload(state string) {
	u.total.WithLabelValues(state).Inc()
}
