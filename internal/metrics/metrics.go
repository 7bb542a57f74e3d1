package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadnet_records_total",
			Help: "Record lifecycle counter by outcome",
		},
		[]string{"outcome"}, // created|duplicate|updated|deleted
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		RecordsTotal,
	)
}
