package export

import "github.com/prometheus/client_golang/prometheus"

var (
	exportedRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pibao_export_rows_total",
			Help: "Rows pushed to an export sink.",
		},
		[]string{"sink"},
	)

	exportFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pibao_export_failures_total",
			Help: "Export runs that failed, by sink.",
		},
		[]string{"sink"},
	)
)

func init() {
	prometheus.MustRegister(exportedRows, exportFailures)
}
