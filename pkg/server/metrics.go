package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "puppetmill_build_info",
		Help: "Build information of the puppetmill server",
	},
		[]string{"version", "commit", "date"},
	)

	GenerateRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "puppetmill_generate_requests_total",
		Help: "Total number of successful generate requests",
	},
		[]string{"model"},
	)

	GenerateRequestErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "puppetmill_generate_request_errors_total",
		Help: "Total number of generate request errors",
	},
		[]string{"reason"},
	)

	GenerateDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "puppetmill_generate_duration_seconds",
		Help:    "Model completion latency",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	},
		[]string{"model"},
	)
)
