package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HoldersBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatview_holders_built_total",
			Help: "Message view states built, by direction",
		},
		[]string{"direction"},
	)

	DownloadRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatview_download_requests_total",
			Help: "Attachment download requests, by publish result",
		},
		[]string{"result"},
	)

	PaidTextFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatview_paid_text_fetches_total",
			Help: "Paid text lookups, by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	RenderJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatview_render_jobs_total",
			Help: "Render requests handled, by outcome",
		},
		[]string{"outcome"},
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatview_render_duration_seconds",
			Help:    "Time to project and publish one render request",
			Buckets: prometheus.DefBuckets,
		},
	)
)
