package metrics

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "senda"

var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Number of created pairing sessions",
	})

	SessionsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_live",
		Help:      "Number of sessions currently held in memory",
	})

	// reason: sweep, lookup, manual, reclaim
	SessionsDestroyed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_destroyed_total",
		Help:      "Number of destroyed sessions",
	}, []string{"reason"})

	FilesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_uploaded_total",
		Help:      "Number of accepted files",
	})

	BytesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bytes_uploaded_total",
		Help:      "Number of stored bytes",
	})

	// reason: not_found, no_files, too_many_files, too_large, mime, storage
	UploadsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_rejected_total",
		Help:      "Number of rejected upload batches",
	}, []string{"reason"})

	// result: delivered, dropped, failed
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Number of files-received events by delivery result",
	}, []string{"result"})

	Downloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Number of served downloads",
	})

	WsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Number of open realtime connections",
	})
)

func StartRecordingMetrics(h *mux.Router) {
	h.Handle("/metrics", promhttp.Handler())
}
