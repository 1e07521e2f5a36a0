package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repost_posts_processed_total",
		Help: "The total number of wall posts processed by the pipeline",
	}, []string{"status"})

	UnitsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repost_units_sent_total",
		Help: "The total number of outbound units sent to the channel",
	}, []string{"kind"})

	SendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repost_send_errors_total",
		Help: "The total number of failed outbound unit sends",
	}, []string{"kind"})

	AudioMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repost_audio_match_total",
		Help: "Audio resolution outcomes for refs lacking a direct URL",
	}, []string{"result"})

	PollCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "repost_poll_cycle_duration_seconds",
		Help:    "Duration in seconds of one poll cycle",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "repost_poll_cycles_total",
		Help: "The total number of poll cycles by outcome",
	}, []string{"status"})

	LedgerSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "repost_ledger_size",
		Help: "Number of keys in the processed-posts ledger",
	})
)
