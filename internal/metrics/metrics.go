package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeAnswered  = "answered"
	OutcomeNoAnswer  = "no_answer"
	OutcomeError     = "error"
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

var searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kbbot_searches_total",
	Help: "Knowledge base searches labelled by outcome",
}, []string{"outcome"})

var searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "kbbot_search_duration_seconds",
	Help:    "Time spent ranking chunks for a query.",
	Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
}, []string{"outcome"})

var documentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kbbot_documents_processed_total",
	Help: "Document processing runs labelled by outcome",
}, []string{"outcome"})

var documentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "kbbot_document_processing_duration_seconds",
	Help:    "Time spent extracting and segmenting one document.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
})

var chunksCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "kbbot_chunks_created_total",
	Help: "Text chunks written to the store",
})

var jobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "kbbot_ingest_jobs_in_queue",
	Help: "Documents waiting for a worker",
})

var runningBots = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "kbbot_running_bots",
	Help: "Bots currently connected to the messaging platform",
})

var messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kbbot_chat_messages_total",
	Help: "Chat messages handled labelled by kind",
}, []string{"kind"})

func CaptureSearch(outcome string, elapsed time.Duration) {
	searchesTotal.WithLabelValues(outcome).Inc()
	searchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func CaptureDocument(outcome string, elapsed time.Duration) {
	documentsTotal.WithLabelValues(outcome).Inc()
	documentDuration.Observe(elapsed.Seconds())
}

func AddChunks(n int) {
	chunksCreated.Add(float64(n))
}

func IncrementJobsInQueue() {
	jobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	jobsInQueue.Dec()
}

func SetRunningBots(n int) {
	runningBots.Set(float64(n))
}

func CountMessage(kind string) {
	messagesTotal.WithLabelValues(kind).Inc()
}
