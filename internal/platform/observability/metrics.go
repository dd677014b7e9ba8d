package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seplitsa_updates_total",
		Help: "The total number of Telegram updates handled",
	}, []string{"kind"})

	KnowledgeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seplitsa_knowledge_lookups_total",
		Help: "Knowledge lookups by resolution result",
	}, []string{"result"})

	KnowledgeEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seplitsa_knowledge_entries",
		Help: "Number of entries in the knowledge document at the last load",
	})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seplitsa_llm_request_duration_seconds",
		Help:    "Duration of fallback text generation requests",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
	}, []string{"provider"})

	LLMFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seplitsa_llm_failures_total",
		Help: "Fallback text generation failures by reason",
	}, []string{"provider", "reason"})

	WizardTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seplitsa_wizard_transitions_total",
		Help: "Profile wizard answers by step and outcome",
	}, []string{"step", "result"})

	SendFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seplitsa_send_fallbacks_total",
		Help: "Messages that needed a plainer formatting level to be delivered",
	}, []string{"level"})

	RankPromotions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seplitsa_rank_promotions_total",
		Help: "User rank promotions by reached rank",
	}, []string{"rank"})

	SheetsAppends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seplitsa_sheets_appends_total",
		Help: "Spreadsheet mirror appends by status",
	}, []string{"status"})

	MediaIDsEchoed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seplitsa_media_ids_echoed_total",
		Help: "Media file identifiers echoed back by kind",
	}, []string{"kind"})
)
