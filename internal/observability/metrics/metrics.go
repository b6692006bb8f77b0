package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking workflow.
type BookingMetrics struct {
	suggestionsTotal   *prometheus.CounterVec
	coverageTotal      *prometheus.CounterVec
	slotFetchTotal     *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	staleDroppedTotal  *prometheus.CounterVec
	uploadRejectsTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		suggestionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hch",
			Subsystem: "booking",
			Name:      "suggestions_total",
			Help:      "Address autocomplete lookups",
		}, []string{"source"}),
		coverageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hch",
			Subsystem: "booking",
			Name:      "coverage_checks_total",
			Help:      "Zone coverage checks by outcome",
		}, []string{"outcome"}),
		slotFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hch",
			Subsystem: "booking",
			Name:      "slot_fetches_total",
			Help:      "Slot availability fetches by outcome",
		}, []string{"outcome"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hch",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Reservation submissions by outcome",
		}, []string{"outcome"}),
		staleDroppedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hch",
			Subsystem: "booking",
			Name:      "stale_responses_dropped_total",
			Help:      "Responses discarded because a newer user action superseded them",
		}, []string{"kind"}),
		uploadRejectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hch",
			Subsystem: "booking",
			Name:      "upload_rejects_total",
			Help:      "Photo attachments rejected by local validation",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.suggestionsTotal,
		m.coverageTotal,
		m.slotFetchTotal,
		m.submissionsTotal,
		m.staleDroppedTotal,
		m.uploadRejectsTotal,
	)
	return m
}

// ObserveSuggestion records an autocomplete lookup. source is "lookup" for
// requests that may reach the provider and "short_circuit" for queries too
// short to ever leave the client.
func (m *BookingMetrics) ObserveSuggestion(source string) {
	if m == nil {
		return
	}
	m.suggestionsTotal.WithLabelValues(source).Inc()
}

func (m *BookingMetrics) ObserveCoverage(outcome string) {
	if m == nil {
		return
	}
	m.coverageTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSlotFetch(outcome string) {
	if m == nil {
		return
	}
	m.slotFetchTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveStaleDropped(kind string) {
	if m == nil {
		return
	}
	m.staleDroppedTotal.WithLabelValues(kind).Inc()
}

func (m *BookingMetrics) ObserveUploadReject(reason string) {
	if m == nil {
		return
	}
	m.uploadRejectsTotal.WithLabelValues(reason).Inc()
}
