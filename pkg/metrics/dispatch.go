package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records counters for the ride dispatch and wallet flows.
type DispatchMetrics struct {
	offersCreated   prometheus.Counter
	noDrivers       prometheus.Counter
	acceptWon       prometheus.Counter
	acceptConflicts *prometheus.CounterVec
	ridesCompleted  prometheus.Counter
	commissionCents prometheus.Counter
	outboxPublished prometheus.Counter
	outboxFailures  prometheus.Counter
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	offersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_offers_created_total",
		Help: "Offers fanned out to candidate drivers.",
	})
	noDrivers := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_no_drivers_total",
		Help: "Ride requests that found no eligible driver.",
	})
	acceptWon := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "offers_accepted_total",
		Help: "Offers accepted by a driver.",
	})
	acceptConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "offer_accept_rejections_total",
		Help: "Offer acceptance attempts rejected, by reason.",
	}, []string{"reason"})
	ridesCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rides_completed_total",
		Help: "Rides marked finished.",
	})
	commissionCents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "commission_debited_cents_total",
		Help: "Total commission debited from driver wallets, in cents.",
	})
	outboxPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_published_total",
		Help: "Outbox events published downstream.",
	})
	outboxFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed.",
	})
	reg.MustRegister(offersCreated, noDrivers, acceptWon, acceptConflicts, ridesCompleted, commissionCents, outboxPublished, outboxFailures)
	return &DispatchMetrics{
		offersCreated:   offersCreated,
		noDrivers:       noDrivers,
		acceptWon:       acceptWon,
		acceptConflicts: acceptConflicts,
		ridesCompleted:  ridesCompleted,
		commissionCents: commissionCents,
		outboxPublished: outboxPublished,
		outboxFailures:  outboxFailures,
	}
}

// AddOffersCreated records n offers fanned out for a ride.
func (m *DispatchMetrics) AddOffersCreated(n int) {
	if m == nil || m.offersCreated == nil {
		return
	}
	m.offersCreated.Add(float64(n))
}

// IncNoDrivers increments the empty-dispatch counter.
func (m *DispatchMetrics) IncNoDrivers() {
	if m == nil || m.noDrivers == nil {
		return
	}
	m.noDrivers.Inc()
}

// IncAccepted increments the successful acceptance counter.
func (m *DispatchMetrics) IncAccepted() {
	if m == nil || m.acceptWon == nil {
		return
	}
	m.acceptWon.Inc()
}

// IncAcceptRejected increments the rejection counter for the given reason.
func (m *DispatchMetrics) IncAcceptRejected(reason string) {
	if m == nil || m.acceptConflicts == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.acceptConflicts.WithLabelValues(reason).Inc()
}

// IncRideCompleted increments the completed rides counter.
func (m *DispatchMetrics) IncRideCompleted() {
	if m == nil || m.ridesCompleted == nil {
		return
	}
	m.ridesCompleted.Inc()
}

// AddCommissionCents records a commission debit amount.
func (m *DispatchMetrics) AddCommissionCents(cents int64) {
	if m == nil || m.commissionCents == nil {
		return
	}
	m.commissionCents.Add(float64(cents))
}

// IncOutboxPublished increments the published outbox event counter.
func (m *DispatchMetrics) IncOutboxPublished() {
	if m == nil || m.outboxPublished == nil {
		return
	}
	m.outboxPublished.Inc()
}

// IncOutboxFailure increments the failed outbox publish counter.
func (m *DispatchMetrics) IncOutboxFailure() {
	if m == nil || m.outboxFailures == nil {
		return
	}
	m.outboxFailures.Inc()
}
