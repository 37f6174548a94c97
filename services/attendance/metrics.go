package attendance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_checkins_total",
		Help: "Check-in attempts by result.",
	}, []string{"result"})

	syncRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_sync_records_total",
		Help: "Offline sync batch records by outcome.",
	}, []string{"outcome"})

	pendingReplaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_pending_replays_total",
		Help: "Pending check-in replay attempts by outcome.",
	}, []string{"outcome"})
)
