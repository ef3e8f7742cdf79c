package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultPartial = "partial"
	ResultBusy    = "busy"
)

var (
	// Saves: сохранения рабочих сессий по исходу.
	Saves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tzu_risk_saves_total",
		Help: "Workspace saves by result",
	}, []string{"result"})

	// Deletions: удаления угроз при сохранении.
	Deletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tzu_risk_deletions_total",
		Help: "Threat deletions by result",
	}, []string{"result"})

	// BatchUpdates: пакетные обновления через REST API.
	BatchUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tzu_risk_batch_updates_total",
		Help: "Batch risk updates by result",
	}, []string{"result"})
)

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

func ObserveBatchUpdate(err error) {
	BatchUpdates.WithLabelValues(result(err)).Inc()
}

// ObserveSave: исход сохранения и число удалений.
func ObserveSave(outcome string, deleted, failed int) {
	Saves.WithLabelValues(outcome).Inc()
	if deleted > 0 {
		Deletions.WithLabelValues(ResultOK).Add(float64(deleted))
	}
	if failed > 0 {
		Deletions.WithLabelValues(ResultError).Add(float64(failed))
	}
}
