package event

import (
	"insurance-service/internal/models"
	"time"
)

const ReconcileQueue string = "derived_index_reconcile_events"

// ReconcileEvent tells an operator which derived keys missed a committed
// policy. Replaying the listed keys from the primary row repairs the index.
type ReconcileEvent struct {
	StorageRef   string                     `json:"storage_ref"`
	PolicyNumber string                     `json:"nro_poliza"`
	FailedKeys   []models.DerivedKeyFailure `json:"failed_keys"`
	Error        string                     `json:"error"`
	OccurredAt   time.Time                  `json:"occurred_at"`
}

func NewReconcileEvent(failure *models.PartialFailureError, now time.Time) ReconcileEvent {
	event := ReconcileEvent{
		StorageRef:   failure.StorageRef.String(),
		PolicyNumber: failure.PolicyNumber,
		FailedKeys:   failure.Failures,
		OccurredAt:   now.UTC(),
	}
	if failure.Err != nil {
		event.Error = failure.Err.Error()
	}
	return event
}
