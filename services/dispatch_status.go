package services

import "fieldfuze-dispatch/models"

// EvaluateDispatchStatus derives the board's dispatch state from the day's log
// rows. Zero or one row is the only valid shape.
func EvaluateDispatchStatus(entries []*models.DispatchLogEntry, jobs []models.DispatchJob) (models.DispatchStatus, error) {
	switch len(entries) {
	case 0:
		return models.DispatchStatus{}, nil
	case 1:
	default:
		return models.DispatchStatus{}, models.ErrAmbiguousDispatchLog
	}

	entry := entries[0]
	dispatchedAt := entry.DispatchedAt
	status := models.DispatchStatus{
		IsDispatched: true,
		DispatchedAt: &dispatchedAt,
	}
	if entry.DispatchedBy != "" {
		by := entry.DispatchedBy
		status.DispatchedBy = &by
	}

	for i := range jobs {
		if jobs[i].DispatchedAt != nil && jobs[i].DispatchedAt.After(dispatchedAt) {
			status.HasChangesAfterDispatch = true
			break
		}
	}
	return status, nil
}
