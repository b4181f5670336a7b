package models

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// IsClear reports whether the field was sent as null or as an empty string.
func (o OptionalString) IsClear() bool {
	return o.Set && (o.Value == nil || *o.Value == "")
}

// Some returns a set OptionalString holding v.
func Some(v string) OptionalString {
	return OptionalString{Set: true, Value: &v}
}

// Null returns a set OptionalString holding null.
func Null() OptionalString {
	return OptionalString{Set: true}
}

// JobUpdates is the closed set of fields a dispatcher may change on a job.
type JobUpdates struct {
	Status            *JobStatus     `json:"status,omitempty" validate:"omitnil,oneof=pending unassigned scheduled in_progress completed cancelled"`
	AssignedTo        OptionalString `json:"assignedTo,omitempty"`
	AssignedCrewID    OptionalString `json:"assignedCrewId,omitempty"`
	ScheduledDate     *string        `json:"scheduledDate,omitempty" validate:"omitnil,datetime=2006-01-02"`
	ScheduledTime     OptionalString `json:"scheduledTime,omitempty"`
	EstimatedDuration *int           `json:"estimatedDuration,omitempty" validate:"omitnil,min=0,max=10080"`
	Notes             *string        `json:"notes,omitempty" validate:"omitnil,max=5000"`
	Priority          *JobPriority   `json:"priority,omitempty" validate:"omitnil,oneof=low normal high urgent"`
}

// IsEmpty reports whether no field was supplied.
func (u *JobUpdates) IsEmpty() bool {
	return u.Status == nil &&
		!u.AssignedTo.Set &&
		!u.AssignedCrewID.Set &&
		u.ScheduledDate == nil &&
		!u.ScheduledTime.Set &&
		u.EstimatedDuration == nil &&
		u.Notes == nil &&
		u.Priority == nil
}

// MarshalJSON writes only the supplied fields so that an unset optional field
// is never sent as null.
func (u JobUpdates) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{})
	if u.Status != nil {
		out["status"] = *u.Status
	}
	if u.AssignedTo.Set {
		out["assignedTo"] = u.AssignedTo.Value
	}
	if u.AssignedCrewID.Set {
		out["assignedCrewId"] = u.AssignedCrewID.Value
	}
	if u.ScheduledDate != nil {
		out["scheduledDate"] = *u.ScheduledDate
	}
	if u.ScheduledTime.Set {
		out["scheduledTime"] = u.ScheduledTime.Value
	}
	if u.EstimatedDuration != nil {
		out["estimatedDuration"] = *u.EstimatedDuration
	}
	if u.Notes != nil {
		out["notes"] = *u.Notes
	}
	if u.Priority != nil {
		out["priority"] = *u.Priority
	}
	return json.Marshal(out)
}

// TouchesAssignment reports whether a technician or crew assignment changes.
func (u *JobUpdates) TouchesAssignment() bool {
	return u.AssignedTo.Set || u.AssignedCrewID.Set
}

// Persistence attribute names of the updatable job fields.
const (
	AttrJobStatus            = "jobStatus"
	AttrAssignedTechnicianID = "assignedTechnicianId"
	AttrAssignedCrewID       = "assignedCrewId"
	AttrScheduledDate        = "scheduledDate"
	AttrScheduledTime        = "scheduledTime"
	AttrEstimatedDuration    = "estimatedDurationMinutes"
	AttrNotes                = "notes"
	AttrJobPriority          = "jobPriority"
	AttrDispatchedAt         = "dispatchedAt"
	AttrJobStartedAt         = "jobStartedAt"
	AttrJobEndedAt           = "jobEndedAt"
	AttrUpdatedAt            = "updatedAt"
	AttrUpdatedBy            = "updatedBy"
)

// ToPersistence translates the supplied fields to persistence attribute names.
// A nil value means the attribute is removed.
func (u *JobUpdates) ToPersistence() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Status != nil {
		fields[AttrJobStatus] = string(*u.Status)
	}
	if u.AssignedTo.Set {
		fields[AttrAssignedTechnicianID] = optionalValue(u.AssignedTo)
	}
	if u.AssignedCrewID.Set {
		fields[AttrAssignedCrewID] = optionalValue(u.AssignedCrewID)
	}
	if u.ScheduledDate != nil {
		fields[AttrScheduledDate] = *u.ScheduledDate
	}
	if u.ScheduledTime.Set {
		fields[AttrScheduledTime] = optionalValue(u.ScheduledTime)
	}
	if u.EstimatedDuration != nil {
		fields[AttrEstimatedDuration] = *u.EstimatedDuration
	}
	if u.Notes != nil {
		fields[AttrNotes] = *u.Notes
	}
	if u.Priority != nil {
		fields[AttrJobPriority] = string(*u.Priority)
	}
	return fields
}

func optionalValue(o OptionalString) interface{} {
	if o.IsClear() {
		return nil
	}
	return *o.Value
}

// JobUpdateRequest is the body of PATCH /dispatch.
type JobUpdateRequest struct {
	JobID   string      `json:"jobId"`
	Updates *JobUpdates `json:"updates"`
}

// JobUpdateResult is the body of a successful PATCH /dispatch.
type JobUpdateResult struct {
	Data DispatchJob `json:"data"`
}
