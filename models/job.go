package models

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusUnassigned JobStatus = "unassigned"
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// JobStatuses lists every valid status in board order.
var JobStatuses = []JobStatus{
	JobStatusPending,
	JobStatusUnassigned,
	JobStatusScheduled,
	JobStatusInProgress,
	JobStatusCompleted,
	JobStatusCancelled,
}

func (s JobStatus) IsValid() bool {
	for _, v := range JobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the job has left the schedulable lifecycle.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

type JobPriority string

const (
	JobPriorityLow    JobPriority = "low"
	JobPriorityNormal JobPriority = "normal"
	JobPriorityHigh   JobPriority = "high"
	JobPriorityUrgent JobPriority = "urgent"
)

var JobPriorities = []JobPriority{
	JobPriorityLow,
	JobPriorityNormal,
	JobPriorityHigh,
	JobPriorityUrgent,
}

func (p JobPriority) IsValid() bool {
	for _, v := range JobPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Job is the stored unit of scheduled work. ScheduledDate is a calendar date
// (YYYY-MM-DD) and ScheduledTime an optional HH:MM time of day.
type Job struct {
	JobID                    string                 `json:"jobID" dynamodbav:"jobID"`
	OrgID                    string                 `json:"orgID" dynamodbav:"orgID"`
	CustomerID               string                 `json:"customerID" dynamodbav:"customerID"`
	Title                    string                 `json:"title" dynamodbav:"title"`
	Description              string                 `json:"description,omitempty" dynamodbav:"description,omitempty"`
	JobStatus                JobStatus              `json:"status" dynamodbav:"jobStatus"`
	JobPriority              JobPriority            `json:"priority" dynamodbav:"jobPriority"`
	ScheduledDate            string                 `json:"scheduledDate" dynamodbav:"scheduledDate"`
	ScheduledTime            *string                `json:"scheduledTime" dynamodbav:"scheduledTime,omitempty"`
	EstimatedDurationMinutes int                    `json:"estimatedDuration" dynamodbav:"estimatedDurationMinutes"`
	Address                  string                 `json:"address" dynamodbav:"address"`
	Latitude                 *float64               `json:"latitude,omitempty" dynamodbav:"latitude,omitempty"`
	Longitude                *float64               `json:"longitude,omitempty" dynamodbav:"longitude,omitempty"`
	AssignedTechnicianID     *string                `json:"assignedTechnicianId" dynamodbav:"assignedTechnicianId,omitempty"`
	AssignedCrewID           *string                `json:"assignedCrewId" dynamodbav:"assignedCrewId,omitempty"`
	DispatchedAt             *time.Time             `json:"dispatchedAt" dynamodbav:"dispatchedAt,omitempty"`
	Notes                    string                 `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	CustomFields             map[string]interface{} `json:"customFields,omitempty" dynamodbav:"customFields,omitempty"`
	JobStartedAt             *time.Time             `json:"jobStartedAt,omitempty" dynamodbav:"jobStartedAt,omitempty"`
	JobEndedAt               *time.Time             `json:"jobEndedAt,omitempty" dynamodbav:"jobEndedAt,omitempty"`
	CreatedAt                time.Time              `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt                time.Time              `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
	UpdatedBy                string                 `json:"updatedBy,omitempty" dynamodbav:"updatedBy,omitempty"`
}

// HasTechnician reports whether a technician is assigned.
func (j *Job) HasTechnician() bool {
	return j.AssignedTechnicianID != nil && *j.AssignedTechnicianID != ""
}

// HasCrew reports whether a crew is assigned.
func (j *Job) HasCrew() bool {
	return j.AssignedCrewID != nil && *j.AssignedCrewID != ""
}

// ApplyAssignmentTransition enforces the assignment invariant after the
// assignment fields of a job have changed: an unassigned job that gains a
// technician or crew becomes scheduled, and a non-terminal job left with
// neither becomes unassigned.
func ApplyAssignmentTransition(status JobStatus, hasTechnician, hasCrew bool) JobStatus {
	assigned := hasTechnician || hasCrew
	switch {
	case assigned && status == JobStatusUnassigned:
		return JobStatusScheduled
	case !assigned && !status.IsTerminal():
		return JobStatusUnassigned
	default:
		return status
	}
}

// Photo is a photo attachment reference for a job.
type Photo struct {
	JobID     string    `json:"jobID" dynamodbav:"jobID"`
	PhotoID   string    `json:"photoID" dynamodbav:"photoID"`
	URL       string    `json:"url" dynamodbav:"url"`
	Caption   string    `json:"caption,omitempty" dynamodbav:"caption,omitempty"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

// Customer holds the customer fields the board joins onto a job.
type Customer struct {
	CustomerID string `json:"customerID" dynamodbav:"customerID"`
	OrgID      string `json:"orgID" dynamodbav:"orgID"`
	Name       string `json:"name" dynamodbav:"name"`
	Phone      string `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
}

// JobFilter is the storage-level filter for a job range read.
type JobFilter struct {
	OrgID     string
	FromDate  string
	ToDate    string
	Statuses  []JobStatus
	CrewIDs   []string
}
