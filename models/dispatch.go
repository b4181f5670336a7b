package models

import (
	"sort"
	"strings"
	"time"
)

// DispatchLogEntry marks a company's day as dispatched. At most one exists per
// (OrgID, LogDate); the table key enforces it.
type DispatchLogEntry struct {
	OrgID        string    `json:"orgID" dynamodbav:"orgID"`
	LogDate      string    `json:"logDate" dynamodbav:"logDate"`
	LogID        string    `json:"logID" dynamodbav:"logID"`
	DispatchedAt time.Time `json:"dispatchedAt" dynamodbav:"dispatchedAt"`
	DispatchedBy string    `json:"dispatchedBy" dynamodbav:"dispatchedBy"`
}

// DispatchStatus is derived on every aggregation and never stored.
type DispatchStatus struct {
	IsDispatched            bool       `json:"isDispatched"`
	DispatchedAt            *time.Time `json:"dispatchedAt"`
	DispatchedBy            *string    `json:"dispatchedBy"`
	HasChangesAfterDispatch bool       `json:"hasChangesAfterDispatch"`
}

// DispatchQuery is the date range and filter set of a board read.
type DispatchQuery struct {
	StartDate     string      `json:"startDate"`
	EndDate       string      `json:"endDate"`
	TechnicianIDs []string    `json:"technicianIds,omitempty"`
	CrewIDs       []string    `json:"crewIds,omitempty"`
	Statuses      []JobStatus `json:"statuses,omitempty"`
	Search        string      `json:"q,omitempty"`
}

// Key renders the query canonically so two queries with the same values
// produce the same key regardless of filter ordering.
func (q DispatchQuery) Key() string {
	statuses := make([]string, 0, len(q.Statuses))
	for _, s := range q.Statuses {
		statuses = append(statuses, string(s))
	}
	parts := []string{
		"s=" + q.StartDate,
		"e=" + q.EndDate,
		"t=" + canonicalList(q.TechnicianIDs),
		"c=" + canonicalList(q.CrewIDs),
		"st=" + canonicalList(statuses),
		"q=" + strings.TrimSpace(q.Search),
	}
	return strings.Join(parts, "|")
}

// Equal compares two queries by value.
func (q DispatchQuery) Equal(other DispatchQuery) bool {
	return q.Key() == other.Key()
}

// ReferenceDate is the day whose roster and dispatch log the board uses.
func (q DispatchQuery) ReferenceDate(today string) string {
	if q.StartDate != "" {
		return q.StartDate
	}
	return today
}

func canonicalList(values []string) string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// DispatchJob is a job joined with its display fields, the shape of every row
// on the board and of a successful PATCH.
type DispatchJob struct {
	ID                   string                 `json:"id"`
	CustomerID           string                 `json:"customerId"`
	CustomerName         *string                `json:"customerName"`
	CustomerPhone        *string                `json:"customerPhone"`
	Title                string                 `json:"title"`
	Description          string                 `json:"description,omitempty"`
	Status               JobStatus              `json:"status"`
	Priority             JobPriority            `json:"priority"`
	ScheduledDate        string                 `json:"scheduledDate"`
	ScheduledTime        *string                `json:"scheduledTime"`
	EstimatedDuration    int                    `json:"estimatedDuration"`
	Address              string                 `json:"address"`
	Latitude             *float64               `json:"latitude,omitempty"`
	Longitude            *float64               `json:"longitude,omitempty"`
	AssignedTechnicianID *string                `json:"assignedTechnicianId"`
	TechnicianName       *string                `json:"technicianName"`
	AssignedCrewID       *string                `json:"assignedCrewId"`
	CrewName             *string                `json:"crewName"`
	DispatchedAt         *time.Time             `json:"dispatchedAt"`
	Notes                string                 `json:"notes,omitempty"`
	CustomFields         map[string]interface{} `json:"customFields,omitempty"`
	Photos               []Photo                `json:"photos"`
}

// DispatchStats counts the filtered jobs by status.
type DispatchStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Unassigned int `json:"unassigned"`
	Scheduled  int `json:"scheduled"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// Add counts one job with the given status.
func (s *DispatchStats) Add(status JobStatus) {
	s.Total++
	switch status {
	case JobStatusPending:
		s.Pending++
	case JobStatusUnassigned:
		s.Unassigned++
	case JobStatusScheduled:
		s.Scheduled++
	case JobStatusInProgress:
		s.InProgress++
	case JobStatusCompleted:
		s.Completed++
	case JobStatusCancelled:
		s.Cancelled++
	}
}

// DispatchResponse is the body of a board read.
type DispatchResponse struct {
	Jobs           []DispatchJob        `json:"jobs"`
	Technicians    []DispatchTechnician `json:"technicians"`
	Crews          []DispatchCrew       `json:"crews"`
	Stats          DispatchStats        `json:"stats"`
	DispatchStatus DispatchStatus       `json:"dispatchStatus"`
}

// MarkDispatchedRequest is the body of POST /dispatch/log.
type MarkDispatchedRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}
