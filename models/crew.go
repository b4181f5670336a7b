package models

import (
	"time"

	"github.com/gosimple/slug"
)

type Crew struct {
	CrewID           string    `json:"crewID" dynamodbav:"crewID"`
	OrgID            string    `json:"orgID" dynamodbav:"orgID"`
	Name             string    `json:"name" dynamodbav:"name"`
	Color            string    `json:"color" dynamodbav:"color"`
	LeadTechnicianID *string   `json:"leadTechnicianId" dynamodbav:"leadTechnicianId,omitempty"`
	VehicleLabel     *string   `json:"vehicle" dynamodbav:"vehicle,omitempty"`
	IsActive         bool      `json:"isActive" dynamodbav:"isActive"`
	SortOrder        int       `json:"sortOrder" dynamodbav:"sortOrder"`
	CreatedAt        time.Time `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" dynamodbav:"updatedAt"`
}

// DisplayID is the human readable identity of the crew, derived from its name.
func (c *Crew) DisplayID() string {
	return slug.Make(c.Name)
}

// CrewMember is one row of a crew's permanent membership.
type CrewMember struct {
	CrewID       string `json:"crewID" dynamodbav:"crewID"`
	TechnicianID string `json:"technicianID" dynamodbav:"technicianID"`
	OrgID        string `json:"orgID" dynamodbav:"orgID"`
}

// RosterEntry records whether a technician worked on a crew on a given day.
type RosterEntry struct {
	WorkDate     string    `json:"workDate" dynamodbav:"workDate"`
	EntryKey     string    `json:"entryKey" dynamodbav:"entryKey"`
	CrewID       string    `json:"crewID" dynamodbav:"crewID"`
	TechnicianID string    `json:"technicianID" dynamodbav:"technicianID"`
	OrgID        string    `json:"orgID" dynamodbav:"orgID"`
	IsPresent    bool      `json:"isPresent" dynamodbav:"isPresent"`
	RecordedAt   time.Time `json:"recordedAt" dynamodbav:"recordedAt"`
}

// RosterEntryKey builds the sort key of a roster row.
func RosterEntryKey(crewID, technicianID string) string {
	return crewID + "#" + technicianID
}

// DispatchCrew is a crew as returned on the board.
type DispatchCrew struct {
	ID                 string               `json:"id"`
	DisplayID          string               `json:"displayId"`
	Name               string               `json:"name"`
	Color              string               `json:"color"`
	LeadTechnicianID   *string              `json:"leadTechnicianId"`
	LeadTechnicianName *string              `json:"leadTechnicianName"`
	Vehicle            *string              `json:"vehicle"`
	Members            []DispatchTechnician `json:"members"`
	TodayJobCount      int                  `json:"todayJobCount"`
	CompletedCount     int                  `json:"completedCount"`
}
