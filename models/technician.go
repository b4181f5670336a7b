package models

import "time"

// Technician is a team member that can be assigned to jobs. TechnicianID is the
// storage identity; DisplayID is what jobs and filters refer to.
type Technician struct {
	TechnicianID string    `json:"technicianID" dynamodbav:"technicianID"`
	DisplayID    string    `json:"displayID" dynamodbav:"displayID"`
	OrgID        string    `json:"orgID" dynamodbav:"orgID"`
	FirstName    string    `json:"firstName" dynamodbav:"firstName"`
	LastName     string    `json:"lastName" dynamodbav:"lastName"`
	Email        string    `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Phone        string    `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	Color        string    `json:"color,omitempty" dynamodbav:"color,omitempty"`
	IsActive     bool      `json:"isActive" dynamodbav:"isActive"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt"`
}

func (t *Technician) FullName() string {
	switch {
	case t.FirstName == "":
		return t.LastName
	case t.LastName == "":
		return t.FirstName
	default:
		return t.FirstName + " " + t.LastName
	}
}

// DispatchTechnician is a technician as returned on the board.
type DispatchTechnician struct {
	ID        string `json:"id"`
	DisplayID string `json:"displayId"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Color     string `json:"color,omitempty"`
}

func NewDispatchTechnician(t *Technician) DispatchTechnician {
	return DispatchTechnician{
		ID:        t.TechnicianID,
		DisplayID: t.DisplayID,
		Name:      t.FullName(),
		Email:     t.Email,
		Phone:     t.Phone,
		Color:     t.Color,
	}
}
