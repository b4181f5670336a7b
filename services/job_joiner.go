package services

import (
	"fieldfuze-dispatch/models"
)

// jobJoiner decorates stored jobs with the display fields of the board. The
// aggregator and the update gateway share it so a PATCH returns a row shaped
// exactly like a board row.
type jobJoiner struct {
	techs     map[string]*models.Technician
	crews     map[string]*models.Crew
	customers map[string]*models.Customer
	photos    map[string][]models.Photo
}

func newJobJoiner(techs []*models.Technician, crews []*models.Crew, customers map[string]*models.Customer, photos map[string][]models.Photo) *jobJoiner {
	j := &jobJoiner{
		techs:     make(map[string]*models.Technician, len(techs)*2),
		crews:     make(map[string]*models.Crew, len(crews)*2),
		customers: customers,
		photos:    photos,
	}
	// storage IDs first so a display ID never shadows another record's storage ID
	for _, t := range techs {
		j.techs[t.TechnicianID] = t
	}
	for _, t := range techs {
		if t.DisplayID != "" {
			if _, taken := j.techs[t.DisplayID]; !taken {
				j.techs[t.DisplayID] = t
			}
		}
	}
	for _, c := range crews {
		j.crews[c.CrewID] = c
	}
	for _, c := range crews {
		if _, taken := j.crews[c.DisplayID()]; !taken {
			j.crews[c.DisplayID()] = c
		}
	}
	return j
}

// technician looks a technician up by storage or display identity.
func (j *jobJoiner) technician(id *string) *models.Technician {
	if id == nil || *id == "" {
		return nil
	}
	return j.techs[*id]
}

func (j *jobJoiner) crew(id *string) *models.Crew {
	if id == nil || *id == "" {
		return nil
	}
	return j.crews[*id]
}

func (j *jobJoiner) join(job *models.Job) models.DispatchJob {
	row := models.DispatchJob{
		ID:                   job.JobID,
		CustomerID:           job.CustomerID,
		Title:                job.Title,
		Description:          job.Description,
		Status:               job.JobStatus,
		Priority:             job.JobPriority,
		ScheduledDate:        job.ScheduledDate,
		ScheduledTime:        job.ScheduledTime,
		EstimatedDuration:    job.EstimatedDurationMinutes,
		Address:              job.Address,
		Latitude:             job.Latitude,
		Longitude:            job.Longitude,
		AssignedTechnicianID: job.AssignedTechnicianID,
		AssignedCrewID:       job.AssignedCrewID,
		DispatchedAt:         job.DispatchedAt,
		Notes:                job.Notes,
		CustomFields:         job.CustomFields,
		Photos:               j.photos[job.JobID],
	}
	if row.Photos == nil {
		row.Photos = []models.Photo{}
	}

	if c, ok := j.customers[job.CustomerID]; ok && c != nil {
		name := c.Name
		row.CustomerName = &name
		if c.Phone != "" {
			phone := c.Phone
			row.CustomerPhone = &phone
		}
	}
	if t := j.technician(job.AssignedTechnicianID); t != nil {
		name := t.FullName()
		row.TechnicianName = &name
	}
	if c := j.crew(job.AssignedCrewID); c != nil {
		name := c.Name
		row.CrewName = &name
	}
	return row
}
