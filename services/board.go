package services

import (
	"fieldfuze-dispatch/models"
	"fmt"
	"sort"
	"strings"
)

// matchesSearch reports whether any searchable field of the row contains q,
// ignoring case. An empty q matches everything.
func matchesSearch(row *models.DispatchJob, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}

	fields := []string{row.Title, row.Address, row.Notes, string(row.Priority)}
	for _, p := range []*string{row.CustomerName, row.TechnicianName, row.CrewName} {
		if p != nil {
			fields = append(fields, *p)
		}
	}
	for _, v := range row.CustomFields {
		if v != nil {
			fields = append(fields, fmt.Sprint(v))
		}
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// sortKey orders untimed jobs at midnight, ahead of timed jobs on the same day.
func sortKey(row *models.DispatchJob) (string, string) {
	if row.ScheduledTime == nil || *row.ScheduledTime == "" {
		return row.ScheduledDate, "00:00"
	}
	return row.ScheduledDate, *row.ScheduledTime
}

func sortJobs(rows []models.DispatchJob) {
	sort.SliceStable(rows, func(i, j int) bool {
		di, ti := sortKey(&rows[i])
		dj, tj := sortKey(&rows[j])
		if di != dj {
			return di < dj
		}
		return ti < tj
	})
}

func computeStats(rows []models.DispatchJob) models.DispatchStats {
	var stats models.DispatchStats
	for i := range rows {
		stats.Add(rows[i].Status)
	}
	return stats
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

// keepTechnicians keeps the jobs assigned to one of the technician display
// identities. Unassigned jobs never match.
func keepTechnicians(jobs []*models.Job, technicianIDs []string) []*models.Job {
	want := stringSet(technicianIDs)
	if len(want) == 0 {
		return jobs
	}
	kept := jobs[:0:0]
	for _, job := range jobs {
		if !job.HasTechnician() {
			continue
		}
		if _, ok := want[*job.AssignedTechnicianID]; ok {
			kept = append(kept, job)
		}
	}
	return kept
}

// keepCrews keeps the jobs whose assigned crew matches one of crewIDs by
// storage or display identity.
func keepCrews(jobs []*models.Job, crews []*models.Crew, crewIDs []string) []*models.Job {
	want := stringSet(crewIDs)
	if len(want) == 0 {
		return jobs
	}
	accept := make(map[string]struct{}, len(want))
	for id := range want {
		accept[id] = struct{}{}
	}
	for _, c := range crews {
		_, byStorage := want[c.CrewID]
		_, byDisplay := want[c.DisplayID()]
		if byStorage || byDisplay {
			accept[c.CrewID] = struct{}{}
			accept[c.DisplayID()] = struct{}{}
		}
	}

	kept := jobs[:0:0]
	for _, job := range jobs {
		if !job.HasCrew() {
			continue
		}
		if _, ok := accept[*job.AssignedCrewID]; ok {
			kept = append(kept, job)
		}
	}
	return kept
}

// synthesizeCrews builds the board crews: resolved members, the reference
// day's job counters and the lead technician's name.
func synthesizeCrews(crews []*models.Crew, techs []*models.Technician, membership map[string][]string, rows []models.DispatchJob, day string, joiner *jobJoiner) []models.DispatchCrew {
	out := make([]models.DispatchCrew, 0, len(crews))
	for _, c := range crews {
		members := stringSet(membership[c.CrewID])
		dc := models.DispatchCrew{
			ID:               c.CrewID,
			DisplayID:        c.DisplayID(),
			Name:             c.Name,
			Color:            c.Color,
			LeadTechnicianID: c.LeadTechnicianID,
			Vehicle:          c.VehicleLabel,
			Members:          []models.DispatchTechnician{},
		}

		for _, t := range techs {
			if _, ok := members[t.TechnicianID]; ok {
				dc.Members = append(dc.Members, models.NewDispatchTechnician(t))
			}
		}

		for i := range rows {
			row := &rows[i]
			if row.ScheduledDate != day || row.AssignedCrewID == nil {
				continue
			}
			if *row.AssignedCrewID != c.CrewID && *row.AssignedCrewID != dc.DisplayID {
				continue
			}
			dc.TodayJobCount++
			if row.Status == models.JobStatusCompleted {
				dc.CompletedCount++
			}
		}

		if lead := joiner.technician(c.LeadTechnicianID); lead != nil {
			name := lead.FullName()
			dc.LeadTechnicianName = &name
		}
		out = append(out, dc)
	}
	return out
}
