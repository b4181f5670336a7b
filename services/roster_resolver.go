package services

import (
	"context"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/repository"
	"fieldfuze-dispatch/utils/logger"
)

// RosterResolver decides which technicians work each crew on a given day.
//
// A crew with any roster rows for the day is staffed by exactly the rows
// marked present. A crew with no rows falls back to its permanent members,
// but only for today or a later day. A past day without rows resolves to
// nobody: nothing was recorded, so nothing is assumed.
type RosterResolver struct {
	crews  repository.CrewRepositoryInterface
	logger logger.Logger
}

func NewRosterResolver(crews repository.CrewRepositoryInterface, log logger.Logger) *RosterResolver {
	return &RosterResolver{crews: crews, logger: log}
}

// Resolve returns technician storage IDs per crew ID for date. rows are the
// roster rows already read for date; permanent membership is read once, and
// only for the crews that need the fallback.
func (r *RosterResolver) Resolve(ctx context.Context, orgID, date, today string, crewIDs []string, rows []*models.RosterEntry) map[string][]string {
	var permanent map[string][]string

	if need := CrewsNeedingFallback(date, today, crewIDs, rows); len(need) > 0 {
		members, err := r.crews.ListPermanentMembers(ctx, orgID, need)
		if err != nil {
			r.logger.Warnf("Permanent membership unavailable for %d crews, resolving them empty: %v", len(need), err)
		} else {
			permanent = members
		}
	}

	return ResolveMembership(date, today, crewIDs, rows, permanent)
}

// CrewsNeedingFallback lists the crews with no roster rows on date, provided
// date is not in the past.
func CrewsNeedingFallback(date, today string, crewIDs []string, rows []*models.RosterEntry) []string {
	if date < today {
		return nil
	}
	rostered := rosteredCrews(date, rows)
	var need []string
	for _, id := range crewIDs {
		if !rostered[id] {
			need = append(need, id)
		}
	}
	return need
}

// ResolveMembership applies the roster rule given the day's roster rows and
// the permanent members of the crews without rows.
func ResolveMembership(date, today string, crewIDs []string, rows []*models.RosterEntry, permanent map[string][]string) map[string][]string {
	rostered := rosteredCrews(date, rows)
	present := make(map[string][]string, len(crewIDs))
	for _, row := range rows {
		if row.WorkDate == date && row.IsPresent {
			present[row.CrewID] = append(present[row.CrewID], row.TechnicianID)
		}
	}

	resolved := make(map[string][]string, len(crewIDs))
	for _, id := range crewIDs {
		switch {
		case rostered[id]:
			resolved[id] = present[id]
		case date >= today:
			resolved[id] = permanent[id]
		default:
			resolved[id] = nil
		}
		if resolved[id] == nil {
			resolved[id] = []string{}
		}
	}
	return resolved
}

func rosteredCrews(date string, rows []*models.RosterEntry) map[string]bool {
	rostered := make(map[string]bool)
	for _, row := range rows {
		if row.WorkDate == date {
			rostered[row.CrewID] = true
		}
	}
	return rostered
}
