package repository

import (
	"context"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"regexp"
	"sort"
	"strings"
)

var crewStorageIDPattern = regexp.MustCompile(`^crew_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// IsCrewStorageID reports whether id is a crew storage identity rather than a
// display identity.
func IsCrewStorageID(id string) bool {
	return crewStorageIDPattern.MatchString(strings.ToLower(id))
}

type CrewRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
}

func NewCrewRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *CrewRepository {
	return &CrewRepository{
		db:     db,
		config: cfg,
		logger: log,
	}
}

// ListActive returns the company's active crews by sort order, then name.
func (r *CrewRepository) ListActive(ctx context.Context, orgID string) ([]*models.Crew, error) {
	var crews []*models.Crew
	err := r.db.Query(ctx, models.RangeQuery{
		TableName:      r.config.TableName(CrewsTable),
		IndexName:      OrgIndex,
		PartitionKey:   "orgID",
		PartitionValue: orgID,
		BoolFilters:    []models.BoolFilter{{Name: "isActive", Value: true}},
	}, &crews)
	if err != nil {
		r.logger.Errorf("Failed to read crews: %v", err)
		return nil, storageError("failed to read crews", err)
	}

	sort.SliceStable(crews, func(i, j int) bool {
		if crews[i].SortOrder != crews[j].SortOrder {
			return crews[i].SortOrder < crews[j].SortOrder
		}
		return crews[i].Name < crews[j].Name
	})

	r.logger.Infof("Found %d active crews", len(crews))
	return crews, nil
}

// ListPermanentMembers reads the standing membership of the given crews in a
// single query and returns technician IDs keyed by crew ID.
func (r *CrewRepository) ListPermanentMembers(ctx context.Context, orgID string, crewIDs []string) (map[string][]string, error) {
	members := make(map[string][]string, len(crewIDs))
	if len(crewIDs) == 0 {
		return members, nil
	}

	var rows []*models.CrewMember
	err := r.db.Query(ctx, models.RangeQuery{
		TableName:      r.config.TableName(CrewMembersTable),
		IndexName:      OrgIndex,
		PartitionKey:   "orgID",
		PartitionValue: orgID,
		Filters:        []models.AttributeFilter{{Name: "crewID", Values: crewIDs}},
	}, &rows)
	if err != nil {
		r.logger.Errorf("Failed to read crew members: %v", err)
		return nil, storageError("failed to read crew members", err)
	}

	for _, row := range rows {
		members[row.CrewID] = append(members[row.CrewID], row.TechnicianID)
	}

	r.logger.Infof("Found %d permanent members across %d crews", len(rows), len(crewIDs))
	return members, nil
}
