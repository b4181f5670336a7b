package repository

import (
	"context"
	"errors"
	"fieldfuze-dispatch/dal"
	"fieldfuze-dispatch/models"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RepositoryTestSuite struct {
	suite.Suite
	db     *MockDatabaseClient
	config *models.Config
	ctx    context.Context
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.db = new(MockDatabaseClient)
	suite.config = &models.Config{DynamoDBTablePrefix: "test"}
	suite.ctx = context.Background()
}

func (suite *RepositoryTestSuite) TearDownTest() {
	suite.db.AssertExpectations(suite.T())
}

func (suite *RepositoryTestSuite) TestListJobsInRangePushesDownFilters() {
	repo := NewJobRepository(suite.db, suite.config, quietLogger())

	suite.db.On("Query", suite.ctx, mock.MatchedBy(func(q models.RangeQuery) bool {
		return q.TableName == "test_jobs" &&
			q.IndexName == JobsByDateIndex &&
			q.PartitionValue == "org-1" &&
			q.SortKey == "scheduledDate" &&
			q.SortFrom == "2026-03-01" && q.SortTo == "2026-03-07" &&
			len(q.Filters) == 2 &&
			q.Filters[0].Name == "jobStatus" && assert.ObjectsAreEqual([]string{"scheduled", "completed"}, q.Filters[0].Values) &&
			q.Filters[1].Name == "assignedCrewId"
	}), mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*[]*models.Job)
		*out = []*models.Job{{JobID: "job-1", OrgID: "org-1", ScheduledDate: "2026-03-02"}}
	}).Return(nil)

	jobs, err := repo.ListJobsInRange(suite.ctx, models.JobFilter{
		OrgID:    "org-1",
		FromDate: "2026-03-01",
		ToDate:   "2026-03-07",
		Statuses: []models.JobStatus{models.JobStatusScheduled, models.JobStatusCompleted},
		CrewIDs:  []string{"crew_1"},
	})
	require.NoError(suite.T(), err)
	require.Len(suite.T(), jobs, 1)
	assert.Equal(suite.T(), "job-1", jobs[0].JobID)
}

func (suite *RepositoryTestSuite) TestListJobsInRangeRequiresOrg() {
	repo := NewJobRepository(suite.db, suite.config, quietLogger())
	_, err := repo.ListJobsInRange(suite.ctx, models.JobFilter{})
	assert.Error(suite.T(), err)
}

func (suite *RepositoryTestSuite) TestListJobsKeepsServiceErrorCode() {
	repo := NewJobRepository(suite.db, suite.config, quietLogger())
	apiErr := &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException", Message: "slow down"}
	suite.db.On("Query", suite.ctx, mock.Anything, mock.Anything).Return(apiErr)

	_, err := repo.ListJobsInRange(suite.ctx, models.JobFilter{OrgID: "org-1"})
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "ProvisionedThroughputExceededException")
	assert.ErrorIs(suite.T(), err, apiErr)
}

func (suite *RepositoryTestSuite) TestGetJobNotFound() {
	repo := NewJobRepository(suite.db, suite.config, quietLogger())
	suite.db.On("GetItem", suite.ctx, mock.Anything, mock.Anything).Return(nil)

	job, err := repo.GetJob(suite.ctx, "job-404")
	assert.Nil(suite.T(), job)
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *RepositoryTestSuite) TestGetJobEmptyIDIsValidationError() {
	repo := NewJobRepository(suite.db, suite.config, quietLogger())
	_, err := repo.GetJob(suite.ctx, "")
	assert.ErrorIs(suite.T(), err, models.ErrValidation)
}

func (suite *RepositoryTestSuite) TestUpdateJobFieldsMissingItem() {
	repo := NewJobRepository(suite.db, suite.config, quietLogger())
	suite.db.On("UpdateItem", suite.ctx, mock.Anything, mock.Anything, mock.Anything).Return(dal.ErrConditionFailed)

	_, err := repo.UpdateJobFields(suite.ctx, "job-1", map[string]interface{}{"notes": "x"})
	assert.ErrorIs(suite.T(), err, models.ErrNotFound)
}

func (suite *RepositoryTestSuite) TestListActiveCrewsSorted() {
	repo := NewCrewRepository(suite.db, suite.config, quietLogger())
	suite.db.On("Query", suite.ctx, mock.MatchedBy(func(q models.RangeQuery) bool {
		return q.TableName == "test_crews" && len(q.BoolFilters) == 1 && q.BoolFilters[0].Name == "isActive"
	}), mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*[]*models.Crew)
		*out = []*models.Crew{
			{CrewID: "c3", Name: "Zulu", SortOrder: 1},
			{CrewID: "c2", Name: "Bravo", SortOrder: 2},
			{CrewID: "c1", Name: "Alpha", SortOrder: 1},
		}
	}).Return(nil)

	crews, err := repo.ListActive(suite.ctx, "org-1")
	require.NoError(suite.T(), err)
	ids := []string{crews[0].CrewID, crews[1].CrewID, crews[2].CrewID}
	assert.Equal(suite.T(), []string{"c1", "c3", "c2"}, ids)
}

func (suite *RepositoryTestSuite) TestListPermanentMembersGroupsByCrew() {
	repo := NewCrewRepository(suite.db, suite.config, quietLogger())
	suite.db.On("Query", suite.ctx, mock.MatchedBy(func(q models.RangeQuery) bool {
		return q.TableName == "test_crew_members" && q.Filters[0].Name == "crewID"
	}), mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(2).(*[]*models.CrewMember)
		*out = []*models.CrewMember{
			{CrewID: "c1", TechnicianID: "t1"},
			{CrewID: "c1", TechnicianID: "t2"},
			{CrewID: "c2", TechnicianID: "t3"},
		}
	}).Return(nil)

	members, err := repo.ListPermanentMembers(suite.ctx, "org-1", []string{"c1", "c2"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"t1", "t2"}, members["c1"])
	assert.Equal(suite.T(), []string{"t3"}, members["c2"])
}

func (suite *RepositoryTestSuite) TestListPermanentMembersNoCrewsSkipsRead() {
	repo := NewCrewRepository(suite.db, suite.config, quietLogger())
	members, err := repo.ListPermanentMembers(suite.ctx, "org-1", nil)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), members)
}

func (suite *RepositoryTestSuite) TestIsCrewStorageID() {
	assert.True(suite.T(), IsCrewStorageID("crew_3f1c2a9e-8b7d-4c6e-9a5f-1b2c3d4e5f60"))
	assert.False(suite.T(), IsCrewStorageID("north-crew"))
	assert.False(suite.T(), IsCrewStorageID("3f1c2a9e-8b7d-4c6e-9a5f-1b2c3d4e5f60"))
}

func (suite *RepositoryTestSuite) TestDispatchLogCreateConflict() {
	repo := NewDispatchLogRepository(suite.db, suite.config, quietLogger())
	suite.db.On("PutItemIfAbsent", suite.ctx, "test_dispatch_logs", "orgID", mock.Anything).Return(dal.ErrConditionFailed)

	_, err := repo.Create(suite.ctx, &models.DispatchLogEntry{OrgID: "org-1", LogDate: "2026-03-01"})
	assert.ErrorIs(suite.T(), err, models.ErrConflict)
}

func (suite *RepositoryTestSuite) TestDispatchLogCreateAssignsID() {
	repo := NewDispatchLogRepository(suite.db, suite.config, quietLogger())
	suite.db.On("PutItemIfAbsent", suite.ctx, "test_dispatch_logs", "orgID", mock.Anything).Return(nil)

	entry, err := repo.Create(suite.ctx, &models.DispatchLogEntry{OrgID: "org-1", LogDate: "2026-03-01"})
	require.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), entry.LogID)
}

func (suite *RepositoryTestSuite) TestDispatchLogListForDateUsesExactSortKey() {
	repo := NewDispatchLogRepository(suite.db, suite.config, quietLogger())
	suite.db.On("Query", suite.ctx, mock.MatchedBy(func(q models.RangeQuery) bool {
		return q.SortKey == "logDate" && q.SortEquals == "2026-03-01" && q.PartitionValue == "org-1"
	}), mock.Anything).Return(nil)

	entries, err := repo.ListForDate(suite.ctx, "org-1", "2026-03-01")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), entries)
}

func (suite *RepositoryTestSuite) TestRosterSkipsReadWithoutCrews() {
	repo := NewRosterRepository(suite.db, suite.config, quietLogger())
	entries, err := repo.ListForDate(suite.ctx, "org-1", "2026-03-01", nil)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), entries)
}

func (suite *RepositoryTestSuite) TestCustomersDeduplicatedAndScopedToOrg() {
	repo := NewCustomerRepository(suite.db, suite.config, quietLogger())
	suite.db.On("BatchGetItems", suite.ctx, "test_customers", "customerID", []string{"cu1", "cu2"}, mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(4).(*[]*models.Customer)
			*out = []*models.Customer{
				{CustomerID: "cu1", OrgID: "org-1", Name: "Ada"},
				{CustomerID: "cu2", OrgID: "org-2", Name: "Other tenant"},
			}
		}).Return(nil)

	customers, err := repo.GetCustomers(suite.ctx, "org-1", []string{"cu1", "cu2", "cu1", ""})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), customers, 1)
	assert.Equal(suite.T(), "Ada", customers["cu1"].Name)
}

func (suite *RepositoryTestSuite) TestPhotoReadFailureIsWrapped() {
	repo := NewPhotoRepository(suite.db, suite.config, quietLogger())
	boom := errors.New("boom")
	suite.db.On("Query", suite.ctx, mock.Anything, mock.Anything).Return(boom)

	_, err := repo.ListForJob(suite.ctx, "job-1")
	assert.ErrorIs(suite.T(), err, boom)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
