package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fieldfuze-dispatch/middelware"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/services"
	"fieldfuze-dispatch/utils/logger"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Aggregate(ctx context.Context, orgID string, q models.DispatchQuery) (*models.DispatchResponse, error) {
	args := m.Called(ctx, orgID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DispatchResponse), args.Error(1)
}

type MockUpdateGateway struct {
	mock.Mock
}

func (m *MockUpdateGateway) UpdateJob(ctx context.Context, claims *models.JWTClaims, req *models.JobUpdateRequest) (*models.DispatchJob, error) {
	args := m.Called(ctx, claims, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DispatchJob), args.Error(1)
}

type MockDispatchLogService struct {
	mock.Mock
}

func (m *MockDispatchLogService) MarkDispatched(ctx context.Context, claims *models.JWTClaims, req *models.MarkDispatchedRequest) (*models.DispatchLogEntry, error) {
	args := m.Called(ctx, claims, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DispatchLogEntry), args.Error(1)
}

type mockServices struct {
	aggregator *MockAggregator
	gateway    *MockUpdateGateway
	logs       *MockDispatchLogService
}

func (m *mockServices) GetDispatchAggregator() services.DispatchAggregatorInterface {
	return m.aggregator
}

func (m *mockServices) GetUpdateGateway() services.UpdateGatewayInterface {
	return m.gateway
}

func (m *mockServices) GetDispatchLogService() services.DispatchLogServiceInterface {
	return m.logs
}

// ControllerTestSuite drives the registered routes end to end with mocked services
type ControllerTestSuite struct {
	suite.Suite
	config   *models.Config
	services *mockServices
	ctrl     *Controller
	router   *gin.Engine
	token    string
}

func (suite *ControllerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.config = &models.Config{
		AppName:                     "FieldFuze Dispatch",
		AppVersion:                  "1.0.0",
		JWTSecret:                   "test-secret",
		JWTExpiresIn:                time.Hour,
		CacheMaxAgeSeconds:          10,
		StaleWhileRevalidateSeconds: 30,
		CORSOrigins:                 []string{"*"},
		BasePath:                    "/api/v1",
	}
	log := logger.NewLoggerWithOutput("error", "json", io.Discard)

	suite.services = &mockServices{
		aggregator: &MockAggregator{},
		gateway:    &MockUpdateGateway{},
		logs:       &MockDispatchLogService{},
	}

	suite.ctrl = NewControllerWithServices(suite.services, suite.config, log)
	suite.router = gin.New()
	suite.ctrl.RegisterRoutes(suite.router, suite.config.BasePath)

	token, err := middelware.NewJWTManager(suite.config, log).GenerateToken(models.JWTClaims{
		UserID:   "user-1",
		Username: "dana",
		OrgID:    "org-1",
	})
	require.NoError(suite.T(), err)
	suite.token = token
}

func (suite *ControllerTestSuite) TearDownTest() {
	suite.services.aggregator.AssertExpectations(suite.T())
	suite.services.gateway.AssertExpectations(suite.T())
	suite.services.logs.AssertExpectations(suite.T())
}

func (suite *ControllerTestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(suite.T(), err)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if suite.token != "" {
		req.Header.Set("Authorization", "Bearer "+suite.token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ControllerTestSuite) decodeEnvelope(w *httptest.ResponseRecorder) models.APIResponse {
	var response models.APIResponse
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func (suite *ControllerTestSuite) TestHealth() {
	suite.token = ""
	w := suite.do(http.MethodGet, "/api/v1/health", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "healthy")
	assert.NotContains(suite.T(), w.Body.String(), "infrastructure")
}

func (suite *ControllerTestSuite) TestHealthIncludesInfrastructure() {
	suite.token = ""
	suite.ctrl.SetInfrastructureHealth(func() map[string]interface{} {
		return map[string]interface{}{"status": "completed", "setup_completed": true}
	})

	w := suite.do(http.MethodGet, "/api/v1/health", nil)
	require.Equal(suite.T(), http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &body))
	infra := body["infrastructure"].(map[string]interface{})
	assert.Equal(suite.T(), "completed", infra["status"])
	assert.Equal(suite.T(), true, infra["setup_completed"])
}

func (suite *ControllerTestSuite) TestGetBoardParsesQuery() {
	expected := models.DispatchQuery{
		StartDate:     "2026-03-01",
		EndDate:       "2026-03-07",
		TechnicianIDs: []string{"T1", "T2"},
		CrewIDs:       []string{"crew-alpha"},
		Statuses:      []models.JobStatus{models.JobStatusScheduled, models.JobStatusCompleted},
		Search:        "smith",
	}
	resp := &models.DispatchResponse{
		Jobs:        []models.DispatchJob{{ID: "job-1", Status: models.JobStatusScheduled, Photos: []models.Photo{}}},
		Technicians: []models.DispatchTechnician{},
		Crews:       []models.DispatchCrew{},
		Stats:       models.DispatchStats{Total: 1, Scheduled: 1},
	}
	suite.services.aggregator.On("Aggregate", mock.Anything, "org-1", expected).Return(resp, nil)

	w := suite.do(http.MethodGet, "/api/v1/dispatch?startDate=2026-03-01&endDate=2026-03-07&technicianIds=T1,%20T2,&crewIds=crew-alpha&statuses=scheduled,completed&q=smith", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "private, max-age=10, stale-while-revalidate=30", w.Header().Get("Cache-Control"))

	var body models.DispatchResponse
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(suite.T(), body.Jobs, 1)
	assert.Equal(suite.T(), "job-1", body.Jobs[0].ID)
	assert.Equal(suite.T(), 1, body.Stats.Total)
}

func (suite *ControllerTestSuite) TestGetBoardWithoutFiltersPassesNil() {
	suite.services.aggregator.On("Aggregate", mock.Anything, "org-1", models.DispatchQuery{StartDate: "2026-03-01", EndDate: "2026-03-01"}).
		Return(&models.DispatchResponse{}, nil)

	w := suite.do(http.MethodGet, "/api/v1/dispatch?startDate=2026-03-01&endDate=2026-03-01&technicianIds=", nil)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *ControllerTestSuite) TestGetBoardRequiresToken() {
	suite.token = ""
	w := suite.do(http.MethodGet, "/api/v1/dispatch", nil)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
	suite.services.aggregator.AssertNotCalled(suite.T(), "Aggregate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ControllerTestSuite) TestGetBoardValidationError() {
	suite.services.aggregator.On("Aggregate", mock.Anything, "org-1", mock.Anything).
		Return(nil, models.NewValidationError("statuses", `unknown status "paused"`))

	w := suite.do(http.MethodGet, "/api/v1/dispatch?statuses=paused", nil)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	response := suite.decodeEnvelope(w)
	assert.Equal(suite.T(), "ValidationError", response.Error.Type)
	assert.Equal(suite.T(), "statuses", response.Error.Field)
	assert.Empty(suite.T(), w.Header().Get("Cache-Control"))
}

func (suite *ControllerTestSuite) TestGetBoardUpstreamHidesDetails() {
	suite.services.aggregator.On("Aggregate", mock.Anything, "org-1", mock.Anything).
		Return(nil, models.NewUpstreamError("jobs unavailable", errors.New("ProvisionedThroughputExceededException: table dev_jobs")))

	w := suite.do(http.MethodGet, "/api/v1/dispatch", nil)

	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
	response := suite.decodeEnvelope(w)
	assert.Equal(suite.T(), "UpstreamError", response.Error.Type)
	assert.Empty(suite.T(), response.Error.Details)
	assert.NotContains(suite.T(), w.Body.String(), "dev_jobs")
}

func (suite *ControllerTestSuite) TestUpdateJob() {
	row := &models.DispatchJob{ID: "job-1", Status: models.JobStatusCompleted, Photos: []models.Photo{}}
	suite.services.gateway.On("UpdateJob", mock.Anything,
		mock.MatchedBy(func(c *models.JWTClaims) bool { return c.OrgID == "org-1" && c.UserID == "user-1" }),
		mock.MatchedBy(func(r *models.JobUpdateRequest) bool {
			return r.JobID == "job-1" && r.Updates.Status != nil && *r.Updates.Status == models.JobStatusCompleted
		}),
	).Return(row, nil)

	w := suite.do(http.MethodPatch, "/api/v1/dispatch", `{"jobId":"job-1","updates":{"status":"completed"}}`)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	var result models.JobUpdateResult
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(suite.T(), "job-1", result.Data.ID)
	assert.Equal(suite.T(), models.JobStatusCompleted, result.Data.Status)
}

func (suite *ControllerTestSuite) TestUpdateJobNullClearsAssignment() {
	suite.services.gateway.On("UpdateJob", mock.Anything, mock.Anything,
		mock.MatchedBy(func(r *models.JobUpdateRequest) bool {
			return r.Updates.AssignedTo.Set && r.Updates.AssignedTo.Value == nil && !r.Updates.AssignedCrewID.Set
		}),
	).Return(&models.DispatchJob{ID: "job-1", Status: models.JobStatusUnassigned}, nil)

	w := suite.do(http.MethodPatch, "/api/v1/dispatch", `{"jobId":"job-1","updates":{"assignedTo":null}}`)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *ControllerTestSuite) TestUpdateJobMalformedBody() {
	w := suite.do(http.MethodPatch, "/api/v1/dispatch", `{"jobId":`)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "ValidationError", suite.decodeEnvelope(w).Error.Type)
}

func (suite *ControllerTestSuite) TestUpdateJobErrorMapping() {
	cases := []struct {
		err  error
		code int
	}{
		{models.NewValidationError("priority", `priority must be one of [low normal high urgent], got "critical"`), http.StatusBadRequest},
		{models.NewAuthError(models.ErrNotAuthorized, "job belongs to another organization"), http.StatusForbidden},
		{models.NewNotFoundError("job job-9 not found"), http.StatusNotFound},
		{models.NewUpstreamError("update failed", errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		suite.services.gateway.ExpectedCalls = nil
		suite.services.gateway.On("UpdateJob", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err).Once()

		w := suite.do(http.MethodPatch, "/api/v1/dispatch", `{"jobId":"job-9","updates":{"notes":"x"}}`)
		assert.Equal(suite.T(), tc.code, w.Code, tc.err.Error())
	}
}

func (suite *ControllerTestSuite) TestMarkDispatched() {
	entry := &models.DispatchLogEntry{OrgID: "org-1", LogDate: "2026-03-01", LogID: "log-1", DispatchedBy: "dana"}
	suite.services.logs.On("MarkDispatched", mock.Anything, mock.Anything, &models.MarkDispatchedRequest{Date: "2026-03-01"}).Return(entry, nil)

	w := suite.do(http.MethodPost, "/api/v1/dispatch/log", models.MarkDispatchedRequest{Date: "2026-03-01"})

	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	assert.Equal(suite.T(), "success", suite.decodeEnvelope(w).Status)
}

func (suite *ControllerTestSuite) TestMarkDispatchedConflict() {
	suite.services.logs.On("MarkDispatched", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, models.NewConflictError("2026-03-01 is already dispatched"))

	w := suite.do(http.MethodPost, "/api/v1/dispatch/log", models.MarkDispatchedRequest{Date: "2026-03-01"})

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
	assert.Equal(suite.T(), "ConflictError", suite.decodeEnvelope(w).Error.Type)
}

func (suite *ControllerTestSuite) TestSplitCSV() {
	assert.Nil(suite.T(), splitCSV(""))
	assert.Nil(suite.T(), splitCSV(" , "))
	assert.Equal(suite.T(), []string{"a", "b"}, splitCSV("a, ,b,"))
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}
