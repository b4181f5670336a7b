package dal

import (
	"context"
	"errors"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeKV is an in-memory KVStore that can be switched into a failing mode.
type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	broken error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken != nil {
		return "", f.broken
	}
	v, ok := f.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken != nil {
		return f.broken
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Incr(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken != nil {
		return 0, f.broken
	}
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

type ResponseCacheTestSuite struct {
	suite.Suite
	kv    *fakeKV
	cache *ResponseCache
	ctx   context.Context
}

func (suite *ResponseCacheTestSuite) SetupTest() {
	suite.kv = newFakeKV()
	suite.cache = NewResponseCache(suite.kv, 15*time.Second, logger.NewLoggerWithOutput("error", "json", io.Discard))
	suite.ctx = context.Background()
}

func board(jobIDs ...string) *models.DispatchResponse {
	resp := &models.DispatchResponse{}
	for _, id := range jobIDs {
		resp.Jobs = append(resp.Jobs, models.DispatchJob{ID: id, Status: models.JobStatusScheduled})
		resp.Stats.Add(models.JobStatusScheduled)
	}
	return resp
}

func (suite *ResponseCacheTestSuite) TestSetThenGet() {
	suite.cache.Set(suite.ctx, "org-1", "q1", board("job-1", "job-2"))

	got := suite.cache.Get(suite.ctx, "org-1", "q1")
	require.NotNil(suite.T(), got)
	assert.Len(suite.T(), got.Jobs, 2)
	assert.Equal(suite.T(), 2, got.Stats.Scheduled)
	assert.Equal(suite.T(), 15*time.Second, suite.kv.ttls["dispatch:org-1:0:q1"])
}

func (suite *ResponseCacheTestSuite) TestMissForOtherQueryOrOrg() {
	suite.cache.Set(suite.ctx, "org-1", "q1", board("job-1"))

	assert.Nil(suite.T(), suite.cache.Get(suite.ctx, "org-1", "q2"))
	assert.Nil(suite.T(), suite.cache.Get(suite.ctx, "org-2", "q1"))
}

func (suite *ResponseCacheTestSuite) TestInvalidateOrphansEveryQueryOfTheOrg() {
	suite.cache.Set(suite.ctx, "org-1", "q1", board("job-1"))
	suite.cache.Set(suite.ctx, "org-1", "q2", board("job-2"))
	suite.cache.Set(suite.ctx, "org-2", "q1", board("job-3"))

	suite.cache.Invalidate(suite.ctx, "org-1")

	assert.Nil(suite.T(), suite.cache.Get(suite.ctx, "org-1", "q1"))
	assert.Nil(suite.T(), suite.cache.Get(suite.ctx, "org-1", "q2"))
	assert.NotNil(suite.T(), suite.cache.Get(suite.ctx, "org-2", "q1"))

	// New writes land in the new generation.
	suite.cache.Set(suite.ctx, "org-1", "q1", board("job-9"))
	got := suite.cache.Get(suite.ctx, "org-1", "q1")
	require.NotNil(suite.T(), got)
	assert.Equal(suite.T(), "job-9", got.Jobs[0].ID)
}

func (suite *ResponseCacheTestSuite) TestFailuresDegradeToMisses() {
	suite.cache.Set(suite.ctx, "org-1", "q1", board("job-1"))
	suite.kv.broken = errors.New("connection refused")

	assert.Nil(suite.T(), suite.cache.Get(suite.ctx, "org-1", "q1"))
	assert.NotPanics(suite.T(), func() {
		suite.cache.Set(suite.ctx, "org-1", "q1", board("job-2"))
		suite.cache.Invalidate(suite.ctx, "org-1")
	})
}

func (suite *ResponseCacheTestSuite) TestUndecodableEntryIsAMiss() {
	suite.kv.data["dispatch:org-1:0:q1"] = "{not json"
	assert.Nil(suite.T(), suite.cache.Get(suite.ctx, "org-1", "q1"))
}

func (suite *ResponseCacheTestSuite) TestNilCacheIsANoop() {
	var cache *ResponseCache
	assert.Nil(suite.T(), cache.Get(suite.ctx, "org-1", "q1"))
	assert.NotPanics(suite.T(), func() {
		cache.Set(suite.ctx, "org-1", "q1", board("job-1"))
		cache.Invalidate(suite.ctx, "org-1")
	})
}

func TestResponseCacheTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseCacheTestSuite))
}

type DynamoHelpersTestSuite struct {
	suite.Suite
}

func (suite *DynamoHelpersTestSuite) TestPrimaryKeyHashOnly() {
	key := primaryKey(models.QueryConfig{KeyName: "jobID", KeyValue: "job-1"})
	require.Len(suite.T(), key, 1)
	assert.Equal(suite.T(), &types.AttributeValueMemberS{Value: "job-1"}, key["jobID"])
}

func (suite *DynamoHelpersTestSuite) TestPrimaryKeyWithSortKey() {
	key := primaryKey(models.QueryConfig{
		KeyName:      "orgID",
		KeyValue:     "org-1",
		SortKeyName:  "logDate",
		SortKeyValue: "2026-03-01",
	})
	require.Len(suite.T(), key, 2)
	assert.Equal(suite.T(), &types.AttributeValueMemberS{Value: "2026-03-01"}, key["logDate"])
}

func (suite *DynamoHelpersTestSuite) TestBuildFilterSkipsEmptyFilters() {
	_, ok := buildFilter(models.RangeQuery{
		Filters: []models.AttributeFilter{{Name: "crewID"}},
	})
	assert.False(suite.T(), ok)
}

func (suite *DynamoHelpersTestSuite) TestBuildFilterCombinesConditions() {
	filter, ok := buildFilter(models.RangeQuery{
		Filters: []models.AttributeFilter{
			{Name: "orgID", Values: []string{"org-1"}},
			{Name: "crewID", Values: []string{"crew_a", "crew_b"}},
		},
		BoolFilters: []models.BoolFilter{{Name: "isActive", Value: true}},
	})
	require.True(suite.T(), ok)

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	require.NoError(suite.T(), err)

	assert.Contains(suite.T(), *expr.Filter(), "IN")
	assert.Equal(suite.T(), 2, strings.Count(*expr.Filter(), "AND"))
	assert.Len(suite.T(), expr.Values(), 4)

	names := make([]string, 0, len(expr.Names()))
	for _, name := range expr.Names() {
		names = append(names, name)
	}
	assert.ElementsMatch(suite.T(), []string{"orgID", "crewID", "isActive"}, names)
}

var _ DatabaseClientInterface = (*DynamoDBClient)(nil)

func (suite *DynamoHelpersTestSuite) TestClientInterfaceOperations() {
	iface := reflect.TypeOf((*DatabaseClientInterface)(nil)).Elem()
	names := make([]string, 0, iface.NumMethod())
	for i := 0; i < iface.NumMethod(); i++ {
		names = append(names, iface.Method(i).Name)
	}
	assert.ElementsMatch(suite.T(), []string{
		"GetItem", "PutItemIfAbsent", "UpdateItem", "Query", "BatchGetItems", "CreateTable", "DescribeTable",
	}, names)
}

func TestDynamoHelpersTestSuite(t *testing.T) {
	suite.Run(t, new(DynamoHelpersTestSuite))
}
