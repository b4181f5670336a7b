package infrastructure

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TablesTestSuite struct {
	suite.Suite
}

func (suite *TablesTestSuite) TestSchemaKeysCoverDispatchTables() {
	assert.Equal(suite.T(), []string{
		"crew_members", "crews", "customers", "dispatch_logs",
		"jobs", "photos", "roster_entries", "technicians",
	}, SchemaKeys())
}

func (suite *TablesTestSuite) TestBaseTableName() {
	assert.Equal(suite.T(), "crew_members", BaseTableName("dev", "dev_crew_members"))
	assert.Equal(suite.T(), "jobs", BaseTableName("prod", "prod_jobs"))
	assert.Equal(suite.T(), "jobs", BaseTableName("", "jobs"))
	assert.Equal(suite.T(), "other_jobs", BaseTableName("dev", "other_jobs"))
}

func (suite *TablesTestSuite) TestGetTableInputForJobs() {
	input, err := GetTableInput("dev", "dev_jobs")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "dev_jobs", aws.ToString(input.TableName))
	require.Len(suite.T(), input.KeySchema, 1)
	assert.Equal(suite.T(), "jobID", aws.ToString(input.KeySchema[0].AttributeName))
	assert.Equal(suite.T(), types.KeyTypeHash, input.KeySchema[0].KeyType)

	require.Len(suite.T(), input.GlobalSecondaryIndexes, 1)
	gsi := input.GlobalSecondaryIndexes[0]
	assert.Equal(suite.T(), "orgID-scheduledDate-index", aws.ToString(gsi.IndexName))
	require.Len(suite.T(), gsi.KeySchema, 2)
	assert.Equal(suite.T(), "scheduledDate", aws.ToString(gsi.KeySchema[1].AttributeName))
	assert.Equal(suite.T(), types.ProjectionTypeAll, gsi.Projection.ProjectionType)
	assert.Equal(suite.T(), int64(5), aws.ToInt64(input.ProvisionedThroughput.ReadCapacityUnits))
}

func (suite *TablesTestSuite) TestGetTableInputForCompositeKey() {
	input, err := GetTableInput("dev", "dev_crew_members")
	require.NoError(suite.T(), err)

	require.Len(suite.T(), input.KeySchema, 2)
	assert.Equal(suite.T(), "crewID", aws.ToString(input.KeySchema[0].AttributeName))
	assert.Equal(suite.T(), "technicianID", aws.ToString(input.KeySchema[1].AttributeName))
	assert.Equal(suite.T(), types.KeyTypeRange, input.KeySchema[1].KeyType)
	assert.Len(suite.T(), input.AttributeDefinitions, 3)
}

func (suite *TablesTestSuite) TestTableWithoutIndexes() {
	input, err := GetTableInput("dev", "dev_dispatch_logs")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), input.GlobalSecondaryIndexes)

	names, err := IndexNames("dispatch_logs")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), names)
}

func (suite *TablesTestSuite) TestUnknownTable() {
	_, err := GetTableInput("dev", "dev_invoices")
	assert.Error(suite.T(), err)

	_, err = IndexNames("invoices")
	assert.Error(suite.T(), err)
}

func TestTablesTestSuite(t *testing.T) {
	suite.Run(t, new(TablesTestSuite))
}
