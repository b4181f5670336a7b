package dal

import (
	"context"
	"fieldfuze-dispatch/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DatabaseClientInterface defines the contract for database operations
type DatabaseClientInterface interface {
	// Core CRUD operations
	GetItem(ctx context.Context, config models.QueryConfig, result interface{}) error
	PutItemIfAbsent(ctx context.Context, tableName, keyName string, item interface{}) error
	UpdateItem(ctx context.Context, config models.QueryConfig, updates map[string]interface{}, result interface{}) error

	// Query operations
	Query(ctx context.Context, query models.RangeQuery, results interface{}) error
	BatchGetItems(ctx context.Context, tableName, keyName string, keys []string, results interface{}) error

	// Table management operations
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error
	DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error)
}
