package dal

import (
	"context"
	"errors"
	"fieldfuze-dispatch/models"
	"fieldfuze-dispatch/utils/logger"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConditionFailed is returned when a conditional write finds an existing item.
var ErrConditionFailed = errors.New("conditional check failed")

// batchGetLimit is the DynamoDB maximum number of keys per BatchGetItem call.
const batchGetLimit = 100

type DynamoDBClient struct {
	client *dynamodb.Client
	config *models.Config
	logger logger.Logger
}

// NewDynamoDBClient creates a new DynamoDB client
func NewDynamoDBClient(cfg *models.Config, log logger.Logger) (*DynamoDBClient, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.AWSRegion),
	}

	// Use static credentials if provided
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"", // session token
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		// Override endpoint for local DynamoDB
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})

	log.Info("DynamoDB client initialized successfully")
	return &DynamoDBClient{
		client: client,
		config: cfg,
		logger: log,
	}, nil
}

func primaryKey(cfg models.QueryConfig) map[string]types.AttributeValue {
	key := map[string]types.AttributeValue{
		cfg.KeyName: &types.AttributeValueMemberS{Value: cfg.KeyValue},
	}
	if cfg.SortKeyName != "" {
		key[cfg.SortKeyName] = &types.AttributeValueMemberS{Value: cfg.SortKeyValue}
	}
	return key
}

// GetItem retrieves an item by primary key. A missing item leaves result untouched.
func (db *DynamoDBClient) GetItem(ctx context.Context, cfg models.QueryConfig, result interface{}) error {
	output, err := db.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(cfg.TableName),
		Key:       primaryKey(cfg),
	})
	if err != nil {
		db.logger.Errorf("Failed to get item from %s: %v", cfg.TableName, err)
		return err
	}

	if output.Item == nil {
		return nil
	}

	return attributevalue.UnmarshalMap(output.Item, result)
}

// PutItemIfAbsent stores an item only when no item with the same key exists.
func (db *DynamoDBClient) PutItemIfAbsent(ctx context.Context, tableName, keyName string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name(keyName))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = db.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrConditionFailed
	}
	return err
}

// UpdateItem applies SET for every non-nil value and REMOVE for every nil value,
// and decodes the updated item into result when result is non-nil.
func (db *DynamoDBClient) UpdateItem(ctx context.Context, cfg models.QueryConfig, updates map[string]interface{}, result interface{}) error {
	if len(updates) == 0 {
		return errors.New("no fields to update")
	}

	// sorted for deterministic expressions
	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var update expression.UpdateBuilder
	for _, field := range fields {
		value := updates[field]
		if value == nil {
			update = update.Remove(expression.Name(field))
			continue
		}
		update = update.Set(expression.Name(field), expression.Value(value))
	}

	cond := expression.AttributeExists(expression.Name(cfg.KeyName))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	output, err := db.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(cfg.TableName),
		Key:                       primaryKey(cfg),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrConditionFailed
	}
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}
	return attributevalue.UnmarshalMap(output.Attributes, result)
}

// Query runs a key-condition query, following pagination to the end.
func (db *DynamoDBClient) Query(ctx context.Context, q models.RangeQuery, results interface{}) error {
	keyCond := expression.Key(q.PartitionKey).Equal(expression.Value(q.PartitionValue))
	switch {
	case q.SortEquals != "":
		keyCond = keyCond.And(expression.Key(q.SortKey).Equal(expression.Value(q.SortEquals)))
	case q.SortFrom != "" && q.SortTo != "":
		keyCond = keyCond.And(expression.Key(q.SortKey).Between(expression.Value(q.SortFrom), expression.Value(q.SortTo)))
	case q.SortFrom != "":
		keyCond = keyCond.And(expression.Key(q.SortKey).GreaterThanEqual(expression.Value(q.SortFrom)))
	case q.SortTo != "":
		keyCond = keyCond.And(expression.Key(q.SortKey).LessThanEqual(expression.Value(q.SortTo)))
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if filter, ok := buildFilter(q); ok {
		builder = builder.WithFilter(filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(q.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if q.IndexName != "" {
		input.IndexName = aws.String(q.IndexName)
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(db.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			db.logger.Errorf("Failed to query %s: %v", q.TableName, err)
			return err
		}
		items = append(items, page.Items...)
	}

	return attributevalue.UnmarshalListOfMaps(items, results)
}

func buildFilter(q models.RangeQuery) (expression.ConditionBuilder, bool) {
	var conds []expression.ConditionBuilder
	for _, f := range q.Filters {
		if len(f.Values) == 0 {
			continue
		}
		operands := make([]expression.OperandBuilder, 0, len(f.Values)-1)
		for _, v := range f.Values[1:] {
			operands = append(operands, expression.Value(v))
		}
		conds = append(conds, expression.Name(f.Name).In(expression.Value(f.Values[0]), operands...))
	}
	for _, f := range q.BoolFilters {
		conds = append(conds, expression.Name(f.Name).Equal(expression.Value(f.Value)))
	}

	switch len(conds) {
	case 0:
		return expression.ConditionBuilder{}, false
	case 1:
		return conds[0], true
	default:
		return expression.And(conds[0], conds[1], conds[2:]...), true
	}
}

// BatchGetItems reads the items with the given hash keys. Missing keys are
// skipped; unprocessed keys are retried until DynamoDB accepts them.
func (db *DynamoDBClient) BatchGetItems(ctx context.Context, tableName, keyName string, keys []string, results interface{}) error {
	var items []map[string]types.AttributeValue

	for start := 0; start < len(keys); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(keys) {
			end = len(keys)
		}

		requestKeys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, k := range keys[start:end] {
			requestKeys = append(requestKeys, map[string]types.AttributeValue{
				keyName: &types.AttributeValueMemberS{Value: k},
			})
		}

		request := map[string]types.KeysAndAttributes{
			tableName: {Keys: requestKeys},
		}
		for len(request) > 0 {
			output, err := db.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				db.logger.Errorf("Failed to batch get from %s: %v", tableName, err)
				return err
			}
			items = append(items, output.Responses[tableName]...)
			request = output.UnprocessedKeys
		}
	}

	return attributevalue.UnmarshalListOfMaps(items, results)
}

// CreateTable creates a table
func (db *DynamoDBClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	_, err := db.client.CreateTable(ctx, input)
	return err
}

// DescribeTable describes a table
func (db *DynamoDBClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	input := &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}
	return db.client.DescribeTable(ctx, input)
}
