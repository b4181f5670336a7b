package infrastructure

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/tidwall/gjson"
)

type TableSchema struct {
	TableName              string                 `json:"TableName"`
	AttributeDefinitions   []AttributeDefinition  `json:"AttributeDefinitions"`
	KeySchema              []KeySchemaElement     `json:"KeySchema"`
	ProvisionedThroughput  Throughput             `json:"ProvisionedThroughput"`
	GlobalSecondaryIndexes []GlobalSecondaryIndex `json:"GlobalSecondaryIndexes,omitempty"`
}

type AttributeDefinition struct {
	AttributeName string `json:"AttributeName"`
	AttributeType string `json:"AttributeType"`
}

type KeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

type Throughput struct {
	ReadCapacityUnits  int64 `json:"ReadCapacityUnits"`
	WriteCapacityUnits int64 `json:"WriteCapacityUnits"`
}

type GlobalSecondaryIndex struct {
	IndexName             string             `json:"IndexName"`
	KeySchema             []KeySchemaElement `json:"KeySchema"`
	Projection            Projection         `json:"Projection"`
	ProvisionedThroughput Throughput         `json:"ProvisionedThroughput"`
}

type Projection struct {
	ProjectionType string `json:"ProjectionType"`
}

//go:embed table_schema.json
var tablesSchema []byte

// SchemaKeys lists the base table names defined in the embedded schema, sorted.
func SchemaKeys() []string {
	var keys []string
	gjson.ParseBytes(tablesSchema).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	sort.Strings(keys)
	return keys
}

// LoadSchema returns the schema for a base table name such as "crew_members".
func LoadSchema(base string) (*TableSchema, error) {
	// Base names may contain underscores, so the key is escaped for the
	// gjson path syntax rather than split.
	tableJSON := gjson.GetBytes(tablesSchema, escapePath(base))
	if !tableJSON.Exists() {
		return nil, fmt.Errorf("table schema not found for key: %s", base)
	}

	var schema TableSchema
	if err := json.Unmarshal([]byte(tableJSON.Raw), &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema JSON: %w", err)
	}
	return &schema, nil
}

// GetTableInput builds the CreateTable request for a prefixed table name,
// e.g. "dev_crew_members" with prefix "dev".
func GetTableInput(prefix, tableName string) (*dynamodb.CreateTableInput, error) {
	schema, err := LoadSchema(BaseTableName(prefix, tableName))
	if err != nil {
		return nil, err
	}
	schema.TableName = tableName
	return schema.ToDynamoInput(), nil
}

// BaseTableName strips "<prefix>_" from a table name. Names without the
// prefix are returned as-is.
func BaseTableName(prefix, tableName string) string {
	if prefix == "" {
		return tableName
	}
	return strings.TrimPrefix(tableName, prefix+"_")
}

// IndexNames returns the GSI names a base table is expected to carry.
func IndexNames(base string) ([]string, error) {
	schema, err := LoadSchema(base)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(schema.GlobalSecondaryIndexes))
	for _, g := range schema.GlobalSecondaryIndexes {
		names = append(names, g.IndexName)
	}
	return names, nil
}

func escapePath(key string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(key)
}

func keySchema(elems []KeySchemaElement) []types.KeySchemaElement {
	out := make([]types.KeySchemaElement, 0, len(elems))
	for _, k := range elems {
		out = append(out, types.KeySchemaElement{
			AttributeName: aws.String(k.AttributeName),
			KeyType:       types.KeyType(k.KeyType),
		})
	}
	return out
}

func (t Throughput) toDynamo() *types.ProvisionedThroughput {
	return &types.ProvisionedThroughput{
		ReadCapacityUnits:  aws.Int64(t.ReadCapacityUnits),
		WriteCapacityUnits: aws.Int64(t.WriteCapacityUnits),
	}
}

// ToDynamoInput converts the schema into a CreateTable request.
func (ts *TableSchema) ToDynamoInput() *dynamodb.CreateTableInput {
	attrDefs := make([]types.AttributeDefinition, 0, len(ts.AttributeDefinitions))
	for _, a := range ts.AttributeDefinitions {
		attrDefs = append(attrDefs, types.AttributeDefinition{
			AttributeName: aws.String(a.AttributeName),
			AttributeType: types.ScalarAttributeType(a.AttributeType),
		})
	}

	var gsis []types.GlobalSecondaryIndex
	for _, g := range ts.GlobalSecondaryIndexes {
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(g.IndexName),
			KeySchema: keySchema(g.KeySchema),
			Projection: &types.Projection{
				ProjectionType: types.ProjectionType(g.Projection.ProjectionType),
			},
			ProvisionedThroughput: g.ProvisionedThroughput.toDynamo(),
		})
	}

	return &dynamodb.CreateTableInput{
		TableName:              aws.String(ts.TableName),
		AttributeDefinitions:   attrDefs,
		KeySchema:              keySchema(ts.KeySchema),
		ProvisionedThroughput:  ts.ProvisionedThroughput.toDynamo(),
		GlobalSecondaryIndexes: gsis,
	}
}
