package models

// AttributeType enum for different DynamoDB attribute types
type AttributeType int

const (
	StringType AttributeType = iota
	NumberType
	BinaryType
)

// QueryConfig identifies a single item by its primary key
type QueryConfig struct {
	TableName    string
	IndexName    string // empty for primary key reads
	KeyName      string
	KeyValue     string
	KeyType      AttributeType
	SortKeyName  string // empty for hash-only tables
	SortKeyValue string
}

// AttributeFilter keeps items whose attribute equals one of Values.
type AttributeFilter struct {
	Name   string
	Values []string
}

// BoolFilter keeps items whose attribute equals Value.
type BoolFilter struct {
	Name  string
	Value bool
}

// RangeQuery describes a key-condition query with optional filters. The sort
// key condition is BETWEEN SortFrom AND SortTo (both inclusive) when both are
// set, equality when SortEquals is set, and absent otherwise.
type RangeQuery struct {
	TableName      string
	IndexName      string
	PartitionKey   string
	PartitionValue string
	SortKey        string
	SortFrom       string
	SortTo         string
	SortEquals     string
	Filters        []AttributeFilter
	BoolFilters    []BoolFilter
}
