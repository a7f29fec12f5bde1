// Package ddb implements the repository contracts on a single DynamoDB table.
// This is the only layer that should have knowledge of DynamoDB specifics.
//
// Item layout:
//
//	PK=MEMORY        SK=CAT#<category>#<id>   memory records
//	PK=CONVERSATION  SK=TURN#<turn id>        conversation turns
//
// Turn ids are ULIDs, so the SK sort order is chronological.
package ddb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/repository"
	appErrors "boardroom-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/oklog/ulid/v2"
)

const (
	memoryPK       = "MEMORY"
	conversationPK = "CONVERSATION"
	memorySKPrefix = "CAT#"
	turnSKPrefix   = "TURN#"

	// DynamoDB rejects transactions with more than 100 items.
	maxTransactItems = 100
)

// DBClient is the subset of the DynamoDB API the store uses.
type DBClient interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// ddbMemory is the structure of a memory item.
type ddbMemory struct {
	PK       string `dynamodbav:"PK"`
	SK       string `dynamodbav:"SK"`
	Category string `dynamodbav:"Category"`
	Key      string `dynamodbav:"Key"`
	Value    string `dynamodbav:"Value"`
}

// ddbTurn is the structure of a turn item.
type ddbTurn struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Sender    string `dynamodbav:"Sender"`
	Content   string `dynamodbav:"Content"`
	Timestamp string `dynamodbav:"Timestamp"`
}

// Store is the DynamoDB implementation of repository.Store.
type Store struct {
	client    DBClient
	tableName string
}

var (
	_ repository.Store        = (*Store)(nil)
	_ repository.MemoryWriter = (*Store)(nil)
)

// NewStore creates a store on the given table.
func NewStore(client DBClient, tableName string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("dynamodb client is required")
	}
	if tableName == "" {
		return nil, fmt.Errorf("dynamodb table name is required")
	}
	return &Store{client: client, tableName: tableName}, nil
}

// ListMemories queries the memory partition page by page, then orders the
// records by category. The SK separator sorts above some characters allowed
// in category names, so SK order alone is not category order. Rows within a
// category keep their insertion order.
func (s *Store) ListMemories(ctx context.Context) ([]domain.MemoryRecord, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(memoryPK)).
		And(expression.Key("SK").BeginsWith(memorySKPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.NewStoreRead("build memory query", err)
	}

	var (
		records  []domain.MemoryRecord
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
			ScanIndexForward:          aws.Bool(true),
		})
		if err != nil {
			return nil, appErrors.NewStoreRead(describe("query memories", err), err)
		}
		for _, item := range out.Items {
			var m ddbMemory
			if err := attributevalue.UnmarshalMap(item, &m); err != nil {
				return nil, appErrors.NewStoreRead("unmarshal memory item", err)
			}
			records = append(records, domain.MemoryRecord{Category: m.Category, Key: m.Key, Value: m.Value})
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Category < records[j].Category
	})
	return records, nil
}

// AppendTurns writes turns in a transaction. Batches above the DynamoDB
// transaction limit are split; each chunk is atomic on its own.
func (s *Store) AppendTurns(ctx context.Context, turns ...domain.Turn) error {
	for start := 0; start < len(turns); start += maxTransactItems {
		end := start + maxTransactItems
		if end > len(turns) {
			end = len(turns)
		}

		transactItems := make([]types.TransactWriteItem, 0, end-start)
		for _, t := range turns[start:end] {
			item, err := attributevalue.MarshalMap(ddbTurn{
				PK:        conversationPK,
				SK:        turnSKPrefix + t.ID,
				Sender:    string(t.Sender),
				Content:   t.Text,
				Timestamp: t.Timestamp.UTC().Format(time.RFC3339Nano),
			})
			if err != nil {
				return appErrors.NewStoreWrite("marshal turn item", err)
			}
			transactItems = append(transactItems, types.TransactWriteItem{
				Put: &types.Put{TableName: aws.String(s.tableName), Item: item},
			})
		}

		if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: transactItems,
		}); err != nil {
			return appErrors.NewStoreWrite(describe("write turns", err), err)
		}
	}
	return nil
}

// AddMemory puts one memory item.
func (s *Store) AddMemory(ctx context.Context, r domain.MemoryRecord) error {
	item, err := attributevalue.MarshalMap(ddbMemory{
		PK:       memoryPK,
		SK:       fmt.Sprintf("%s%s#%s", memorySKPrefix, r.Category, ulid.Make().String()),
		Category: r.Category,
		Key:      r.Key,
		Value:    r.Value,
	})
	if err != nil {
		return appErrors.NewStoreWrite("marshal memory item", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return appErrors.NewStoreWrite(describe("put memory", err), err)
	}
	return nil
}

// Close is a no-op; the SDK client has no resources to release.
func (s *Store) Close() error { return nil }

// describe prefixes op with the AWS error code when the failure came from the
// service rather than the transport.
func describe(op string, err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s: %s", op, apiErr.ErrorCode())
	}
	return op
}
