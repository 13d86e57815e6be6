package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB attribute names, shared with the table definition.
const (
	attrPlayer = "player"
	attrStats  = "stats"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoStore keeps one item per player: {player: S, stats: S}.
type DynamoStore struct {
	ddb   DynamoAPI
	table string
}

// NewDynamoStore builds a client from the default AWS config chain.
func NewDynamoStore(ctx context.Context, table string) (*DynamoStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return NewDynamoStoreFromClient(dynamodb.NewFromConfig(awsCfg), table), nil
}

// NewDynamoStoreFromClient wraps an existing client or fake.
func NewDynamoStoreFromClient(ddb DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{ddb: ddb, table: table}
}

func (ds *DynamoStore) PutPlayer(ctx context.Context, rec *PlayerStatRecord) error {
	value, err := EncodeRecord(rec)
	if err != nil {
		return err
	}

	_, err = ds.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(ds.table),
		Item: map[string]types.AttributeValue{
			attrPlayer: &types.AttributeValueMemberS{Value: rec.Player},
			attrStats:  &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb put %s: %w", rec.Player, err)
	}
	return nil
}

// PlayerNames scans the whole table, following pagination.
func (ds *DynamoStore) PlayerNames(ctx context.Context) ([]string, error) {
	names := make([]string, 0, 512)
	input := &dynamodb.ScanInput{
		TableName:                aws.String(ds.table),
		ProjectionExpression:     aws.String("#p"),
		ExpressionAttributeNames: map[string]string{"#p": attrPlayer},
	}

	for {
		out, err := ds.ddb.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("dynamodb scan: %w", err)
		}
		for _, it := range out.Items {
			if v, ok := it[attrPlayer].(*types.AttributeValueMemberS); ok {
				names = append(names, v.Value)
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return names, nil
}

func (ds *DynamoStore) GetPlayer(ctx context.Context, name string) (*PlayerStatRecord, error) {
	out, err := ds.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(ds.table),
		Key: map[string]types.AttributeValue{
			attrPlayer: &types.AttributeValueMemberS{Value: name},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s: %w", name, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	v, ok := out.Item[attrStats].(*types.AttributeValueMemberS)
	if !ok || strings.TrimSpace(v.Value) == "" {
		return nil, fmt.Errorf("dynamodb item %s has no stats attribute", name)
	}
	return DecodeRecord(name, v.Value)
}

// Close is a no-op; the SDK client holds no connections that need releasing.
func (ds *DynamoStore) Close() error {
	return nil
}
