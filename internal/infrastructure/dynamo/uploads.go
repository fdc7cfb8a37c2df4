package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/certportal/internal/domain"
)

// UploadRepo stores staged recipient lists.
// PK: upload_id. GSI admin_email-created_at-index finds an operator's latest upload.
type UploadRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUploadRepo(client *dynamodb.Client, tableName string) *UploadRepo {
	return &UploadRepo{client: client, tableName: tableName}
}

func (r *UploadRepo) Put(ctx context.Context, u *domain.RecipientUpload) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal upload: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *UploadRepo) Get(ctx context.Context, uploadID string) (*domain.RecipientUpload, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUploadID, uploadID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("upload not found: %w", domain.ErrNotFound)
	}
	var u domain.RecipientUpload
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Latest returns the most recent upload staged by adminEmail.
func (r *UploadRepo) Latest(ctx context.Context, adminEmail string) (*domain.RecipientUpload, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("admin_email-created_at-index"),
		KeyConditionExpression: aws.String("admin_email = :a"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: adminEmail},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("no staged recipient list: %w", domain.ErrNotFound)
	}
	var u domain.RecipientUpload
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
