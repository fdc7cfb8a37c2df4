package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/certportal/internal/domain"
)

// CertificateRepo provides typed DynamoDB operations for the certificates table.
// PK: email, SK: event.
type CertificateRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCertificateRepo(client *dynamodb.Client, tableName string) *CertificateRepo {
	return &CertificateRepo{client: client, tableName: tableName}
}

// Put inserts or replaces the certificate for (email, event).
func (r *CertificateRepo) Put(ctx context.Context, c *domain.Certificate) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal certificate: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CertificateRepo) Get(ctx context.Context, email, event string) (*domain.Certificate, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey(fieldEmail, email, fieldEvent, event),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("certificate not found: %w", domain.ErrNotFound)
	}
	var c domain.Certificate
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkIssued flips a pending certificate to issued and records where the
// rendered image lives.
func (r *CertificateRepo) MarkIssued(ctx context.Context, email, event, objectKey string, issuedAt time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldStatus:    domain.CertificateIssued,
		fieldObjectKey: objectKey,
		fieldIssuedAt:  issuedAt.UTC(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey(fieldEmail, email, fieldEvent, event),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *CertificateRepo) Delete(ctx context.Context, email, event string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey(fieldEmail, email, fieldEvent, event),
	})
	return err
}

// ListByEvent queries the event-index GSI, newest first.
func (r *CertificateRepo) ListByEvent(ctx context.Context, event string) ([]domain.Certificate, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("event-created_at-index"),
		KeyConditionExpression: aws.String("#e = :e"),
		ExpressionAttributeNames: map[string]string{
			"#e": fieldEvent,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":e": &types.AttributeValueMemberS{Value: event},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var certs []domain.Certificate
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &certs); err != nil {
		return nil, err
	}
	return certs, nil
}

// Stats scans issued certificates. Recent counts those created after since.
func (r *CertificateRepo) Stats(ctx context.Context, since time.Time) (*domain.CertificateStats, error) {
	counts := make(map[string]int)
	stats := &domain.CertificateStats{}
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("#s = :issued"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":issued": &types.AttributeValueMemberS{Value: domain.CertificateIssued},
		},
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var certs []domain.Certificate
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &certs); err != nil {
			return nil, err
		}
		for _, c := range certs {
			stats.Total++
			counts[c.Event]++
			if c.CreatedAt.After(since) {
				stats.Recent++
			}
		}
	}
	for ev, n := range counts {
		stats.ByEvent = append(stats.ByEvent, domain.EventCount{Event: ev, Count: n})
	}
	sort.Slice(stats.ByEvent, func(i, j int) bool {
		if stats.ByEvent[i].Count != stats.ByEvent[j].Count {
			return stats.ByEvent[i].Count > stats.ByEvent[j].Count
		}
		return stats.ByEvent[i].Event < stats.ByEvent[j].Event
	})
	return stats, nil
}
