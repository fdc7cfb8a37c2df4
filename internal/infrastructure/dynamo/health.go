package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Probe checks that a table is reachable and active.
type Probe struct {
	client    *dynamodb.Client
	tableName string
}

func NewProbe(client *dynamodb.Client, tableName string) *Probe {
	return &Probe{client: client, tableName: tableName}
}

func (p *Probe) Ping(ctx context.Context) error {
	out, err := p.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(p.tableName)})
	if err != nil {
		return fmt.Errorf("describe %s: %w", p.tableName, err)
	}
	if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
		return fmt.Errorf("table %s not active", p.tableName)
	}
	return nil
}
