package object

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"mailadmin/backend/internal/storage"
)

// Locator 对象存储后端的原始报文定位器。
//
// 把原始报文归档到 S3 的部署用日期前缀 raw-YYYY-MM-DD/<id>
// 暴露与数据库分区相同的形态；校验、排序与首中即返语义
// 和 SQL 后端完全一致。
type Locator struct {
	client *s3.S3
	bucket string
	log    *zap.Logger
}

// Config 对象存储连接参数。
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// NewLocator 创建对象存储定位器。
func NewLocator(cfg Config, log *zap.Logger) (*Locator, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object storage bucket is required")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(cfg.Region),
		Endpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewChainCredentials([]credentials.Provider{
			&credentials.StaticProvider{
				Value: credentials.Value{
					AccessKeyID:     cfg.AccessKey,
					SecretAccessKey: cfg.SecretKey,
				},
			},
			&credentials.EnvProvider{},
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return &Locator{
		client: s3.New(sess),
		bucket: cfg.Bucket,
		log:    log,
	}, nil
}

// FindRawBody 在日期前缀集合中查找原始报文。
func (l *Locator) FindRawBody(ctx context.Context, ref string) ([]byte, error) {
	partitions, err := l.listPartitionPrefixes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list raw partition prefixes: %w", err)
	}
	storage.SortPartitionsNewestFirst(partitions)

	for _, partition := range partitions {
		body, err := l.getObject(ctx, partition+"/"+ref)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("get object in partition %s: %w", partition, err)
		}

		l.log.Debug("raw body located in object storage",
			zap.String("partition", partition),
			zap.Int("bytes", len(body)),
		)
		return storage.DecompressIfZstd(body), nil
	}

	return nil, storage.ErrRawBodyNotFound
}

// listPartitionPrefixes 枚举桶内所有日期前缀。
// 不符合 raw-YYYY-MM-DD 白名单的前缀静默排除。
func (l *Locator) listPartitionPrefixes(ctx context.Context) ([]string, error) {
	var names []string
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(l.bucket),
		Prefix:    aws.String("raw-"),
		Delimiter: aws.String("/"),
	}

	err := l.client.ListObjectsV2PagesWithContext(ctx, input,
		func(page *s3.ListObjectsV2Output, _ bool) bool {
			for _, prefix := range page.CommonPrefixes {
				names = append(names, strings.TrimSuffix(aws.StringValue(prefix.Prefix), "/"))
			}
			return true
		})
	if err != nil {
		return nil, err
	}

	return storage.FilterPartitions(names), nil
}

// getObject 读取单个对象的全部字节。
func (l *Locator) getObject(ctx context.Context, key string) ([]byte, error) {
	resp, err := l.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// isNotFound 判断 S3 错误是否为对象不存在。
func isNotFound(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
