package storage

import (
	"context"
	"errors"

	"mailadmin/backend/internal/domain"
)

var (
	// ErrMessageNotFound 邮件记录不存在
	ErrMessageNotFound = errors.New("message not found")
	// ErrRawBodyNotFound 原始报文在所有分区中都不存在
	ErrRawBodyNotFound = errors.New("raw body not found")
)

// MessageRepository 定义引擎邮件记录的只读存取操作。
type MessageRepository interface {
	GetMessage(ctx context.Context, id string) (*domain.Message, error)
	ListMessages(ctx context.Context, mailbox string, limit int) ([]domain.Message, error)
}

// RawBodyLocator 在日期分区集合中定位原始报文。
//
// 实现必须保证：进入查询的分区标识一律先通过 raw-YYYY-MM-DD
// 白名单校验；找不到时返回 ErrRawBodyNotFound 而不是查询错误。
type RawBodyLocator interface {
	FindRawBody(ctx context.Context, ref string) ([]byte, error)
}

// SchemaProber 探测引擎路由表暴露的可选列。
//
// 元数据查询失败视为能力缺失而非错误：实现返回 NoCapabilities
// 与 nil error，只有上下文取消才作为错误传出。
type SchemaProber interface {
	DetectCapabilities(ctx context.Context) (domain.SchemaCapabilities, error)
}

// StatsRepository 定义聚合所需的只读统计查询。
type StatsRepository interface {
	// CountByScopeSince 统计 timestamp >= since 的邮件方向计数；
	// since <= 0 表示全量。
	CountByScopeSince(ctx context.Context, since int64) (domain.ScopeCounts, error)
	// MailboxTotals 返回每个邮箱的全量方向计数与最近接收时间。
	MailboxTotals(ctx context.Context) ([]domain.MailboxTotals, error)
}
