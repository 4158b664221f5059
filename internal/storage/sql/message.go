package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"mailadmin/backend/internal/domain"
	"mailadmin/backend/internal/storage"
)

// messagesTable 引擎的结构化邮件表名，固定的 schema 事实。
const messagesTable = "messages"

// GetMessage 按 id 读取一条邮件记录。
func (s *Store) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	var message domain.Message
	err := s.gormDB.WithContext(ctx).
		Table(messagesTable).
		Where("id = ?", id).
		Take(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}

	message.Headers = parseStoredHeaders(message.RawHeaders)
	return &message, nil
}

// ListMessages 列出邮箱下的邮件记录，按时间降序。
// 只返回元数据，不触发正文重建。
func (s *Store) ListMessages(ctx context.Context, mailbox string, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := s.gormDB.WithContext(ctx).
		Table(messagesTable).
		Where("mailbox = ?", mailbox).
		Order("timestamp DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages for %s: %w", mailbox, err)
	}

	for i := range messages {
		messages[i].Headers = parseStoredHeaders(messages[i].RawHeaders)
	}
	return messages, nil
}

// scopeCountRow 方向计数查询的扫描目标。
type scopeCountRow struct {
	Scope string `gorm:"column:scope"`
	N     int64  `gorm:"column:n"`
}

// CountByScopeSince 统计 timestamp >= since 的方向计数，since <= 0 为全量。
func (s *Store) CountByScopeSince(ctx context.Context, since int64) (domain.ScopeCounts, error) {
	query := s.gormDB.WithContext(ctx).
		Table(messagesTable).
		Select("scope, COUNT(*) AS n")
	if since > 0 {
		query = query.Where("timestamp >= ?", since)
	}

	var rows []scopeCountRow
	if err := query.Group("scope").Find(&rows).Error; err != nil {
		return domain.ScopeCounts{}, fmt.Errorf("count by scope: %w", err)
	}

	var counts domain.ScopeCounts
	for _, row := range rows {
		switch domain.Scope(row.Scope) {
		case domain.ScopeIncoming:
			counts.Incoming = row.N
		case domain.ScopeOutgoing:
			counts.Outgoing = row.N
		}
	}
	return counts, nil
}

// mailboxTotalsRow 邮箱聚合查询的扫描目标。
type mailboxTotalsRow struct {
	Mailbox      string `gorm:"column:mailbox"`
	Incoming     int64  `gorm:"column:incoming"`
	Outgoing     int64  `gorm:"column:outgoing"`
	LastReceived *int64 `gorm:"column:last_received"`
}

// MailboxTotals 返回每个邮箱的全量方向计数与最近接收时间。
func (s *Store) MailboxTotals(ctx context.Context) ([]domain.MailboxTotals, error) {
	var rows []mailboxTotalsRow
	err := s.gormDB.WithContext(ctx).Raw(`
		SELECT mailbox,
			SUM(CASE WHEN scope = 'incoming' THEN 1 ELSE 0 END) AS incoming,
			SUM(CASE WHEN scope = 'outgoing' THEN 1 ELSE 0 END) AS outgoing,
			MAX(CASE WHEN scope = 'incoming' THEN timestamp END) AS last_received
		FROM messages
		GROUP BY mailbox`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("mailbox totals: %w", err)
	}

	totals := make([]domain.MailboxTotals, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.MailboxTotals{
			Address:      row.Mailbox,
			Incoming:     row.Incoming,
			Outgoing:     row.Outgoing,
			LastReceived: row.LastReceived,
		})
	}
	return totals, nil
}

// parseStoredHeaders 解析引擎存储的报文头 JSON，键统一转小写。
// 列为空或内容畸形时返回空 map，不报错。
func parseStoredHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	if raw == "" {
		return headers
	}

	var stored map[string]string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return headers
	}
	for key, value := range stored {
		headers[strings.ToLower(key)] = value
	}
	return headers
}
