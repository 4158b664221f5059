package service

import (
	"context"
	"errors"
	"net/mail"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mailadmin/backend/internal/domain"
	"mailadmin/backend/internal/mailparser"
	"mailadmin/backend/internal/storage"
)

var (
	// ErrInvalidInbox 邮箱地址格式无效
	ErrInvalidInbox = errors.New("invalid inbox address")
	// ErrInvalidMessageID 邮件 ID 格式无效
	ErrInvalidMessageID = errors.New("invalid message id")
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// MessageService 把结构化记录与重建正文组装成完整邮件视图。
type MessageService struct {
	repo    storage.MessageRepository
	locator storage.RawBodyLocator
	log     *zap.Logger
}

// NewMessageService 创建邮件组装服务。
func NewMessageService(repo storage.MessageRepository, locator storage.RawBodyLocator, log *zap.Logger) *MessageService {
	return &MessageService{repo: repo, locator: locator, log: log}
}

// List 列出邮箱下的邮件元数据，不触发正文重建。
func (s *MessageService) List(ctx context.Context, mailbox string, limit int) ([]domain.Message, error) {
	if _, err := mail.ParseAddress(mailbox); err != nil {
		return nil, ErrInvalidInbox
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.ListMessages(ctx, mailbox, limit)
}

// Get 获取并组装一封邮件的完整视图。
func (s *MessageService) Get(ctx context.Context, mailbox, id string) (*domain.MessageView, error) {
	if _, err := mail.ParseAddress(mailbox); err != nil {
		return nil, ErrInvalidInbox
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidMessageID
	}

	record, err := s.repo.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	// 属于其他邮箱的记录对本邮箱视为不存在
	if record.Mailbox != mailbox {
		return nil, storage.ErrMessageNotFound
	}

	body, err := s.Assemble(ctx, record)
	if err != nil {
		return nil, err
	}

	return &domain.MessageView{
		ID:         record.ID,
		Scope:      record.Scope,
		Mailbox:    record.Mailbox,
		Subject:    record.Subject,
		Timestamp:  record.Timestamp,
		Status:     record.Status,
		TextBody:   body.Text,
		HTMLBody:   body.HTML,
		BodySource: body.Provenance,
	}, nil
}

// Assemble 按优先级组装正文。
//
// 结构化字段永远优先，存在时完全不碰定位器和解码器。原始报文
// 找不到降级为空正文而不是错误；只有存储传输错误才向上传播。
func (s *MessageService) Assemble(ctx context.Context, record *domain.Message) (domain.DecodedBody, error) {
	if record.HasStructuredBody() {
		return domain.DecodedBody{
			Text:       record.Text,
			HTML:       record.HTML,
			Provenance: domain.BodyFromStructured,
		}, nil
	}

	if record.RawBodyRef == nil || *record.RawBodyRef == "" {
		return domain.DecodedBody{Provenance: domain.BodyNone}, nil
	}

	raw, err := s.locator.FindRawBody(ctx, *record.RawBodyRef)
	if errors.Is(err, storage.ErrRawBodyNotFound) {
		s.log.Debug("raw body missing, returning empty body",
			zap.String("message_id", record.ID),
			zap.String("raw_body_ref", *record.RawBodyRef),
		)
		return domain.DecodedBody{Provenance: domain.BodyNone}, nil
	}
	if err != nil {
		return domain.DecodedBody{}, err
	}

	return mailparser.Decode(string(raw), record.Headers), nil
}
