package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailadmin/backend/internal/domain"
	"mailadmin/backend/internal/storage"
)

// MockMessageRepository 模拟邮件记录存储
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListMessages(ctx context.Context, mailbox string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, mailbox, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

// MockRawBodyLocator 模拟原始报文定位器
type MockRawBodyLocator struct {
	mock.Mock
}

func (m *MockRawBodyLocator) FindRawBody(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

const testMessageID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"

func strPtr(s string) *string { return &s }

func TestMessageServiceList(t *testing.T) {
	t.Run("非法邮箱地址被拒绝", func(t *testing.T) {
		svc := NewMessageService(new(MockMessageRepository), new(MockRawBodyLocator), zap.NewNop())

		_, err := svc.List(context.Background(), "not an address", 10)
		assert.ErrorIs(t, err, ErrInvalidInbox)
	})

	t.Run("limit默认值与上限", func(t *testing.T) {
		repo := new(MockMessageRepository)
		repo.On("ListMessages", mock.Anything, "user@example.com", 50).Return([]domain.Message{}, nil).Once()
		repo.On("ListMessages", mock.Anything, "user@example.com", 200).Return([]domain.Message{}, nil).Once()

		svc := NewMessageService(repo, new(MockRawBodyLocator), zap.NewNop())

		_, err := svc.List(context.Background(), "user@example.com", 0)
		require.NoError(t, err)
		_, err = svc.List(context.Background(), "user@example.com", 9999)
		require.NoError(t, err)

		repo.AssertExpectations(t)
	})
}

func TestMessageServiceGet(t *testing.T) {
	t.Run("非法邮件ID被拒绝", func(t *testing.T) {
		svc := NewMessageService(new(MockMessageRepository), new(MockRawBodyLocator), zap.NewNop())

		_, err := svc.Get(context.Background(), "user@example.com", "not-a-uuid")
		assert.ErrorIs(t, err, ErrInvalidMessageID)
	})

	t.Run("其他邮箱的记录视为不存在", func(t *testing.T) {
		repo := new(MockMessageRepository)
		repo.On("GetMessage", mock.Anything, testMessageID).Return(&domain.Message{
			ID:      testMessageID,
			Mailbox: "other@example.com",
			Text:    strPtr("secret"),
		}, nil)

		svc := NewMessageService(repo, new(MockRawBodyLocator), zap.NewNop())

		_, err := svc.Get(context.Background(), "user@example.com", testMessageID)
		assert.ErrorIs(t, err, storage.ErrMessageNotFound)
	})

	t.Run("完整视图组装", func(t *testing.T) {
		ts := int64(1756500000)
		repo := new(MockMessageRepository)
		repo.On("GetMessage", mock.Anything, testMessageID).Return(&domain.Message{
			ID:        testMessageID,
			Scope:     domain.ScopeIncoming,
			Mailbox:   "user@example.com",
			Subject:   "hello",
			Timestamp: &ts,
			Status:    "delivered",
			Text:      strPtr("structured text"),
		}, nil)

		svc := NewMessageService(repo, new(MockRawBodyLocator), zap.NewNop())

		view, err := svc.Get(context.Background(), "user@example.com", testMessageID)
		require.NoError(t, err)
		assert.Equal(t, "hello", view.Subject)
		assert.Equal(t, "structured text", *view.TextBody)
		assert.Equal(t, domain.BodyFromStructured, view.BodySource)
	})
}

func TestMessageServiceAssemble(t *testing.T) {
	t.Run("结构化正文优先且不触碰定位器", func(t *testing.T) {
		locator := new(MockRawBodyLocator)
		svc := NewMessageService(new(MockMessageRepository), locator, zap.NewNop())

		record := &domain.Message{
			ID:         testMessageID,
			Text:       strPtr("already structured"),
			RawBodyRef: strPtr(testMessageID),
		}

		body, err := svc.Assemble(context.Background(), record)
		require.NoError(t, err)
		assert.Equal(t, "already structured", *body.Text)
		assert.Equal(t, domain.BodyFromStructured, body.Provenance)
		locator.AssertNotCalled(t, "FindRawBody", mock.Anything, mock.Anything)
	})

	t.Run("没有原始报文引用时正文为空", func(t *testing.T) {
		svc := NewMessageService(new(MockMessageRepository), new(MockRawBodyLocator), zap.NewNop())

		body, err := svc.Assemble(context.Background(), &domain.Message{ID: testMessageID})
		require.NoError(t, err)
		assert.Nil(t, body.Text)
		assert.Nil(t, body.HTML)
		assert.Equal(t, domain.BodyNone, body.Provenance)
	})

	t.Run("原始报文缺失降级为空正文而非错误", func(t *testing.T) {
		locator := new(MockRawBodyLocator)
		locator.On("FindRawBody", mock.Anything, testMessageID).Return(nil, storage.ErrRawBodyNotFound)

		svc := NewMessageService(new(MockMessageRepository), locator, zap.NewNop())

		record := &domain.Message{ID: testMessageID, RawBodyRef: strPtr(testMessageID)}
		body, err := svc.Assemble(context.Background(), record)
		require.NoError(t, err)
		assert.Equal(t, domain.BodyNone, body.Provenance)
	})

	t.Run("存储传输错误向上传播", func(t *testing.T) {
		queryErr := errors.New("connection reset")
		locator := new(MockRawBodyLocator)
		locator.On("FindRawBody", mock.Anything, testMessageID).Return(nil, queryErr)

		svc := NewMessageService(new(MockMessageRepository), locator, zap.NewNop())

		record := &domain.Message{ID: testMessageID, RawBodyRef: strPtr(testMessageID)}
		_, err := svc.Assemble(context.Background(), record)
		assert.ErrorIs(t, err, queryErr)
	})

	t.Run("原始报文解码重建正文", func(t *testing.T) {
		raw := "--b\r\nContent-Type: text/plain\r\n\r\nreconstructed body\r\n--b--"
		locator := new(MockRawBodyLocator)
		locator.On("FindRawBody", mock.Anything, testMessageID).Return([]byte(raw), nil)

		svc := NewMessageService(new(MockMessageRepository), locator, zap.NewNop())

		record := &domain.Message{
			ID:         testMessageID,
			RawBodyRef: strPtr(testMessageID),
			Headers:    map[string]string{"content-type": `multipart/mixed; boundary="b"`},
		}
		body, err := svc.Assemble(context.Background(), record)
		require.NoError(t, err)
		require.NotNil(t, body.Text)
		assert.Equal(t, "reconstructed body", *body.Text)
		assert.Equal(t, domain.BodyFromRaw, body.Provenance)
	})
}
