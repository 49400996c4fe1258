// Package events 发布领域事件（课时确认、换班通过、出勤表到期等）。
// 未配置 NATS 时使用 NopPublisher，业务流程不依赖事件是否送达。
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// 事件主题
const (
	SubjectNotificationDue  = "course.notification_due"
	SubjectAttendanceSent   = "course.attendance_sent"
	SubjectSwapApproved     = "swap.approved"
	SubjectSessionConfirmed = "session.confirmed"
)

// Event 事件信封
type Event struct {
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close()
}

// ── NATS 实现 ──

// NatsPublisher 基于 NATS 的事件发布
type NatsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

// NewNatsPublisher 连接 NATS
func NewNatsPublisher(url string, logger *zap.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("swim-admin"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("连接 NATS 失败: %w", err)
	}
	logger.Info("NATS 连接成功", zap.String("url", url))
	return &NatsPublisher{conn: nc, logger: logger}, nil
}

// Publish 序列化并发布事件
func (p *NatsPublisher) Publish(_ context.Context, subject string, payload interface{}) error {
	data, err := json.Marshal(Event{
		EventType:  subject,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn("发布事件失败", zap.String("subject", subject), zap.Error(err))
		return err
	}
	p.logger.Debug("事件已发布", zap.String("subject", subject))
	return nil
}

// Close 刷新缓冲并关闭连接
func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// ── 空实现 ──

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

// Publish 不做任何事
func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }

// Close 不做任何事
func (NopPublisher) Close() {}
