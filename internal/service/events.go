package service

import (
	"context"
	"time"

	"github.com/MrMangoye/Project/common/redis"
	"github.com/MrMangoye/Project/internal/domain"

	"go.uber.org/zap"
)

// 成员变更事件类型
const (
	EventMemberCreated = "member.created"
	EventMemberUpdated = "member.updated"
	EventMemberDeleted = "member.deleted"
)

// MemberEvent 成员变更事件
type MemberEvent struct {
	Type     string          `json:"type"`
	FamilyID string          `json:"family_id"`
	PersonID domain.PersonID `json:"person_id"`
	At       time.Time       `json:"at"`
}

// EventPublisher 发布失败只记录日志，不影响写入结果
type EventPublisher interface {
	Publish(ctx context.Context, ev MemberEvent)
}

// RedisEventPublisher 写入 Redis Streams
type RedisEventPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

func NewRedisEventPublisher(client *redis.Client, stream string, logger *zap.Logger) *RedisEventPublisher {
	return &RedisEventPublisher{client: client, stream: stream, logger: logger}
}

func (p *RedisEventPublisher) Publish(ctx context.Context, ev MemberEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if _, err := redis.PublishJSONToStream(ctx, p.client, p.stream, ev); err != nil {
		p.logger.Warn("failed to publish member event",
			zap.String("stream", p.stream),
			zap.String("type", ev.Type),
			zap.String("family_id", ev.FamilyID),
			zap.String("person_id", ev.PersonID.String()),
			zap.Error(err))
	}
}

// NopEventPublisher Redis 未启用时使用
type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, MemberEvent) {}
