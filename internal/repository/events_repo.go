package repository

import (
	"context"
	"time"

	"github.com/MrMangoye/Project/internal/domain"
)

// EventsRepository 家族活动Repository接口
type EventsRepository interface {
	// 创建接口（event.ID 为空时生成 UUID）
	CreateEvent(ctx context.Context, event *domain.FamilyEvent) (string, error)

	// ListEvents [from, to] 闭区间内的活动，按日期升序
	ListEvents(ctx context.Context, familyID string, from, to time.Time) ([]*domain.FamilyEvent, error)

	// CountUpcoming 状态为 upcoming 且日期不早于 now 当天的活动数
	CountUpcoming(ctx context.Context, familyID string, now time.Time) (int, error)
}
