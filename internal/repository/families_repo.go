package repository

import (
	"context"

	"github.com/MrMangoye/Project/internal/domain"
)

// FamiliesRepository 家族Repository接口
type FamiliesRepository interface {
	GetFamily(ctx context.Context, familyID string) (*domain.Family, error)
	GetFamilyByAccessCode(ctx context.Context, accessCode string) (*domain.Family, error)

	// 创建接口（family.ID 为空时生成 UUID）；名称重复返回 ValidationError
	CreateFamily(ctx context.Context, family *domain.Family) (string, error)
	UpdateFamily(ctx context.Context, family *domain.Family) error
	// 删除家族（成员索引一并删除）；不存在返回 NotFound
	DeleteFamily(ctx context.Context, familyID string) error

	// 成员索引
	AddMember(ctx context.Context, familyID string, personID domain.PersonID) error
	RemoveMember(ctx context.Context, familyID string, personID domain.PersonID) error
}
