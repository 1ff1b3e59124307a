package repository

import (
	"context"
	"fmt"

	"github.com/MrMangoye/Project/internal/domain"
)

// FamilyMembersLoader 加载某家族全部成员（只读）
type FamilyMembersLoader struct {
	families FamiliesRepository
	persons  PersonsRepository
}

// NewFamilyMembersLoader 创建 FamilyMembersLoader
func NewFamilyMembersLoader(families FamiliesRepository, persons PersonsRepository) *FamilyMembersLoader {
	return &FamilyMembersLoader{families: families, persons: persons}
}

// LoadFamilyMembers 家族不存在返回 ErrNotFound；无成员返回空切片（不是错误）
// 返回顺序不保证，调用方不得依赖
func (l *FamilyMembersLoader) LoadFamilyMembers(ctx context.Context, familyID string) ([]*domain.Person, error) {
	if familyID == "" {
		return nil, domain.NewValidationError("family_id", "is required")
	}
	if _, err := l.families.GetFamily(ctx, familyID); err != nil {
		return nil, err
	}
	members, err := l.persons.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	if members == nil {
		members = []*domain.Person{}
	}
	return members, nil
}
