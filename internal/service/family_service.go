package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FamilyService 家族服务
type FamilyService struct {
	families repository.FamiliesRepository
	persons  repository.PersonsRepository
	events   EventPublisher
	logger   *zap.Logger
}

// NewFamilyService 创建家族服务
func NewFamilyService(families repository.FamiliesRepository, persons repository.PersonsRepository, events EventPublisher, logger *zap.Logger) *FamilyService {
	return &FamilyService{families: families, persons: persons, events: events, logger: logger}
}

// FamilyResponse 创建/加入家族的响应
type FamilyResponse struct {
	Family *domain.Family `json:"family"`
	Self   *domain.Person `json:"self,omitempty"`
}

// newAccessCode 12 位大写十六进制邀请码
func newAccessCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// CreateFamily 创建家族，并把创建者本人作为第一名成员
func (s *FamilyService) CreateFamily(ctx context.Context, req CreateFamilyRequest) (*FamilyResponse, error) {
	req.normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	code, err := newAccessCode()
	if err != nil {
		return nil, err
	}
	family := &domain.Family{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Motto:       strings.TrimSpace(req.Motto),
		CreatedBy:   req.ActingUserID,
		AccessCode:  code,
	}
	if _, err := s.families.CreateFamily(ctx, family); err != nil {
		return nil, err
	}

	self, err := s.addSelf(ctx, family.ID, req.ActingUserID, req.Self)
	if err != nil {
		// 没有成员的家族会占用名称，删除后允许重试
		if derr := s.families.DeleteFamily(ctx, family.ID); derr != nil {
			s.logger.Warn("rollback: failed to delete family", zap.String("family_id", family.ID), zap.Error(derr))
		}
		return nil, err
	}
	s.logger.Info("family created",
		zap.String("family_id", family.ID),
		zap.String("created_by", req.ActingUserID))

	f, err := s.families.GetFamily(ctx, family.ID)
	if err != nil {
		return nil, err
	}
	return &FamilyResponse{Family: f, Self: self}, nil
}

// JoinFamily 通过邀请码加入家族（同一用户只能以本人身份加入一次）
func (s *FamilyService) JoinFamily(ctx context.Context, req JoinFamilyRequest) (*FamilyResponse, error) {
	req.normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	family, err := s.families.GetFamilyByAccessCode(ctx, req.AccessCode)
	if err != nil {
		return nil, err
	}
	members, err := s.persons.ListByFamily(ctx, family.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family members: %w", err)
	}
	for _, m := range members {
		if m.IsSelf && m.CreatedBy == req.ActingUserID {
			return nil, domain.NewValidationError("accessCode", "user %s is already a member of this family", req.ActingUserID)
		}
	}

	self, err := s.addSelf(ctx, family.ID, req.ActingUserID, req.Self)
	if err != nil {
		return nil, err
	}
	s.logger.Info("family joined",
		zap.String("family_id", family.ID),
		zap.String("user_id", req.ActingUserID))

	f, err := s.families.GetFamily(ctx, family.ID)
	if err != nil {
		return nil, err
	}
	return &FamilyResponse{Family: f, Self: self}, nil
}

func (s *FamilyService) addSelf(ctx context.Context, familyID, userID string, in MemberInput) (*domain.Person, error) {
	p := in.toPerson()
	p.ID = domain.PersonID(uuid.NewString())
	p.FamilyID = familyID
	p.IsSelf = true
	p.CreatedBy = userID
	if _, err := s.persons.CreatePerson(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	if err := s.families.AddMember(ctx, familyID, p.ID); err != nil {
		_ = s.persons.DeletePerson(ctx, p.ID)
		return nil, fmt.Errorf("failed to add family member: %w", err)
	}
	s.events.Publish(ctx, MemberEvent{Type: EventMemberCreated, FamilyID: familyID, PersonID: p.ID})
	return p, nil
}

// GetFamily 家族详情
func (s *FamilyService) GetFamily(ctx context.Context, familyID string) (*domain.Family, error) {
	if familyID == "" {
		return nil, domain.NewValidationError("family_id", "is required")
	}
	return s.families.GetFamily(ctx, familyID)
}

// UpdateFamily 修改名称/描述/格言
func (s *FamilyService) UpdateFamily(ctx context.Context, req UpdateFamilyRequest) (*domain.Family, error) {
	req.normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	f, err := s.families.GetFamily(ctx, req.FamilyID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		f.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		f.Description = strings.TrimSpace(*req.Description)
	}
	if req.Motto != nil {
		f.Motto = strings.TrimSpace(*req.Motto)
	}
	if err := s.families.UpdateFamily(ctx, f); err != nil {
		return nil, err
	}
	return s.families.GetFamily(ctx, req.FamilyID)
}
