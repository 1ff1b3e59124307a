package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/relationship"
	"github.com/MrMangoye/Project/internal/repository"
	"github.com/MrMangoye/Project/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemberService 成员服务（增删改查 + 关系边写入）
type MemberService struct {
	persons  repository.PersonsRepository
	families repository.FamiliesRepository
	loader   *repository.FamilyMembersLoader
	writer   *RelationshipWriter
	locker   store.FamilyLocker
	events   EventPublisher
	logger   *zap.Logger
}

// NewMemberService 创建成员服务
func NewMemberService(
	persons repository.PersonsRepository,
	families repository.FamiliesRepository,
	locker store.FamilyLocker,
	events EventPublisher,
	logger *zap.Logger,
) *MemberService {
	loader := repository.NewFamilyMembersLoader(families, persons)
	return &MemberService{
		persons:  persons,
		families: families,
		loader:   loader,
		writer:   NewRelationshipWriter(persons, loader, locker, logger),
		locker:   locker,
		events:   events,
		logger:   logger,
	}
}

// Writer 关系边写入器（与本服务共享锁和仓储）
func (s *MemberService) Writer() *RelationshipWriter { return s.writer }

// MemberView 成员 + 推导关系
type MemberView struct {
	*domain.Person
	Derived *relationship.Derived `json:"derived"`
}

// AnnotatedMember 成员列表项：label 为 acting person 眼中该成员的称谓，reverseLabel 反之
type AnnotatedMember struct {
	*domain.Person
	Derived      *relationship.Derived      `json:"derived"`
	Label        relationship.NullableLabel `json:"label"`
	ReverseLabel relationship.NullableLabel `json:"reverseLabel"`
}

// CreateMember 创建成员并写入关系边
// 关系边在创建记录之前校验；创建后写入失败则删除已创建的记录
func (s *MemberService) CreateMember(ctx context.Context, req CreateMemberRequest) (*MemberView, error) {
	req.normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	person := req.Member.toPerson()
	person.ID = domain.PersonID(uuid.NewString())
	person.FamilyID = req.FamilyID
	person.CreatedBy = req.ActingUserID

	unlock, err := s.locker.Lock(ctx, req.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock family %s: %w", req.FamilyID, err)
	}
	defer unlock()

	members, err := s.loader.LoadFamilyMembers(ctx, req.FamilyID)
	if err != nil {
		return nil, err
	}
	updates, err := PlanRelationships(person, req.Relationships, members)
	if err != nil {
		return nil, err
	}

	if _, err := s.persons.CreatePerson(ctx, person); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}
	if err := s.families.AddMember(ctx, req.FamilyID, person.ID); err != nil {
		s.rollbackCreate(ctx, person)
		return nil, fmt.Errorf("failed to add member to family: %w", err)
	}
	if err := s.persons.SaveRelationships(ctx, req.FamilyID, updates); err != nil {
		s.rollbackCreate(ctx, person)
		return nil, fmt.Errorf("failed to save relationships: %w", err)
	}

	s.logger.Info("member created",
		zap.String("family_id", req.FamilyID),
		zap.String("person_id", person.ID.String()),
		zap.Int("relationship_records", len(updates)))
	s.events.Publish(ctx, MemberEvent{Type: EventMemberCreated, FamilyID: req.FamilyID, PersonID: person.ID})

	return s.view(ctx, person.ID)
}

func (s *MemberService) rollbackCreate(ctx context.Context, person *domain.Person) {
	if err := s.families.RemoveMember(ctx, person.FamilyID, person.ID); err != nil {
		s.logger.Warn("rollback: failed to remove family member", zap.String("person_id", person.ID.String()), zap.Error(err))
	}
	if err := s.persons.DeletePerson(ctx, person.ID); err != nil {
		s.logger.Warn("rollback: failed to delete member", zap.String("person_id", person.ID.String()), zap.Error(err))
	}
}

// UpdateMember 修改成员基本信息；Relationships 非 nil 时整体替换关系边
func (s *MemberService) UpdateMember(ctx context.Context, req UpdateMemberRequest) (*MemberView, error) {
	req.normalize()
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	current, err := s.persons.GetPerson(ctx, req.PersonID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, current.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock family %s: %w", current.FamilyID, err)
	}
	defer unlock()

	var members []*domain.Person
	var updates []repository.RelationshipUpdate
	if req.Relationships != nil {
		members, err = s.loader.LoadFamilyMembers(ctx, current.FamilyID)
		if err != nil {
			return nil, err
		}
		snapshot := findMember(members, current.ID)
		if snapshot == nil {
			return nil, domain.NotFoundf("person %s in family %s", current.ID, current.FamilyID)
		}
		// 校验在任何写入之前
		updates, err = PlanRelationships(snapshot, *req.Relationships, members)
		if err != nil {
			return nil, err
		}
	}

	next := current.Clone()
	changed := applyPatch(next, req)
	if changed {
		if err := s.persons.UpdatePerson(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to update member: %w", err)
		}
	}
	if len(updates) > 0 {
		if err := s.persons.SaveRelationships(ctx, current.FamilyID, updates); err != nil {
			if changed {
				// 关系边写入失败时恢复基本信息，整体表现为未修改
				if rerr := s.persons.UpdatePerson(ctx, current); rerr != nil {
					s.logger.Warn("rollback: failed to restore member attributes",
						zap.String("person_id", current.ID.String()), zap.Error(rerr))
				}
			}
			return nil, fmt.Errorf("failed to save relationships: %w", err)
		}
	}

	if changed || len(updates) > 0 {
		s.events.Publish(ctx, MemberEvent{Type: EventMemberUpdated, FamilyID: current.FamilyID, PersonID: current.ID})
	}
	return s.view(ctx, current.ID)
}

func applyPatch(p *domain.Person, req UpdateMemberRequest) bool {
	changed := false
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		changed = true
	}
	if req.DateOfBirth != nil {
		if dob, ok := parseDate(*req.DateOfBirth); ok {
			p.DateOfBirth = &dob
		} else {
			p.DateOfBirth = nil
		}
		changed = true
	}
	if req.Gender != nil {
		p.Gender = domain.ParseGender(*req.Gender)
		changed = true
	}
	if req.Occupation != nil {
		p.Occupation = strings.TrimSpace(*req.Occupation)
		changed = true
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
		changed = true
	}
	if req.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		changed = true
	}
	if req.Business != nil {
		p.Business = *req.Business
		changed = true
	}
	return changed
}

// DeleteMember 删除成员，并清理其他成员指向它的 spouses/siblings 对称边
// 他人 parents 中的引用保留为悬空边（推导时被忽略）
func (s *MemberService) DeleteMember(ctx context.Context, personID domain.PersonID) error {
	current, err := s.persons.GetPerson(ctx, personID)
	if err != nil {
		return err
	}
	unlock, err := s.locker.Lock(ctx, current.FamilyID)
	if err != nil {
		return fmt.Errorf("failed to lock family %s: %w", current.FamilyID, err)
	}
	defer unlock()

	members, err := s.persons.ListByFamily(ctx, current.FamilyID)
	if err != nil {
		return fmt.Errorf("failed to list family members: %w", err)
	}

	if err := s.persons.DeletePerson(ctx, personID); err != nil {
		return err
	}
	if err := s.families.RemoveMember(ctx, current.FamilyID, personID); err != nil {
		return fmt.Errorf("failed to remove family member: %w", err)
	}

	var updates []repository.RelationshipUpdate
	for _, m := range members {
		if m.ID == personID {
			continue
		}
		r := m.Relationships.Clone()
		a := r.Spouses.Remove(personID)
		b := r.Siblings.Remove(personID)
		if a || b {
			updates = append(updates, repository.RelationshipUpdate{PersonID: m.ID, Relationships: r})
		}
	}
	if err := s.persons.SaveRelationships(ctx, current.FamilyID, updates); err != nil {
		// 记录已删除；残留的对称边按悬空边处理
		s.logger.Warn("failed to scrub back-links of deleted member",
			zap.String("family_id", current.FamilyID),
			zap.String("person_id", personID.String()),
			zap.Error(err))
	}

	s.logger.Info("member deleted",
		zap.String("family_id", current.FamilyID),
		zap.String("person_id", personID.String()),
		zap.Int("scrubbed_records", len(updates)))
	s.events.Publish(ctx, MemberEvent{Type: EventMemberDeleted, FamilyID: current.FamilyID, PersonID: personID})
	return nil
}

// GetMember 成员 + 推导关系
func (s *MemberService) GetMember(ctx context.Context, personID domain.PersonID) (*MemberView, error) {
	return s.view(ctx, personID)
}

func (s *MemberService) view(ctx context.Context, personID domain.PersonID) (*MemberView, error) {
	person, err := s.persons.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	members, err := s.loader.LoadFamilyMembers(ctx, person.FamilyID)
	if err != nil {
		return nil, err
	}
	return &MemberView{Person: person, Derived: relationship.Derive(person, members, s.logger)}, nil
}

// ListMembers 家族成员列表；actingPersonID 非空时为每个成员附加称谓
// 单个成员的称谓计算失败只影响该成员（label 为 null）
func (s *MemberService) ListMembers(ctx context.Context, familyID string, actingPersonID domain.PersonID) ([]AnnotatedMember, error) {
	members, err := s.loader.LoadFamilyMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}
	g := relationship.NewGraph(members, s.logger)
	_, actingOK := g.Member(actingPersonID)

	out := make([]AnnotatedMember, 0, g.Len())
	for _, m := range g.Members() {
		item := AnnotatedMember{Person: m}
		if d, err := g.Derive(m.ID); err == nil {
			item.Derived = d
		}
		if actingOK && m.ID != actingPersonID {
			item.Label, item.ReverseLabel = safeLabels(g, actingPersonID, m.ID, s.logger)
		}
		out = append(out, item)
	}
	return out, nil
}

// safeLabels 单对成员的称谓；panic 时降级为 null
func safeLabels(g *relationship.Graph, a, b domain.PersonID, logger *zap.Logger) (ab, ba relationship.NullableLabel) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("relationship label failed",
				zap.String("subject_id", a.String()),
				zap.String("other_id", b.String()),
				zap.Any("panic", r))
			ab, ba = relationship.NullableLabel{}, relationship.NullableLabel{}
		}
	}()
	ab = relationship.NewNullableLabel(g.Label(a, b))
	ba = relationship.NewNullableLabel(g.Label(b, a))
	return ab, ba
}
