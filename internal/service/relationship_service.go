package service

import (
	"context"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/relationship"
	"github.com/MrMangoye/Project/internal/repository"

	"go.uber.org/zap"
)

// RelationshipService 关系查询（只读）
type RelationshipService struct {
	persons repository.PersonsRepository
	loader  *repository.FamilyMembersLoader
	logger  *zap.Logger
}

func NewRelationshipService(persons repository.PersonsRepository, families repository.FamiliesRepository, logger *zap.Logger) *RelationshipService {
	return &RelationshipService{
		persons: persons,
		loader:  repository.NewFamilyMembersLoader(families, persons),
		logger:  logger,
	}
}

// RelationshipsView 推导关系（成员摘要形式）
type RelationshipsView struct {
	Person        domain.PersonSummary   `json:"person"`
	Parents       []domain.PersonSummary `json:"parents"`
	Spouses       []domain.PersonSummary `json:"spouses"`
	Children      []domain.PersonSummary `json:"children"`
	Siblings      []domain.PersonSummary `json:"siblings"`
	Grandparents  []domain.PersonSummary `json:"grandparents"`
	Grandchildren []domain.PersonSummary `json:"grandchildren"`
	UnclesAunts   []domain.PersonSummary `json:"unclesAunts"`
	NephewsNieces []domain.PersonSummary `json:"nephewsNieces"`
	Cousins       []domain.PersonSummary `json:"cousins"`
}

// BetweenView 两名成员之间的双向称谓
type BetweenView struct {
	Person1          domain.PersonSummary       `json:"person1"`
	Person2          domain.PersonSummary       `json:"person2"`
	Relationship1To2 relationship.NullableLabel `json:"relationship1to2"`
	Relationship2To1 relationship.NullableLabel `json:"relationship2to1"`
}

// GetRelationships 某成员的全部推导关系
func (s *RelationshipService) GetRelationships(ctx context.Context, personID domain.PersonID) (*RelationshipsView, error) {
	person, err := s.persons.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	members, err := s.loader.LoadFamilyMembers(ctx, person.FamilyID)
	if err != nil {
		return nil, err
	}
	g := relationship.NewGraph(members, s.logger)
	d, err := g.Derive(personID)
	if err != nil {
		// 成员记录存在但不在家族快照中（family_members 索引缺失）
		d = relationship.Derive(person, members, s.logger)
	}
	summaries := func(ids domain.EdgeSet) []domain.PersonSummary {
		out := make([]domain.PersonSummary, 0, len(ids))
		for _, id := range ids {
			if m, ok := g.Member(id); ok {
				out = append(out, m.Summary())
			}
		}
		return out
	}
	return &RelationshipsView{
		Person:        person.Summary(),
		Parents:       summaries(d.Parents),
		Spouses:       summaries(d.Spouses),
		Children:      summaries(d.Children),
		Siblings:      summaries(d.Siblings),
		Grandparents:  summaries(d.Grandparents),
		Grandchildren: summaries(d.Grandchildren),
		UnclesAunts:   summaries(d.UnclesAunts),
		NephewsNieces: summaries(d.NephewsNieces),
		Cousins:       summaries(d.Cousins),
	}, nil
}

// GetRelationshipBetween 两名成员必须存在且属于同一家族
func (s *RelationshipService) GetRelationshipBetween(ctx context.Context, id1, id2 domain.PersonID) (*BetweenView, error) {
	p1, err := s.persons.GetPerson(ctx, id1)
	if err != nil {
		return nil, err
	}
	p2, err := s.persons.GetPerson(ctx, id2)
	if err != nil {
		return nil, err
	}
	if p1.FamilyID != p2.FamilyID {
		return nil, domain.NewValidationError("", "members belong to different families")
	}
	members, err := s.loader.LoadFamilyMembers(ctx, p1.FamilyID)
	if err != nil {
		return nil, err
	}
	return &BetweenView{
		Person1:          p1.Summary(),
		Person2:          p2.Summary(),
		Relationship1To2: relationship.NewNullableLabel(relationship.LabelRelationship(p1, p2, members, s.logger)),
		Relationship2To1: relationship.NewNullableLabel(relationship.LabelRelationship(p2, p1, members, s.logger)),
	}, nil
}
