package service

import (
	"context"
	"fmt"

	"github.com/MrMangoye/Project/internal/domain"
	"github.com/MrMangoye/Project/internal/repository"
	"github.com/MrMangoye/Project/internal/store"

	"go.uber.org/zap"
)

// RelationshipWriter 关系边写入
// - 所有校验在任何写入之前完成（ValidationError）
// - 编辑语义：整体替换，先移除旧集合的反向边，再补齐新集合的反向边
// - 本次涉及的全部成员记录通过一次 SaveRelationships 落库（全有或全无）
// - 同一家族的写入经 FamilyLocker 串行化
type RelationshipWriter struct {
	persons repository.PersonsRepository
	loader  *repository.FamilyMembersLoader
	locker  store.FamilyLocker
	logger  *zap.Logger
}

// NewRelationshipWriter 创建 RelationshipWriter
func NewRelationshipWriter(persons repository.PersonsRepository, loader *repository.FamilyMembersLoader, locker store.FamilyLocker, logger *zap.Logger) *RelationshipWriter {
	return &RelationshipWriter{persons: persons, loader: loader, locker: locker, logger: logger}
}

// ApplyRelationships 以 proposed 整体替换 person 的关系边，并维护对端的对称边
// person 必须已落库；重复调用同一 proposed 不会产生重复边
func (w *RelationshipWriter) ApplyRelationships(ctx context.Context, person *domain.Person, proposed domain.ProposedEdges) error {
	if person == nil || !person.ID.Valid() {
		return domain.NewValidationError("person_id", "is required")
	}
	if person.FamilyID == "" {
		return domain.NewValidationError("family_id", "is required")
	}
	unlock, err := w.locker.Lock(ctx, person.FamilyID)
	if err != nil {
		return fmt.Errorf("failed to lock family %s: %w", person.FamilyID, err)
	}
	defer unlock()

	members, err := w.loader.LoadFamilyMembers(ctx, person.FamilyID)
	if err != nil {
		return err
	}
	current := findMember(members, person.ID)
	if current == nil {
		return domain.NotFoundf("person %s in family %s", person.ID, person.FamilyID)
	}
	return w.applyLocked(ctx, current, proposed, members)
}

// applyLocked 调用方已持有家族锁；members 为包含 person 在内的家族快照
func (w *RelationshipWriter) applyLocked(ctx context.Context, person *domain.Person, proposed domain.ProposedEdges, members []*domain.Person) error {
	updates, err := PlanRelationships(person, proposed, members)
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		w.logger.Debug("relationships unchanged",
			zap.String("family_id", person.FamilyID),
			zap.String("person_id", person.ID.String()))
		return nil
	}
	if err := w.persons.SaveRelationships(ctx, person.FamilyID, updates); err != nil {
		return fmt.Errorf("failed to save relationships: %w", err)
	}
	w.logger.Info("relationships applied",
		zap.String("family_id", person.FamilyID),
		zap.String("person_id", person.ID.String()),
		zap.Int("records", len(updates)))
	return nil
}

// PlanRelationships 计算把 proposed 应用到 person 后需要改写的全部成员记录（纯函数，不写库）
// members 为同一家族快照；person 不在其中时视为新成员（旧边为空）
func PlanRelationships(person *domain.Person, proposed domain.ProposedEdges, members []*domain.Person) ([]repository.RelationshipUpdate, error) {
	byID := make(map[domain.PersonID]*domain.Person, len(members)+1)
	order := make([]domain.PersonID, 0, len(members)+1)
	for _, m := range members {
		if m == nil || m.FamilyID != person.FamilyID {
			continue
		}
		if _, dup := byID[m.ID]; dup {
			continue
		}
		byID[m.ID] = m
		order = append(order, m.ID)
	}
	if _, ok := byID[person.ID]; !ok {
		byID[person.ID] = person
		order = append(order, person.ID)
	}
	old := byID[person.ID].Relationships

	// 1. 校验（任何修改之前）
	fields := []struct {
		name string
		ids  domain.EdgeSet
	}{
		{"relationships.parents", proposed.Parents},
		{"relationships.spouses", proposed.Spouses},
		{"relationships.siblings", proposed.Siblings},
		{"relationships.children", proposed.Children},
	}
	for _, f := range fields {
		for _, id := range f.ids {
			if !id.Valid() {
				return nil, domain.NewValidationError(f.name, "empty member id")
			}
			if id == person.ID {
				return nil, domain.NewValidationError(f.name, "a member cannot be related to themself")
			}
			if _, ok := byID[id]; !ok {
				return nil, domain.NewValidationError(f.name, "%s is not a member of family %s", id, person.FamilyID)
			}
		}
	}
	for _, id := range proposed.Parents {
		if proposed.Children.Has(id) {
			return nil, domain.NewValidationError("relationships.children", "%s cannot be both parent and child", id)
		}
	}

	// 2. 在副本上计算新状态
	next := make(map[domain.PersonID]domain.Relationships, len(byID))
	for id, m := range byID {
		next[id] = m.Relationships.Clone()
	}
	stored := proposed.Stored()
	next[person.ID] = stored

	relink := func(oldSet, newSet domain.EdgeSet, pick func(*domain.Relationships) *domain.EdgeSet) {
		for _, id := range oldSet {
			if newSet.Has(id) {
				continue
			}
			r, ok := next[id]
			if !ok {
				// 旧边已悬空
				continue
			}
			pick(&r).Remove(person.ID)
			next[id] = r
		}
		for _, id := range newSet {
			r := next[id]
			pick(&r).Add(person.ID)
			next[id] = r
		}
	}
	relink(old.Spouses, stored.Spouses, func(r *domain.Relationships) *domain.EdgeSet { return &r.Spouses })
	relink(old.Siblings, stored.Siblings, func(r *domain.Relationships) *domain.EdgeSet { return &r.Siblings })

	if proposed.Children != nil {
		for _, id := range order {
			if id == person.ID {
				continue
			}
			r := next[id]
			if proposed.Children.Has(id) {
				r.Parents.Add(person.ID)
			} else {
				r.Parents.Remove(person.ID)
			}
			next[id] = r
		}
	}

	// 3. 祖先环检查：新增的边都与 person 相连，出现环则 person 必为自身祖先
	if isOwnAncestor(person.ID, next) {
		return nil, domain.NewValidationError("relationships.parents", "ancestry cycle through %s", person.ID)
	}

	// 4. 只输出有变化的记录
	var updates []repository.RelationshipUpdate
	for _, id := range order {
		before := byID[id].Relationships
		after := next[id]
		isNew := id == person.ID && findMember(members, id) == nil
		if !isNew && before.Parents.Equal(after.Parents) &&
			before.Spouses.Equal(after.Spouses) &&
			before.Siblings.Equal(after.Siblings) {
			continue
		}
		updates = append(updates, repository.RelationshipUpdate{PersonID: id, Relationships: after})
	}
	return updates, nil
}

func isOwnAncestor(id domain.PersonID, rels map[domain.PersonID]domain.Relationships) bool {
	seen := map[domain.PersonID]bool{}
	queue := append([]domain.PersonID(nil), rels[id].Parents...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == id {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if r, ok := rels[cur]; ok {
			queue = append(queue, r.Parents...)
		}
	}
	return false
}

func findMember(members []*domain.Person, id domain.PersonID) *domain.Person {
	for _, m := range members {
		if m != nil && m.ID == id {
			return m
		}
	}
	return nil
}
