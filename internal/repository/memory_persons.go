package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"github.com/google/uuid"
)

// MemoryPersonsRepo: DB 未就绪时的内存实现（本地联调与测试）
// - 读写都做深拷贝，调用方拿到的是快照
// - SaveRelationships 在同一把锁内先校验再写入，保证全有或全无
type MemoryPersonsRepo struct {
	mu      sync.RWMutex
	persons map[domain.PersonID]*domain.Person
	seq     int64 // 插入序号，ListByFamily 按插入顺序输出
	order   map[domain.PersonID]int64
}

func NewMemoryPersonsRepo() *MemoryPersonsRepo {
	return &MemoryPersonsRepo{
		persons: map[domain.PersonID]*domain.Person{},
		order:   map[domain.PersonID]int64{},
	}
}

var _ PersonsRepository = (*MemoryPersonsRepo)(nil)

func (r *MemoryPersonsRepo) GetPerson(_ context.Context, personID domain.PersonID) (*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.persons[personID]
	if !ok {
		return nil, domain.NotFoundf("person %s", personID)
	}
	return p.Clone(), nil
}

func (r *MemoryPersonsRepo) ListByFamily(_ context.Context, familyID string) ([]*domain.Person, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Person{}
	for _, p := range r.persons {
		if p.FamilyID == familyID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.order[out[i].ID] < r.order[out[j].ID] })
	return out, nil
}

func (r *MemoryPersonsRepo) CreatePerson(_ context.Context, person *domain.Person) (domain.PersonID, error) {
	if person == nil || person.FamilyID == "" {
		return "", fmt.Errorf("family_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !person.ID.Valid() {
		person.ID = domain.PersonID(uuid.NewString())
	}
	if _, exists := r.persons[person.ID]; exists {
		return "", fmt.Errorf("person %s already exists", person.ID)
	}
	now := time.Now().UTC()
	person.CreatedAt, person.UpdatedAt = now, now
	r.persons[person.ID] = person.Clone()
	r.seq++
	r.order[person.ID] = r.seq
	return person.ID, nil
}

func (r *MemoryPersonsRepo) UpdatePerson(_ context.Context, person *domain.Person) error {
	if person == nil || !person.ID.Valid() {
		return fmt.Errorf("person_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.persons[person.ID]
	if !ok {
		return domain.NotFoundf("person %s", person.ID)
	}
	next := person.Clone()
	// 关系边、family、创建信息不在此更新
	next.FamilyID = cur.FamilyID
	next.Relationships = cur.Relationships.Clone()
	next.IsSelf = cur.IsSelf
	next.CreatedBy = cur.CreatedBy
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.persons[person.ID] = next
	return nil
}

func (r *MemoryPersonsRepo) SaveRelationships(_ context.Context, familyID string, updates []RelationshipUpdate) error {
	if familyID == "" {
		return fmt.Errorf("family_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range updates {
		p, ok := r.persons[u.PersonID]
		if !ok || p.FamilyID != familyID {
			return domain.NotFoundf("person %s", u.PersonID)
		}
	}
	now := time.Now().UTC()
	for _, u := range updates {
		p := r.persons[u.PersonID].Clone()
		p.Relationships = u.Relationships.Clone()
		p.UpdatedAt = now
		r.persons[u.PersonID] = p
	}
	return nil
}

func (r *MemoryPersonsRepo) DeletePerson(_ context.Context, personID domain.PersonID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.persons[personID]; !ok {
		return domain.NotFoundf("person %s", personID)
	}
	delete(r.persons, personID)
	delete(r.order, personID)
	return nil
}
