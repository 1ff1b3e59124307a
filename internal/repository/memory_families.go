package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"github.com/google/uuid"
)

// MemoryFamiliesRepo: DB 未就绪时的内存实现；name / access_code 唯一性与表约束一致
type MemoryFamiliesRepo struct {
	mu       sync.RWMutex
	families map[string]*domain.Family
}

func NewMemoryFamiliesRepo() *MemoryFamiliesRepo {
	return &MemoryFamiliesRepo{families: map[string]*domain.Family{}}
}

var _ FamiliesRepository = (*MemoryFamiliesRepo)(nil)

func cloneFamily(f *domain.Family) *domain.Family {
	cp := *f
	cp.Members = slices.Clone(f.Members)
	if cp.Members == nil {
		cp.Members = []domain.PersonID{}
	}
	return &cp
}

func (r *MemoryFamiliesRepo) GetFamily(_ context.Context, familyID string) (*domain.Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[familyID]
	if !ok {
		return nil, domain.NotFoundf("family %s", familyID)
	}
	return cloneFamily(f), nil
}

func (r *MemoryFamiliesRepo) GetFamilyByAccessCode(_ context.Context, accessCode string) (*domain.Family, error) {
	code := strings.ToUpper(strings.TrimSpace(accessCode))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.families {
		if code != "" && f.AccessCode == code {
			return cloneFamily(f), nil
		}
	}
	return nil, domain.NotFoundf("family with access code %s", code)
}

func (r *MemoryFamiliesRepo) CreateFamily(_ context.Context, family *domain.Family) (string, error) {
	if family == nil || strings.TrimSpace(family.Name) == "" {
		return "", domain.NewValidationError("name", "is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.families {
		if strings.EqualFold(f.Name, family.Name) {
			return "", domain.NewValidationError("name", "family name %q already exists", family.Name)
		}
		if family.AccessCode != "" && f.AccessCode == family.AccessCode {
			return "", fmt.Errorf("access code collision, retry")
		}
	}
	if family.ID == "" {
		family.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	family.CreatedAt, family.UpdatedAt = now, now
	r.families[family.ID] = cloneFamily(family)
	return family.ID, nil
}

func (r *MemoryFamiliesRepo) UpdateFamily(_ context.Context, family *domain.Family) error {
	if family == nil || family.ID == "" {
		return fmt.Errorf("family_id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.families[family.ID]
	if !ok {
		return domain.NotFoundf("family %s", family.ID)
	}
	for id, f := range r.families {
		if id != family.ID && strings.EqualFold(f.Name, family.Name) {
			return domain.NewValidationError("name", "family name %q already exists", family.Name)
		}
	}
	cur.Name = family.Name
	cur.Description = family.Description
	cur.Motto = family.Motto
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryFamiliesRepo) DeleteFamily(_ context.Context, familyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.families[familyID]; !ok {
		return domain.NotFoundf("family %s", familyID)
	}
	delete(r.families, familyID)
	return nil
}

func (r *MemoryFamiliesRepo) AddMember(_ context.Context, familyID string, personID domain.PersonID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.families[familyID]
	if !ok {
		return domain.NotFoundf("family %s", familyID)
	}
	if !slices.Contains(f.Members, personID) {
		f.Members = append(f.Members, personID)
	}
	return nil
}

func (r *MemoryFamiliesRepo) RemoveMember(_ context.Context, familyID string, personID domain.PersonID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.families[familyID]
	if !ok {
		return domain.NotFoundf("family %s", familyID)
	}
	if i := slices.Index(f.Members, personID); i >= 0 {
		f.Members = slices.Delete(f.Members, i, i+1)
	}
	return nil
}
