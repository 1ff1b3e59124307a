package repository

import (
	"context"
	"sort"

	"github.com/MrMangoye/Project/internal/domain"
)

// PersonsRepository 成员Repository接口
// Repository层只负责数据访问；关系边的一致性由 service 层的 RelationshipWriter 维护
type PersonsRepository interface {
	// 查询接口
	GetPerson(ctx context.Context, personID domain.PersonID) (*domain.Person, error)
	ListByFamily(ctx context.Context, familyID string) ([]*domain.Person, error)

	// 创建接口（person.ID 为空时生成 UUID）
	CreatePerson(ctx context.Context, person *domain.Person) (domain.PersonID, error)

	// 更新基本信息（不含关系边）
	UpdatePerson(ctx context.Context, person *domain.Person) error

	// 批量写入关系边：一次调用内全部成功或全部失败
	SaveRelationships(ctx context.Context, familyID string, updates []RelationshipUpdate) error

	// 删除接口
	DeletePerson(ctx context.Context, personID domain.PersonID) error
}

// RelationshipUpdate 一条成员关系边的整体替换
type RelationshipUpdate struct {
	PersonID      domain.PersonID
	Relationships domain.Relationships
}

// SortUpdates 按 person_id 排序，保证写入顺序稳定（避免并发事务死锁）
func SortUpdates(updates []RelationshipUpdate) {
	sort.Slice(updates, func(i, j int) bool { return updates[i].PersonID < updates[j].PersonID })
}
