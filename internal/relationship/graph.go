// Package relationship 从成员直接声明的关系边（parents/spouses/siblings）推导完整关系图，
// 并计算两名成员之间的称谓。
//
// 所有计算都基于同一家族的内存快照，纯函数、无缓存，可并发调用；
// 每次读取都重新计算，没有需要失效的共享状态。
package relationship

import (
	"slices"

	"github.com/MrMangoye/Project/internal/domain"

	"go.uber.org/zap"
)

// Graph 一个家族成员快照上的关系索引（构建后只读）
type Graph struct {
	familyID string
	members  map[domain.PersonID]*domain.Person
	order    []domain.PersonID
	// parent id -> 以其为 parent 的成员（children 反向索引）
	children map[domain.PersonID][]domain.PersonID
	dangling []DanglingEdge
}

// DanglingEdge 指向不存在成员的关系边（如成员被删除后）
type DanglingEdge struct {
	PersonID domain.PersonID
	Edge     string // parents / spouses / siblings
	RefID    domain.PersonID
}

// NewGraph 基于成员快照构建关系图
// 与第一个成员 family 不同的记录被忽略；悬空边记录为 IntegrityWarning 并写日志，不返回错误
func NewGraph(members []*domain.Person, logger *zap.Logger) *Graph {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Graph{
		members:  make(map[domain.PersonID]*domain.Person, len(members)),
		order:    make([]domain.PersonID, 0, len(members)),
		children: make(map[domain.PersonID][]domain.PersonID),
	}
	for _, m := range members {
		if m == nil || !m.ID.Valid() {
			continue
		}
		if g.familyID == "" {
			g.familyID = m.FamilyID
		}
		if m.FamilyID != g.familyID {
			logger.Warn("ignoring member of another family in snapshot",
				zap.String("family_id", g.familyID),
				zap.String("person_id", m.ID.String()),
				zap.String("person_family_id", m.FamilyID),
			)
			continue
		}
		if _, dup := g.members[m.ID]; dup {
			continue
		}
		g.members[m.ID] = m
		g.order = append(g.order, m.ID)
	}

	for _, id := range g.order {
		m := g.members[id]
		for _, pid := range m.Relationships.Parents {
			if _, ok := g.members[pid]; ok {
				g.children[pid] = append(g.children[pid], id)
			}
		}
		g.collectDangling(m, "parents", m.Relationships.Parents)
		g.collectDangling(m, "spouses", m.Relationships.Spouses)
		g.collectDangling(m, "siblings", m.Relationships.Siblings)
	}

	for _, d := range g.dangling {
		logger.Warn("integrity warning: dangling relationship edge",
			zap.String("family_id", g.familyID),
			zap.String("person_id", d.PersonID.String()),
			zap.String("edge", d.Edge),
			zap.String("ref_id", d.RefID.String()),
		)
		danglingEdgesTotal.WithLabelValues(d.Edge).Inc()
	}
	return g
}

func (g *Graph) collectDangling(m *domain.Person, edge string, ids domain.EdgeSet) {
	for _, ref := range ids {
		if _, ok := g.members[ref]; !ok {
			g.dangling = append(g.dangling, DanglingEdge{PersonID: m.ID, Edge: edge, RefID: ref})
		}
	}
}

// FamilyID 快照所属家族
func (g *Graph) FamilyID() string { return g.familyID }

// Len 成员数量
func (g *Graph) Len() int { return len(g.order) }

// Member 按 id 查找成员
func (g *Graph) Member(id domain.PersonID) (*domain.Person, bool) {
	m, ok := g.members[id]
	return m, ok
}

// Members 按输入顺序返回全部成员
func (g *Graph) Members() []*domain.Person {
	out := make([]*domain.Person, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.members[id])
	}
	return out
}

// Dangling 构建时发现的悬空边
func (g *Graph) Dangling() []DanglingEdge {
	return slices.Clone(g.dangling)
}

// resolve 过滤掉悬空 id 与自身，去重
func (g *Graph) resolve(self domain.PersonID, ids []domain.PersonID) domain.EdgeSet {
	out := make(domain.EdgeSet, 0, len(ids))
	for _, id := range ids {
		if id == self {
			continue
		}
		if _, ok := g.members[id]; ok {
			out.Add(id)
		}
	}
	return out
}

func (g *Graph) parentsOf(id domain.PersonID) domain.EdgeSet {
	m, ok := g.members[id]
	if !ok {
		return domain.EdgeSet{}
	}
	return g.resolve(id, m.Relationships.Parents)
}

func (g *Graph) childrenOf(id domain.PersonID) domain.EdgeSet {
	return g.resolve(id, g.children[id])
}

// siblingsOf 显式 siblings（任一方向声明）∪ 至少共享一个 parent 的成员，去重
func (g *Graph) siblingsOf(id domain.PersonID) domain.EdgeSet {
	m, ok := g.members[id]
	if !ok {
		return domain.EdgeSet{}
	}
	out := domain.EdgeSet{}
	for _, oid := range g.order {
		if oid == id {
			continue
		}
		o := g.members[oid]
		if m.Relationships.Siblings.Has(oid) || o.Relationships.Siblings.Has(id) || sharesParent(m, o) {
			out.Add(oid)
		}
	}
	return out
}

func sharesParent(a, b *domain.Person) bool {
	for _, pid := range a.Relationships.Parents {
		if b.Relationships.Parents.Has(pid) {
			return true
		}
	}
	return false
}
