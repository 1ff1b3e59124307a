package relationship

import (
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"go.uber.org/zap"
)

// Derived 一名成员的完整关系集合（全部为推导结果，不落库）
type Derived struct {
	PersonID      domain.PersonID `json:"personId"`
	Parents       domain.EdgeSet  `json:"parents"`
	Spouses       domain.EdgeSet  `json:"spouses"`
	Children      domain.EdgeSet  `json:"children"`
	Siblings      domain.EdgeSet  `json:"siblings"`
	Grandparents  domain.EdgeSet  `json:"grandparents"`
	Grandchildren domain.EdgeSet  `json:"grandchildren"`
	UnclesAunts   domain.EdgeSet  `json:"unclesAunts"`
	NephewsNieces domain.EdgeSet  `json:"nephewsNieces"`
	Cousins       domain.EdgeSet  `json:"cousins"`
}

// Derive 计算 person 在 allMembers（同一家族全部成员，应包含 person 本身）中的关系
// person 不在 allMembers 中时按其自身记录补入快照
func Derive(person *domain.Person, allMembers []*domain.Person, logger *zap.Logger) *Derived {
	g := NewGraph(withPerson(person, allMembers), logger)
	d, _ := g.Derive(person.ID)
	return d
}

func withPerson(person *domain.Person, allMembers []*domain.Person) []*domain.Person {
	for _, m := range allMembers {
		if m != nil && m.ID == person.ID {
			return allMembers
		}
	}
	// person 放在首位，保证快照以它的 family 为准
	out := make([]*domain.Person, 0, len(allMembers)+1)
	out = append(out, person)
	return append(out, allMembers...)
}

// Derive 计算快照中某成员的全部关系；成员不存在返回 ErrNotFound
func (g *Graph) Derive(id domain.PersonID) (*Derived, error) {
	m, ok := g.members[id]
	if !ok {
		return nil, domain.NotFoundf("person %s not in family snapshot", id)
	}
	start := time.Now()
	defer func() { deriveDuration.Observe(time.Since(start).Seconds()) }()

	d := &Derived{
		PersonID: id,
		Parents:  g.parentsOf(id),
		Spouses:  g.resolve(id, m.Relationships.Spouses),
		Children: g.childrenOf(id),
		Siblings: g.siblingsOf(id),
	}
	d.Grandparents = g.grandparentsOf(d.Parents, id)

	d.Grandchildren = domain.EdgeSet{}
	for _, c := range d.Children {
		for _, gc := range g.childrenOf(c) {
			if gc != id {
				d.Grandchildren.Add(gc)
			}
		}
	}

	d.UnclesAunts = domain.EdgeSet{}
	for _, p := range d.Parents {
		for _, ua := range g.siblingsOf(p) {
			// 父母之一不会是自己的叔伯姑姨；也排除自身
			if ua != id && !d.Parents.Has(ua) {
				d.UnclesAunts.Add(ua)
			}
		}
	}

	d.NephewsNieces = domain.EdgeSet{}
	for _, s := range d.Siblings {
		for _, nn := range g.childrenOf(s) {
			if nn != id && !d.Children.Has(nn) {
				d.NephewsNieces.Add(nn)
			}
		}
	}

	d.Cousins = domain.EdgeSet{}
	for _, ua := range d.UnclesAunts {
		for _, c := range g.childrenOf(ua) {
			if c != id && !d.Siblings.Has(c) {
				d.Cousins.Add(c)
			}
		}
	}
	return d, nil
}

// grandparentsOf parents 的 parents，展开去重
func (g *Graph) grandparentsOf(parents domain.EdgeSet, self domain.PersonID) domain.EdgeSet {
	out := domain.EdgeSet{}
	for _, p := range parents {
		for _, gp := range g.parentsOf(p) {
			if gp != self {
				out.Add(gp)
			}
		}
	}
	return out
}

// DeriveAll 快照中每个成员的关系（整棵树响应使用，O(n²)）
func (g *Graph) DeriveAll() map[domain.PersonID]*Derived {
	out := make(map[domain.PersonID]*Derived, len(g.order))
	for _, id := range g.order {
		d, _ := g.Derive(id)
		out[id] = d
	}
	return out
}

// Ancestors id 的全部祖先（沿 parents 向上，忽略悬空边）
func (g *Graph) Ancestors(id domain.PersonID) domain.EdgeSet {
	out := domain.EdgeSet{}
	queue := g.parentsOf(id)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if !out.Add(p) {
			continue
		}
		queue = append(queue, g.parentsOf(p)...)
	}
	return out
}

// Generations 最长 parent 链上的代数（无成员为 0）
func (g *Graph) Generations() int {
	depth := make(map[domain.PersonID]int, len(g.order))
	var visit func(id domain.PersonID, onPath map[domain.PersonID]bool) int
	visit = func(id domain.PersonID, onPath map[domain.PersonID]bool) int {
		if d, ok := depth[id]; ok {
			return d
		}
		if onPath[id] {
			// 环：数据异常，截断
			return 0
		}
		onPath[id] = true
		best := 0
		for _, p := range g.parentsOf(id) {
			if d := visit(p, onPath); d > best {
				best = d
			}
		}
		delete(onPath, id)
		depth[id] = best + 1
		return best + 1
	}
	longest := 0
	for _, id := range g.order {
		if d := visit(id, map[domain.PersonID]bool{}); d > longest {
			longest = d
		}
	}
	return longest
}
