package domain

import (
	"encoding/json"
	"slices"
	"strings"
)

// PersonID 成员ID（UUID 文本，创建时分配，之后不可变）
type PersonID string

func (id PersonID) String() string { return string(id) }

// Valid 非空即可；格式由存储层保证
func (id PersonID) Valid() bool { return strings.TrimSpace(string(id)) != "" }

// EdgeSet 关系边集合：有序、去重（set 语义，不是 multiset）
type EdgeSet []PersonID

// NewEdgeSet 去重并丢弃空 id
func NewEdgeSet(ids ...PersonID) EdgeSet {
	s := make(EdgeSet, 0, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Has 是否包含 id
func (s EdgeSet) Has(id PersonID) bool {
	return slices.Contains(s, id)
}

// Add 幂等并集；返回是否真的新增
func (s *EdgeSet) Add(id PersonID) bool {
	if !id.Valid() || s.Has(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove 删除 id；返回是否存在
func (s *EdgeSet) Remove(id PersonID) bool {
	i := slices.Index(*s, id)
	if i < 0 {
		return false
	}
	*s = slices.Delete(*s, i, i+1)
	return true
}

// Clone 深拷贝（nil 保持 nil）
func (s EdgeSet) Clone() EdgeSet {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Equal 按集合比较（忽略顺序）
func (s EdgeSet) Equal(other EdgeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for _, id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Strings 转为 []string（用于 pq.Array）
func (s EdgeSet) Strings() []string {
	out := make([]string, len(s))
	for i, id := range s {
		out[i] = string(id)
	}
	return out
}

// EdgeSetFromStrings 从 []string 构造（去重）
func EdgeSetFromStrings(ids []string) EdgeSet {
	s := make(EdgeSet, 0, len(ids))
	for _, id := range ids {
		s.Add(PersonID(id))
	}
	return s
}

// MarshalJSON nil 输出 []，前端不需要区分
func (s EdgeSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]PersonID(s))
}

// Relationships 直接声明并存储的关系边
// children 不在此存储：由其他成员的 parents 推导
type Relationships struct {
	Parents  EdgeSet `json:"parents"`
	Spouses  EdgeSet `json:"spouses"`
	Siblings EdgeSet `json:"siblings"`
}

// Clone 深拷贝
func (r Relationships) Clone() Relationships {
	return Relationships{
		Parents:  r.Parents.Clone(),
		Spouses:  r.Spouses.Clone(),
		Siblings: r.Siblings.Clone(),
	}
}

// ProposedEdges 表单提交的关系边（创建/编辑成员时）
// Children == nil 表示不修改子女关系；非 nil（包括空数组）表示整体替换
type ProposedEdges struct {
	Parents  EdgeSet `json:"parents"`
	Spouses  EdgeSet `json:"spouses"`
	Siblings EdgeSet `json:"siblings"`
	Children EdgeSet `json:"children,omitempty"`
}

// Stored 需要写入成员本身的部分
func (p ProposedEdges) Stored() Relationships {
	return Relationships{
		Parents:  NewEdgeSet(p.Parents...),
		Spouses:  NewEdgeSet(p.Spouses...),
		Siblings: NewEdgeSet(p.Siblings...),
	}
}

// legacyEdges 兼容旧版单数字段（parent/child/spouse/sibling），仅用于迁移读入
type legacyEdges struct {
	Parents  []PersonID  `json:"parents"`
	Spouses  []PersonID  `json:"spouses"`
	Siblings []PersonID  `json:"siblings"`
	Children *[]PersonID `json:"children"`

	Parent  []PersonID  `json:"parent"`
	Spouse  []PersonID  `json:"spouse"`
	Sibling []PersonID  `json:"sibling"`
	Child   *[]PersonID `json:"child"`
}

func (l legacyEdges) merged() (parents, spouses, siblings EdgeSet, children EdgeSet) {
	parents = NewEdgeSet(append(l.Parents, l.Parent...)...)
	spouses = NewEdgeSet(append(l.Spouses, l.Spouse...)...)
	siblings = NewEdgeSet(append(l.Siblings, l.Sibling...)...)
	if l.Children != nil || l.Child != nil {
		children = EdgeSet{}
		if l.Children != nil {
			children = append(children, NewEdgeSet(*l.Children...)...)
		}
		if l.Child != nil {
			for _, id := range *l.Child {
				children.Add(id)
			}
		}
	}
	return parents, spouses, siblings, children
}

// UnmarshalJSON 同时接受复数和旧版单数字段；旧版 child 被忽略（children 为推导字段）
func (r *Relationships) UnmarshalJSON(data []byte) error {
	var l legacyEdges
	if err := json.Unmarshal(data, &l); err != nil {
		return err
	}
	r.Parents, r.Spouses, r.Siblings, _ = l.merged()
	return nil
}

// UnmarshalJSON 同时接受复数和旧版单数字段
func (p *ProposedEdges) UnmarshalJSON(data []byte) error {
	var l legacyEdges
	if err := json.Unmarshal(data, &l); err != nil {
		return err
	}
	p.Parents, p.Spouses, p.Siblings, p.Children = l.merged()
	return nil
}
