package relationship

import (
	"encoding/json"

	"github.com/MrMangoye/Project/internal/domain"

	"go.uber.org/zap"
)

// Label 称谓（从 subject 视角看 other 是谁）
type Label string

const (
	LabelFather      Label = "Father"
	LabelMother      Label = "Mother"
	LabelParent      Label = "Parent"
	LabelSon         Label = "Son"
	LabelDaughter    Label = "Daughter"
	LabelChild       Label = "Child"
	LabelBrother     Label = "Brother"
	LabelSister      Label = "Sister"
	LabelSibling     Label = "Sibling"
	LabelHusband     Label = "Husband"
	LabelWife        Label = "Wife"
	LabelSpouse      Label = "Spouse"
	LabelGrandfather Label = "Grandfather"
	LabelGrandmother Label = "Grandmother"
	LabelGrandparent Label = "Grandparent"
)

// Kind 结构关系（不含性别）
type Kind string

const (
	KindNone        Kind = ""
	KindParent      Kind = "parent"
	KindChild       Kind = "child"
	KindSibling     Kind = "sibling"
	KindSpouse      Kind = "spouse"
	KindGrandparent Kind = "grandparent"
)

var gendered = map[Kind][3]Label{
	KindParent:      {LabelFather, LabelMother, LabelParent},
	KindChild:       {LabelSon, LabelDaughter, LabelChild},
	KindSibling:     {LabelBrother, LabelSister, LabelSibling},
	KindSpouse:      {LabelHusband, LabelWife, LabelSpouse},
	KindGrandparent: {LabelGrandfather, LabelGrandmother, LabelGrandparent},
}

// LabelFor 按 other 的性别选择称谓
func LabelFor(kind Kind, g domain.Gender) (Label, bool) {
	labels, ok := gendered[kind]
	if !ok {
		return "", false
	}
	switch g {
	case domain.GenderMale:
		return labels[0], true
	case domain.GenderFemale:
		return labels[1], true
	default:
		return labels[2], true
	}
}

// Kind 称谓对应的结构关系
func (l Label) Kind() Kind {
	for kind, labels := range gendered {
		for _, x := range labels {
			if x == l {
				return kind
			}
		}
	}
	return KindNone
}

// Classify 按固定顺序匹配（第一个命中即返回）：
// parent -> child -> sibling -> spouse -> grandparent -> none
// 顺序是有意的：同一对成员可能同时满足多个结构
func (g *Graph) Classify(subjectID, otherID domain.PersonID) Kind {
	subject, ok := g.members[subjectID]
	if !ok || subjectID == otherID {
		return KindNone
	}
	other, ok := g.members[otherID]
	if !ok {
		return KindNone
	}
	switch {
	case subject.Relationships.Parents.Has(otherID):
		return KindParent
	case other.Relationships.Parents.Has(subjectID):
		return KindChild
	case g.siblingsOf(subjectID).Has(otherID):
		return KindSibling
	case subject.Relationships.Spouses.Has(otherID):
		return KindSpouse
	case g.grandparentsOf(g.parentsOf(subjectID), subjectID).Has(otherID):
		return KindGrandparent
	}
	return KindNone
}

// Label 从 subject 视角计算 other 的称谓；false 表示没有可识别的关系（不是错误）
func (g *Graph) Label(subjectID, otherID domain.PersonID) (Label, bool) {
	labelQueriesTotal.Inc()
	kind := g.Classify(subjectID, otherID)
	if kind == KindNone {
		return "", false
	}
	other := g.members[otherID]
	return LabelFor(kind, other.Gender)
}

// LabelRelationship 单次调用版本；allMembers 为同一家族全部成员
func LabelRelationship(subject, other *domain.Person, allMembers []*domain.Person, logger *zap.Logger) (Label, bool) {
	members := withPerson(other, withPerson(subject, allMembers))
	return NewGraph(members, logger).Label(subject.ID, other.ID)
}

// NullableLabel JSON 中无关系输出 null
type NullableLabel struct {
	Label Label
	Valid bool
}

// NewNullableLabel 包装 Label 的返回值
func NewNullableLabel(l Label, ok bool) NullableLabel {
	return NullableLabel{Label: l, Valid: ok}
}

func (n NullableLabel) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(string(n.Label))
}
