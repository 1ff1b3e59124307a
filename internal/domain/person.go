package domain

import (
	"strings"
	"time"
)

// Gender 性别：仅用于选择关系称谓（Father/Mother），不影响任何业务判断
type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
	GenderUnspecified Gender = "unspecified"
)

// ParseGender 规范化性别输入；未知值（含 prefer-not-to-say）归为 unspecified
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	case "other":
		return GenderOther
	default:
		return GenderUnspecified
	}
}

// Business 成员经营的生意（商业名录使用）
type Business struct {
	Name     string `json:"name,omitempty"`
	Industry string `json:"industry,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

// Person 家族成员领域模型（对应 persons 表）
type Person struct {
	// 主键
	ID PersonID `db:"person_id" json:"id"` // UUID, PRIMARY KEY

	// 所属家族（创建后不可变）
	FamilyID string `db:"family_id" json:"familyId"` // UUID, NOT NULL

	// 基本信息
	Name        string     `db:"name" json:"name"`                       // VARCHAR(100), NOT NULL
	DateOfBirth *time.Time `db:"date_of_birth" json:"dateOfBirth"`       // DATE, nullable（不能是未来日期）
	Gender      Gender     `db:"gender" json:"gender"`                   // VARCHAR(20), NOT NULL, DEFAULT 'unspecified'
	Occupation  string     `db:"occupation" json:"occupation,omitempty"` // VARCHAR(100), nullable
	Bio         string     `db:"bio" json:"bio,omitempty"`               // TEXT, nullable
	Email       string     `db:"email" json:"email,omitempty"`           // VARCHAR(255), nullable
	Business    Business   `db:"business" json:"business"`               // JSONB, nullable

	// 是否为登录用户本人
	IsSelf    bool   `db:"is_self" json:"isSelf"`
	CreatedBy string `db:"created_by" json:"createdBy,omitempty"` // 创建者 user id

	// 直接关系边（parents/spouses/siblings 数组列）
	Relationships Relationships `json:"relationships"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Clone 深拷贝（修改快照前使用）
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Relationships = p.Relationships.Clone()
	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		cp.DateOfBirth = &dob
	}
	return &cp
}

// AgeAt 计算周岁；无生日返回 false
func (p *Person) AgeAt(now time.Time) (int, bool) {
	if p.DateOfBirth == nil {
		return 0, false
	}
	dob := *p.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age, true
}

// PersonSummary 关系列表中使用的成员摘要
type PersonSummary struct {
	ID          PersonID   `json:"id"`
	Name        string     `json:"name"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      Gender     `json:"gender"`
}

// Summary 摘要
func (p *Person) Summary() PersonSummary {
	return PersonSummary{ID: p.ID, Name: p.Name, DateOfBirth: p.DateOfBirth, Gender: p.Gender}
}
