package domain

import "time"

// Family 家族领域模型（对应 families + family_members 表）
// Family 只索引成员 id；Person 记录按自身 id 独立存在
type Family struct {
	ID          string     `db:"family_id" json:"id"`                      // UUID, PRIMARY KEY
	Name        string     `db:"name" json:"name"`                         // VARCHAR(100), NOT NULL, UNIQUE
	Description string     `db:"description" json:"description,omitempty"` // VARCHAR(500), nullable
	Motto       string     `db:"motto" json:"motto,omitempty"`             // VARCHAR(100), nullable
	CreatedBy   string     `db:"created_by" json:"createdBy"`              // 创建者 user id
	AccessCode  string     `db:"access_code" json:"accessCode"`            // 12位大写十六进制, UNIQUE
	Members     []PersonID `json:"members"`                                // family_members(family_id, person_id)
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// MemberCount 成员数量
func (f *Family) MemberCount() int {
	if f == nil {
		return 0
	}
	return len(f.Members)
}
