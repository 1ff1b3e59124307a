package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// requestValidate 请求校验（字段规则与前端表单一致）
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	// 错误信息使用 json 字段名
	requestValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = requestValidate.RegisterValidation("notfuture", validateNotFuture)
	_ = requestValidate.RegisterValidation("notblank", validateNotBlank)
}

// validateNotBlank 去掉首尾空白后不能为空
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// trimString 原地去掉首尾空白（nil 表示不修改）
func trimString(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// validateNotFuture 日期（YYYY-MM-DD）不能晚于今天
func validateNotFuture(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return false
	}
	return !t.After(time.Now().UTC())
}

// validateRequest 转换为 domain.ValidationError（只报告第一个字段）
func validateRequest(req any) error {
	err := requestValidate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.TrimPrefix(fe.Namespace(), topLevelName(fe))
		field = strings.TrimPrefix(field, ".")
		return domain.NewValidationError(field, "%s", describeRule(fe))
	}
	return domain.NewValidationError("", "%s", err.Error())
}

func topLevelName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[:i]
	}
	return ""
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "notfuture":
		return "cannot be in the future"
	case "notblank":
		return "must not be blank"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "hexadecimal":
		return "must be hexadecimal"
	default:
		return "failed on " + fe.Tag()
	}
}

// MemberInput 成员基本信息（创建家族 / 加入家族 / 添加成员共用）
type MemberInput struct {
	Name        string          `json:"name" validate:"required,notblank,min=2,max=100"`
	DateOfBirth string          `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02,notfuture"`
	Gender      string          `json:"gender" validate:"omitempty,oneof=male female other unspecified prefer-not-to-say"`
	Occupation  string          `json:"occupation" validate:"max=100"`
	Bio         string          `json:"bio" validate:"max=1000"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Business    domain.Business `json:"business"`
}

// normalize 校验前去掉首尾空白，长度规则针对存储值
func (in *MemberInput) normalize() {
	trimString(&in.Name)
	trimString(&in.Occupation)
	trimString(&in.Email)
}

// toPerson 输入已通过校验
func (in MemberInput) toPerson() *domain.Person {
	p := &domain.Person{
		Name:       strings.TrimSpace(in.Name),
		Gender:     domain.ParseGender(in.Gender),
		Occupation: strings.TrimSpace(in.Occupation),
		Bio:        in.Bio,
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Business:   in.Business,
	}
	if dob, ok := parseDate(in.DateOfBirth); ok {
		p.DateOfBirth = &dob
	}
	return p
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CreateFamilyRequest 创建家族；Self 为创建者本人的成员信息
type CreateFamilyRequest struct {
	ActingUserID string      `json:"-" validate:"required"`
	Name         string      `json:"name" validate:"required,notblank,min=2,max=100"`
	Description  string      `json:"description" validate:"max=500"`
	Motto        string      `json:"motto" validate:"max=100"`
	Self         MemberInput `json:"self"`
}

func (r *CreateFamilyRequest) normalize() {
	trimString(&r.Name)
	trimString(&r.Description)
	trimString(&r.Motto)
	r.Self.normalize()
}

// JoinFamilyRequest 通过邀请码加入家族
type JoinFamilyRequest struct {
	ActingUserID string      `json:"-" validate:"required"`
	AccessCode   string      `json:"accessCode" validate:"required,len=12,hexadecimal"`
	Self         MemberInput `json:"self"`
}

func (r *JoinFamilyRequest) normalize() {
	trimString(&r.AccessCode)
	r.Self.normalize()
}

// UpdateFamilyRequest nil 字段表示不修改
type UpdateFamilyRequest struct {
	FamilyID    string  `json:"-" validate:"required"`
	Name        *string `json:"name" validate:"omitempty,notblank,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Motto       *string `json:"motto" validate:"omitempty,max=100"`
}

func (r *UpdateFamilyRequest) normalize() {
	trimString(r.Name)
	trimString(r.Description)
	trimString(r.Motto)
}

// CreateMemberRequest 添加成员（含关系边）
type CreateMemberRequest struct {
	FamilyID      string               `json:"-" validate:"required"`
	ActingUserID  string               `json:"-"`
	Member        MemberInput          `json:"member"`
	Relationships domain.ProposedEdges `json:"relationships"`
}

func (r *CreateMemberRequest) normalize() { r.Member.normalize() }

// UpdateMemberRequest nil 字段表示不修改；Relationships 非 nil 时整体替换关系边
type UpdateMemberRequest struct {
	PersonID      domain.PersonID       `json:"-" validate:"required"`
	Name          *string               `json:"name" validate:"omitempty,notblank,min=2,max=100"`
	DateOfBirth   *string               `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02,notfuture"`
	Gender        *string               `json:"gender" validate:"omitempty,oneof=male female other unspecified prefer-not-to-say"`
	Occupation    *string               `json:"occupation" validate:"omitempty,max=100"`
	Bio           *string               `json:"bio" validate:"omitempty,max=1000"`
	Email         *string               `json:"email" validate:"omitempty,email"`
	Business      *domain.Business      `json:"business"`
	Relationships *domain.ProposedEdges `json:"relationships"`
}

func (r *UpdateMemberRequest) normalize() {
	trimString(r.Name)
	trimString(r.Occupation)
	trimString(r.Email)
}

// CreateEventRequest 创建家族活动
type CreateEventRequest struct {
	FamilyID       string         `json:"-" validate:"required"`
	ActingUserID   string         `json:"-"`
	Title          string         `json:"title" validate:"required,notblank,max=200"`
	Description    string         `json:"description" validate:"max=1000"`
	Type           string         `json:"type" validate:"required,oneof=birthday anniversary reunion holiday custom"`
	Date           string         `json:"date" validate:"required,datetime=2006-01-02"`
	EndDate        string         `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Location       string         `json:"location" validate:"max=200"`
	RelatedPersons domain.EdgeSet `json:"relatedPersons"`
	Status         string         `json:"status" validate:"omitempty,oneof=upcoming ongoing completed cancelled"`
}

func (r *CreateEventRequest) normalize() {
	trimString(&r.Title)
	trimString(&r.Location)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}
