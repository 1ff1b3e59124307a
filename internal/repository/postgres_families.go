package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresFamiliesRepository 家族Repository实现（families + family_members）
type PostgresFamiliesRepository struct {
	db *sql.DB
}

// NewPostgresFamiliesRepository 创建家族Repository
func NewPostgresFamiliesRepository(db *sql.DB) *PostgresFamiliesRepository {
	return &PostgresFamiliesRepository{db: db}
}

var _ FamiliesRepository = (*PostgresFamiliesRepository)(nil)

const familySelect = `
		SELECT
			f.family_id::text,
			f.name,
			COALESCE(f.description, '') as description,
			COALESCE(f.motto, '') as motto,
			f.created_by,
			f.access_code,
			COALESCE(
				(SELECT array_agg(fm.person_id::text ORDER BY fm.added_at, fm.person_id)
				 FROM family_members fm WHERE fm.family_id = f.family_id),
				'{}'
			) as members,
			f.created_at,
			f.updated_at
		FROM families f`

func scanFamily(row rowScanner) (*domain.Family, error) {
	var f domain.Family
	var members []string
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Description,
		&f.Motto,
		&f.CreatedBy,
		&f.AccessCode,
		pq.Array(&members),
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Members = make([]domain.PersonID, 0, len(members))
	for _, m := range members {
		f.Members = append(f.Members, domain.PersonID(m))
	}
	return &f, nil
}

// GetFamily 根据 family_id 获取家族
func (r *PostgresFamiliesRepository) GetFamily(ctx context.Context, familyID string) (*domain.Family, error) {
	if familyID == "" {
		return nil, fmt.Errorf("family_id is required")
	}
	f, err := scanFamily(r.db.QueryRowContext(ctx, familySelect+` WHERE f.family_id::text = $1`, familyID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFoundf("family %s", familyID)
		}
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return f, nil
}

// GetFamilyByAccessCode 根据邀请码获取家族（大小写不敏感）
func (r *PostgresFamiliesRepository) GetFamilyByAccessCode(ctx context.Context, accessCode string) (*domain.Family, error) {
	code := strings.ToUpper(strings.TrimSpace(accessCode))
	if code == "" {
		return nil, fmt.Errorf("access_code is required")
	}
	f, err := scanFamily(r.db.QueryRowContext(ctx, familySelect+` WHERE f.access_code = $1`, code))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFoundf("family with access code %s", code)
		}
		return nil, fmt.Errorf("failed to get family by access code: %w", err)
	}
	return f, nil
}

// CreateFamily 创建家族
func (r *PostgresFamiliesRepository) CreateFamily(ctx context.Context, family *domain.Family) (string, error) {
	if family == nil || strings.TrimSpace(family.Name) == "" {
		return "", domain.NewValidationError("name", "is required")
	}
	if family.ID == "" {
		family.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO families (family_id, name, description, motto, created_by, access_code, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $7)`,
		family.ID, family.Name, family.Description, family.Motto, family.CreatedBy, family.AccessCode, now,
	)
	if err != nil {
		if isUniqueViolation(err, "families_name_key") {
			return "", domain.NewValidationError("name", "family name %q already exists", family.Name)
		}
		if isUniqueViolation(err, "families_access_code_key") {
			return "", fmt.Errorf("access code collision, retry: %w", err)
		}
		return "", fmt.Errorf("failed to create family: %w", err)
	}
	family.CreatedAt, family.UpdatedAt = now, now
	return family.ID, nil
}

// UpdateFamily 更新名称/描述/格言
func (r *PostgresFamiliesRepository) UpdateFamily(ctx context.Context, family *domain.Family) error {
	if family == nil || family.ID == "" {
		return fmt.Errorf("family_id is required")
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE families SET
			name = $2,
			description = NULLIF($3, ''),
			motto = NULLIF($4, ''),
			updated_at = NOW()
		WHERE family_id::text = $1`,
		family.ID, family.Name, family.Description, family.Motto,
	)
	if err != nil {
		if isUniqueViolation(err, "families_name_key") {
			return domain.NewValidationError("name", "family name %q already exists", family.Name)
		}
		return fmt.Errorf("failed to update family: %w", err)
	}
	return expectOneRow(res, "family", family.ID)
}

// DeleteFamily 删除家族；family_members 通过 ON DELETE CASCADE 删除
func (r *PostgresFamiliesRepository) DeleteFamily(ctx context.Context, familyID string) error {
	if familyID == "" {
		return fmt.Errorf("family_id is required")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM families WHERE family_id::text = $1`, familyID)
	if err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return expectOneRow(res, "family", familyID)
}

// AddMember 幂等添加成员索引
func (r *PostgresFamiliesRepository) AddMember(ctx context.Context, familyID string, personID domain.PersonID) error {
	if familyID == "" || !personID.Valid() {
		return fmt.Errorf("family_id and person_id are required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO family_members (family_id, person_id, added_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (family_id, person_id) DO NOTHING`,
		familyID, string(personID),
	)
	if err != nil {
		return fmt.Errorf("failed to add family member: %w", err)
	}
	return nil
}

// RemoveMember 删除成员索引（不存在时忽略）
func (r *PostgresFamiliesRepository) RemoveMember(ctx context.Context, familyID string, personID domain.PersonID) error {
	if familyID == "" || !personID.Valid() {
		return fmt.Errorf("family_id and person_id are required")
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM family_members WHERE family_id::text = $1 AND person_id::text = $2`,
		familyID, string(personID),
	)
	if err != nil {
		return fmt.Errorf("failed to remove family member: %w", err)
	}
	return nil
}
