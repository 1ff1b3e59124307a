package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresPersonsRepository 成员Repository实现
// 关系边存为 TEXT[]（parents/spouses/siblings），children 不落库
type PostgresPersonsRepository struct {
	db *sql.DB
}

// NewPostgresPersonsRepository 创建成员Repository
func NewPostgresPersonsRepository(db *sql.DB) *PostgresPersonsRepository {
	return &PostgresPersonsRepository{db: db}
}

// 确保实现了接口
var _ PersonsRepository = (*PostgresPersonsRepository)(nil)

const personColumns = `
			person_id::text,
			family_id::text,
			name,
			date_of_birth,
			gender,
			COALESCE(occupation, '') as occupation,
			COALESCE(bio, '') as bio,
			COALESCE(email, '') as email,
			COALESCE(business, '{}'::jsonb)::text as business,
			is_self,
			COALESCE(created_by, '') as created_by,
			parents,
			spouses,
			siblings,
			created_at,
			updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*domain.Person, error) {
	var p domain.Person
	var id, gender, business string
	var dob sql.NullTime
	var parents, spouses, siblings []string

	err := row.Scan(
		&id,
		&p.FamilyID,
		&p.Name,
		&dob,
		&gender,
		&p.Occupation,
		&p.Bio,
		&p.Email,
		&business,
		&p.IsSelf,
		&p.CreatedBy,
		pq.Array(&parents),
		pq.Array(&spouses),
		pq.Array(&siblings),
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ID = domain.PersonID(id)
	p.Gender = domain.ParseGender(gender)
	if dob.Valid {
		t := dob.Time
		p.DateOfBirth = &t
	}
	if business != "" {
		if err := json.Unmarshal([]byte(business), &p.Business); err != nil {
			return nil, fmt.Errorf("failed to decode business of person %s: %w", id, err)
		}
	}
	p.Relationships = domain.Relationships{
		Parents:  domain.EdgeSetFromStrings(parents),
		Spouses:  domain.EdgeSetFromStrings(spouses),
		Siblings: domain.EdgeSetFromStrings(siblings),
	}
	return &p, nil
}

// GetPerson 根据 person_id 获取成员
func (r *PostgresPersonsRepository) GetPerson(ctx context.Context, personID domain.PersonID) (*domain.Person, error) {
	if !personID.Valid() {
		return nil, fmt.Errorf("person_id is required")
	}
	query := `SELECT ` + personColumns + `
		FROM persons
		WHERE person_id::text = $1
	`
	p, err := scanPerson(r.db.QueryRowContext(ctx, query, string(personID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NotFoundf("person %s", personID)
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

// ListByFamily 家族全部成员（无顺序保证，这里按创建时间输出便于阅读）
func (r *PostgresPersonsRepository) ListByFamily(ctx context.Context, familyID string) ([]*domain.Person, error) {
	if familyID == "" {
		return nil, fmt.Errorf("family_id is required")
	}
	query := `SELECT ` + personColumns + `
		FROM persons
		WHERE family_id::text = $1
		ORDER BY created_at, person_id
	`
	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	defer rows.Close()

	out := []*domain.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persons: %w", err)
	}
	return out, nil
}

// CreatePerson 创建成员（含成员自身的直接关系边）
func (r *PostgresPersonsRepository) CreatePerson(ctx context.Context, person *domain.Person) (domain.PersonID, error) {
	if person == nil || person.FamilyID == "" {
		return "", fmt.Errorf("family_id is required")
	}
	if !person.ID.Valid() {
		person.ID = domain.PersonID(uuid.NewString())
	}
	business, err := json.Marshal(person.Business)
	if err != nil {
		return "", fmt.Errorf("failed to encode business: %w", err)
	}
	now := time.Now().UTC()

	var dob any
	if person.DateOfBirth != nil {
		dob = *person.DateOfBirth
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO persons (
			person_id, family_id, name, date_of_birth, gender,
			occupation, bio, email, business, is_self, created_by,
			parents, spouses, siblings, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9::jsonb, $10, NULLIF($11, ''),
			$12, $13, $14, $15, $15
		)`,
		string(person.ID), person.FamilyID, person.Name, dob, string(person.Gender),
		person.Occupation, person.Bio, person.Email, string(business), person.IsSelf, person.CreatedBy,
		pq.Array(person.Relationships.Parents.Strings()),
		pq.Array(person.Relationships.Spouses.Strings()),
		pq.Array(person.Relationships.Siblings.Strings()),
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create person: %w", err)
	}
	person.CreatedAt, person.UpdatedAt = now, now
	return person.ID, nil
}

// UpdatePerson 更新基本信息（不含关系边，关系边走 SaveRelationships）
func (r *PostgresPersonsRepository) UpdatePerson(ctx context.Context, person *domain.Person) error {
	if person == nil || !person.ID.Valid() {
		return fmt.Errorf("person_id is required")
	}
	business, err := json.Marshal(person.Business)
	if err != nil {
		return fmt.Errorf("failed to encode business: %w", err)
	}
	var dob any
	if person.DateOfBirth != nil {
		dob = *person.DateOfBirth
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE persons SET
			name = $2,
			date_of_birth = $3,
			gender = $4,
			occupation = NULLIF($5, ''),
			bio = NULLIF($6, ''),
			email = NULLIF($7, ''),
			business = $8::jsonb,
			updated_at = NOW()
		WHERE person_id::text = $1`,
		string(person.ID), person.Name, dob, string(person.Gender),
		person.Occupation, person.Bio, person.Email, string(business),
	)
	if err != nil {
		return fmt.Errorf("failed to update person: %w", err)
	}
	return expectOneRow(res, "person", string(person.ID))
}

// SaveRelationships 在一个事务内整体替换多名成员的关系边
// 任一成员不存在（或不属于 familyID）则回滚，不留下部分写入
func (r *PostgresPersonsRepository) SaveRelationships(ctx context.Context, familyID string, updates []RelationshipUpdate) error {
	if familyID == "" {
		return fmt.Errorf("family_id is required")
	}
	if len(updates) == 0 {
		return nil
	}
	SortUpdates(updates)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		res, err := tx.ExecContext(ctx, `
			UPDATE persons SET
				parents = $3,
				spouses = $4,
				siblings = $5,
				updated_at = NOW()
			WHERE family_id::text = $1 AND person_id::text = $2`,
			familyID, string(u.PersonID),
			pq.Array(u.Relationships.Parents.Strings()),
			pq.Array(u.Relationships.Spouses.Strings()),
			pq.Array(u.Relationships.Siblings.Strings()),
		)
		if err != nil {
			return fmt.Errorf("failed to save relationships of %s: %w", u.PersonID, err)
		}
		if err := expectOneRow(res, "person", string(u.PersonID)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit relationships: %w", err)
	}
	return nil
}

// DeletePerson 删除成员记录（family_members 索引由 FamiliesRepository.RemoveMember 维护）
func (r *PostgresPersonsRepository) DeletePerson(ctx context.Context, personID domain.PersonID) error {
	if !personID.Valid() {
		return fmt.Errorf("person_id is required")
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE person_id::text = $1`, string(personID))
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return expectOneRow(res, "person", string(personID))
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NotFoundf("%s %s", kind, id)
	}
	return nil
}
