package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrMangoye/Project/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var familyRowColumns = []string{
	"family_id", "name", "description", "motto", "created_by", "access_code", "members", "created_at", "updated_at",
}

func TestPostgresFamilies_GetFamily(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresFamiliesRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM families f`).
		WithArgs("fam-1").
		WillReturnRows(sqlmock.NewRows(familyRowColumns).
			AddRow("fam-1", "Lovelace", "", "Onward", "user-1", "A1B2C3D4E5F6", "{p-1,p-2}", now, now))

	f, err := repo.GetFamily(context.Background(), "fam-1")
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", f.Name)
	assert.Equal(t, "Onward", f.Motto)
	assert.Equal(t, []domain.PersonID{"p-1", "p-2"}, f.Members)
	assert.Equal(t, 2, f.MemberCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFamilies_GetFamily_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresFamiliesRepository(db)

	mock.ExpectQuery(`FROM families f`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(familyRowColumns))

	_, err := repo.GetFamily(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFamilies_GetFamilyByAccessCode_UpperCases(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresFamiliesRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE f.access_code = \$1`).
		WithArgs("ABCDEF012345").
		WillReturnRows(sqlmock.NewRows(familyRowColumns).
			AddRow("fam-1", "Lovelace", "", "", "user-1", "ABCDEF012345", "{}", now, now))

	f, err := repo.GetFamilyByAccessCode(context.Background(), " abcdef012345 ")
	require.NoError(t, err)
	assert.Equal(t, "fam-1", f.ID)
	assert.Empty(t, f.Members)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFamilies_CreateFamily_DuplicateName(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresFamiliesRepository(db)

	mock.ExpectExec(`INSERT INTO families`).
		WithArgs(sqlmock.AnyArg(), "Lovelace", "", "", "user-1", "ABCDEF012345", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "families_name_key"})

	_, err := repo.CreateFamily(context.Background(), &domain.Family{
		Name: "Lovelace", CreatedBy: "user-1", AccessCode: "ABCDEF012345",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFamilies_CreateFamily(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresFamiliesRepository(db)

	mock.ExpectExec(`INSERT INTO families`).
		WithArgs(sqlmock.AnyArg(), "Hopper", "Navy family", "", "user-2", "0011AABBCCDD", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	f := &domain.Family{Name: "Hopper", Description: "Navy family", CreatedBy: "user-2", AccessCode: "0011AABBCCDD"}
	id, err := repo.CreateFamily(context.Background(), f)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, f.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFamilies_UpdateFamily_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresFamiliesRepository(db)

	mock.ExpectExec(`UPDATE families SET`).
		WithArgs("fam-x", "Name", "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFamily(context.Background(), &domain.Family{ID: "fam-x", Name: "Name"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFamilies_AddRemoveMember(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresFamiliesRepository(db)

	mock.ExpectExec(`INSERT INTO family_members`).
		WithArgs("fam-1", "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM family_members`).
		WithArgs("fam-1", "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddMember(context.Background(), "fam-1", "p-1"))
	require.NoError(t, repo.RemoveMember(context.Background(), "fam-1", "p-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFamilies_CreateFamily_BlankName(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresFamiliesRepository(db)

	_, err := repo.CreateFamily(context.Background(), &domain.Family{Name: "   ", AccessCode: "ABCDEF012345"})
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFamilies_DeleteFamily(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewPostgresFamiliesRepository(db)

	mock.ExpectExec(`DELETE FROM families`).
		WithArgs("fam-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM families`).
		WithArgs("fam-x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteFamily(context.Background(), "fam-1"))
	err := repo.DeleteFamily(context.Background(), "fam-x")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
