package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/accounts-api/internal/domain"
	"github.com/jhoicas/accounts-api/internal/domain/entity"
)

var (
	userCols = []string{"id", "name", "email", "password", "role", "created_at", "updated_at"}
	created  = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	updated  = created.Add(time.Hour)
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock
}

func TestUserRepo_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		errMsg    string
	}{
		{
			name: "inserta y completa ID y timestamps",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("Ann", "a@x.com", "$2a$10$hash", "user").
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), created, created))
			},
		},
		{
			name: "email duplicado",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("Ann", "a@x.com", "$2a$10$hash", "user").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			wantErr: domain.ErrEmailAlreadyExists,
		},
		{
			name: "error de conexión",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("Ann", "a@x.com", "$2a$10$hash", "user").
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			user := &entity.User{Name: "Ann", Email: "a@x.com", PasswordHash: "$2a$10$hash", Role: entity.RoleUser}
			err := NewUserRepository(mock).Create(context.Background(), user)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.NotErrorIs(t, err, domain.ErrEmailAlreadyExists)
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(7), user.ID)
				assert.Equal(t, created, user.CreatedAt)
				assert.Equal(t, created, user.UpdatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepo_GetByID(t *testing.T) {
	t.Run("existente", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(1), "Root", "root@x.com", "$2a$10$h", "admin", created, updated))

		u, err := NewUserRepository(mock).GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, &entity.User{
			ID: 1, Name: "Root", Email: "root@x.com", PasswordHash: "$2a$10$h",
			Role: entity.RoleAdmin, CreatedAt: created, UpdatedAt: updated,
		}, u)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inexistente", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(pgx.ErrNoRows)

		_, err := NewUserRepository(mock).GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepo_GetByEmail(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ghost@x.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnError(errors.New("timeout"))

	repo := NewUserRepository(mock)
	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.GetByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_List(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantLen   int
		wantErr   bool
	}{
		{
			name: "varios usuarios",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users ORDER BY id`).
					WillReturnRows(pgxmock.NewRows(userCols).
						AddRow(int64(1), "Root", "root@x.com", "h", "admin", created, created).
						AddRow(int64(2), "Ann", "a@x.com", "h", "user", created, created))
			},
			wantLen: 2,
		},
		{
			name: "tabla vacía",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users ORDER BY id`).WillReturnRows(pgxmock.NewRows(userCols))
			},
			wantLen: 0,
		},
		{
			name: "error de consulta",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users ORDER BY id`).WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setupMock(mock)

			got, err := NewUserRepository(mock).List(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, got, "lista vacía, no nil")
				assert.Len(t, got, tt.wantLen)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_Update(t *testing.T) {
	name := "Annie"
	email := "bob@x.com"

	t.Run("solo nombre", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs(int64(2), "Annie", nil, nil).
			WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(2), "Annie", "a@x.com", "h", "user", created, updated))

		u, err := NewUserRepository(mock).Update(context.Background(), 2, entity.UserChanges{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Annie", u.Name)
		assert.Equal(t, updated, u.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email tomado", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs(int64(2), nil, "bob@x.com", nil).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		_, err := NewUserRepository(mock).Update(context.Background(), 2, entity.UserChanges{Email: &email})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inexistente", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE users SET`).
			WithArgs(int64(99), nil, nil, nil).
			WillReturnError(pgx.ErrNoRows)

		_, err := NewUserRepository(mock).Update(context.Background(), 99, entity.UserChanges{})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepo_Delete(t *testing.T) {
	tests := []struct {
		name    string
		result  pgconn.CommandTag
		err     error
		wantErr error
	}{
		{name: "borra una fila", result: pgxmock.NewResult("DELETE", 1)},
		{name: "ninguna fila", result: pgxmock.NewResult("DELETE", 0), wantErr: domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
				WithArgs(int64(3)).
				WillReturnResult(tt.result)

			err := NewUserRepository(mock).Delete(context.Background(), 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("error de ejecución", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`DELETE FROM users`).WillReturnError(errors.New("conn reset"))

		err := NewUserRepository(mock).Delete(context.Background(), 3)
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.True(t, isUniqueViolation(errors.Join(errors.New("ctx"), &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.CheckViolation}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
}
