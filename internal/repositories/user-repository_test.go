package repositories

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"institute-system/internal/entities"
	"institute-system/migrations"
	"institute-system/pkg/database/postgresql"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/types"
)

// Интеграционные тесты требуют живой БД; адрес берётся из
// TEST_DATABASE_URL, без него тесты пропускаются.
func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан, интеграционные тесты пропущены")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err, "Не удалось подключиться к тестовой БД")
	t.Cleanup(pool.Close)

	require.NoError(t, postgresql.RunMigrations(dsn, migrations.FS),
		"Не удалось применить миграции к тестовой БД")

	cleanupTables(t, pool)
	return pool
}

func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE TABLE equipments, users RESTART IDENTITY CASCADE;`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

func seedInstitute(t *testing.T, pool *pgxpool.Pool) uint64 {
	t.Helper()
	var id uint64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO institutes (name) VALUES ('Тестовый институт')
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`).Scan(&id)
	require.NoError(t, err)
	return id
}

func createTestUser(t *testing.T, repo UserRepositoryInterface, pool *pgxpool.Pool, instituteID uint64, fio, email, roleCode string) uint64 {
	t.Helper()
	var newID uint64
	err := NewTxManager(pool).RunInTransaction(context.Background(), func(tx pgx.Tx) error {
		id, err := repo.CreateUser(context.Background(), tx, &entities.User{
			InstituteID: instituteID,
			Fio:         fio,
			Email:       email,
			Password:    "$2a$10$hash",
			RoleCode:    roleCode,
		})
		newID = id
		return err
	})
	require.NoError(t, err)
	return newID
}

func TestUserRepository_Integration_CreateAndFind(t *testing.T) {
	pool := setupTestPool(t)
	instituteID := seedInstitute(t, pool)
	repo := NewUserRepository(pool, zap.NewNop())

	id := createTestUser(t, repo, pool, instituteID, "Иванов И.И.", "ivanov@test.tj", "librarian")

	user, err := repo.FindUserByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Иванов И.И.", user.Fio)
	assert.Equal(t, "librarian", user.RoleCode)
	assert.Equal(t, "Библиотекарь", user.RoleName)

	byEmail, err := repo.FindUserByEmail(context.Background(), "ivanov@test.tj")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
}

func TestUserRepository_Integration_GetUsersWithSearch(t *testing.T) {
	pool := setupTestPool(t)
	instituteID := seedInstitute(t, pool)
	repo := NewUserRepository(pool, zap.NewNop())

	createTestUser(t, repo, pool, instituteID, "Петров П.П.", "petrov@test.tj", "registrar")
	createTestUser(t, repo, pool, instituteID, "Сидорова С.С.", "sidorova@test.tj", "clerk")

	users, total, err := repo.GetUsers(context.Background(), instituteID,
		types.Filter{Search: "Петров", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total, "счётчик считает всех пользователей института")
	require.Len(t, users, 1)
	assert.Equal(t, "Петров П.П.", users[0].Fio)
}

func TestUserRepository_Integration_SoftDelete(t *testing.T) {
	pool := setupTestPool(t)
	instituteID := seedInstitute(t, pool)
	repo := NewUserRepository(pool, zap.NewNop())

	id := createTestUser(t, repo, pool, instituteID, "Удаляемый У.У.", "deleted@test.tj", "plumber")

	require.NoError(t, repo.SoftDeleteUser(context.Background(), id))

	_, err := repo.FindUserByID(context.Background(), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Повторное удаление — NotFound, строка уже помечена.
	assert.ErrorIs(t, repo.SoftDeleteUser(context.Background(), id), apperrors.ErrNotFound)
}
