package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"institute-system/internal/entities"
	db "institute-system/internal/infrastructure/bd"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/types"
)

const userSelectFields = "u.id, u.institute_id, u.fio, u.email, u.password, u.role_id, r.code, r.name, u.created_at, u.updated_at, u.deleted_at"

var userListColumns = map[string]string{
	"fio":        "u.fio",
	"email":      "u.email",
	"role_id":    "u.role_id",
	"created_at": "u.created_at",
}

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, instituteID uint64, filter types.Filter) ([]entities.User, uint64, error)
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
	CreateUser(ctx context.Context, tx pgx.Tx, user *entities.User) (uint64, error)
	UpdateUser(ctx context.Context, tx pgx.Tx, user *entities.User) error
	SoftDeleteUser(ctx context.Context, id uint64) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID, &user.InstituteID, &user.Fio, &user.Email, &user.Password,
		&user.RoleID, &user.RoleCode, &user.RoleName,
		&user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, instituteID uint64, filter types.Filter) ([]entities.User, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").
		From("users u").
		Where(sq.Eq{"u.institute_id": instituteID}).
		Where("u.deleted_at IS NULL").
		PlaceholderFormat(sq.Dollar)

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки count-запроса: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета пользователей: %w", err)
	}

	builder := sq.Select(userSelectFields).
		From("users u").
		Join("roles r ON u.role_id = r.id").
		Where(sq.Eq{"u.institute_id": instituteID}).
		Where("u.deleted_at IS NULL").
		PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		builder = builder.Where(sq.Or{
			sq.ILike{"u.fio": "%" + filter.Search + "%"},
			sq.ILike{"u.email": "%" + filter.Search + "%"},
		})
	}
	builder = db.ApplyListParams(builder, filter, userListColumns)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("u.created_at DESC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка пользователей: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		users = append(users, *user)
	}
	return users, total, nil
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := `SELECT ` + userSelectFields + `
		FROM users u JOIN roles r ON u.role_id = r.id
		WHERE u.id = $1 AND u.deleted_at IS NULL`
	return scanUser(r.storage.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `SELECT ` + userSelectFields + `
		FROM users u JOIN roles r ON u.role_id = r.id
		WHERE u.email = $1 AND u.deleted_at IS NULL`
	return scanUser(r.storage.QueryRow(ctx, query, email))
}

func (r *UserRepository) CreateUser(ctx context.Context, tx pgx.Tx, user *entities.User) (uint64, error) {
	query := `
		INSERT INTO users (institute_id, fio, email, password, role_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, (SELECT id FROM roles WHERE code = $5), NOW(), NOW())
		RETURNING id`

	var newID uint64
	err := tx.QueryRow(ctx, query,
		user.InstituteID, user.Fio, user.Email, user.Password, user.RoleCode,
	).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return newID, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, tx pgx.Tx, user *entities.User) error {
	query := `
		UPDATE users
		SET fio = $1, email = $2, password = $3,
		    role_id = (SELECT id FROM roles WHERE code = $4),
		    updated_at = NOW()
		WHERE id = $5 AND deleted_at IS NULL`

	tag, err := tx.Exec(ctx, query, user.Fio, user.Email, user.Password, user.RoleCode, user.ID)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SoftDeleteUser(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE users SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
