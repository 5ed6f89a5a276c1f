package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PermissionRepositoryInterface interface {
	GetPermissionsByRoleCode(ctx context.Context, roleCode string) ([]string, error)
}

type PermissionRepository struct {
	storage *pgxpool.Pool
}

func NewPermissionRepository(storage *pgxpool.Pool) PermissionRepositoryInterface {
	return &PermissionRepository{storage: storage}
}

func (r *PermissionRepository) GetPermissionsByRoleCode(ctx context.Context, roleCode string) ([]string, error) {
	query := `
		SELECT p.code
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN roles r ON r.id = rp.role_id
		WHERE r.code = $1
		ORDER BY p.code`

	rows, err := r.storage.Query(ctx, query, roleCode)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения прав роли %s: %w", roleCode, err)
	}
	defer rows.Close()

	codes := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("ошибка сканирования права: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
