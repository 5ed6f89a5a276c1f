package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"institute-system/internal/entities"
	db "institute-system/internal/infrastructure/bd"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/types"
)

var equipmentListColumns = map[string]string{
	"name":     "e.name",
	"category": "e.category",
	"location": "e.location",
}

type EquipmentRepositoryInterface interface {
	GetEquipments(ctx context.Context, instituteID uint64, filter types.Filter) ([]entities.Equipment, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	UpsertEquipmentInTx(ctx context.Context, tx pgx.Tx, equipment *entities.Equipment) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage}
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context, instituteID uint64, filter types.Filter) ([]entities.Equipment, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM equipments WHERE institute_id = $1 AND deleted_at IS NULL`,
		instituteID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета инвентаря: %w", err)
	}

	builder := sq.Select("e.id, e.institute_id, e.name, e.category, e.location, e.quantity, e.created_at, e.updated_at, e.deleted_at").
		From("equipments e").
		Where(sq.Eq{"e.institute_id": instituteID}).
		Where("e.deleted_at IS NULL").
		PlaceholderFormat(sq.Dollar)

	if filter.Search != "" {
		builder = builder.Where(sq.ILike{"e.name": "%" + filter.Search + "%"})
	}
	builder = db.ApplyListParams(builder, filter, equipmentListColumns)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("e.name ASC")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса инвентаря: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения инвентаря: %w", err)
	}
	defer rows.Close()

	items := make([]entities.Equipment, 0)
	for rows.Next() {
		var e entities.Equipment
		if err := rows.Scan(&e.ID, &e.InstituteID, &e.Name, &e.Category, &e.Location,
			&e.Quantity, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования инвентаря: %w", err)
		}
		items = append(items, e)
	}
	return items, total, nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	var e entities.Equipment
	err := r.storage.QueryRow(ctx,
		`SELECT id, institute_id, name, category, location, quantity, created_at, updated_at, deleted_at
		 FROM equipments WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&e.ID, &e.InstituteID, &e.Name, &e.Category, &e.Location,
		&e.Quantity, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска инвентаря: %w", err)
	}
	return &e, nil
}

// UpsertEquipmentInTx используется импортом XLSX: повторная загрузка
// файла обновляет количество и расположение, а не плодит дубликаты.
func (r *EquipmentRepository) UpsertEquipmentInTx(ctx context.Context, tx pgx.Tx, equipment *entities.Equipment) error {
	query := `
		INSERT INTO equipments (institute_id, name, category, location, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (institute_id, name, category) DO UPDATE
		SET location = EXCLUDED.location, quantity = EXCLUDED.quantity, updated_at = NOW()`

	if _, err := tx.Exec(ctx, query,
		equipment.InstituteID, equipment.Name, equipment.Category,
		equipment.Location, equipment.Quantity,
	); err != nil {
		return fmt.Errorf("ошибка записи инвентаря '%s': %w", equipment.Name, err)
	}
	return nil
}
