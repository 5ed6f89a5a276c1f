package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"institute-system/internal/dto"
	"institute-system/internal/entities"
	"institute-system/internal/repositories"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/types"
)

type EquipmentServiceInterface interface {
	GetEquipments(ctx context.Context, instituteID uint64, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	ImportFromXLSX(ctx context.Context, instituteID uint64, file io.Reader) (*dto.ImportResultDTO, error)
}

type EquipmentService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	txMgr         repositories.TxManagerInterface
	logger        *zap.Logger
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	txMgr repositories.TxManagerInterface,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{equipmentRepo: equipmentRepo, txMgr: txMgr, logger: logger}
}

func (s *EquipmentService) GetEquipments(ctx context.Context, instituteID uint64, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	items, total, err := s.equipmentRepo.GetEquipments(ctx, instituteID, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.EquipmentDTO, 0, len(items))
	for _, e := range items {
		result = append(result, dto.EquipmentDTO{
			ID:          e.ID,
			InstituteID: e.InstituteID,
			Name:        e.Name,
			Category:    e.Category,
			Location:    e.Location,
			Quantity:    e.Quantity,
		})
	}
	return result, total, nil
}

// ImportFromXLSX загружает инвентарь из файла с колонками:
// название, категория, расположение, количество. Первая строка — шапка.
// Весь файл пишется одной транзакцией: либо импортировано всё валидное,
// либо ничего.
func (s *EquipmentService) ImportFromXLSX(ctx context.Context, instituteID uint64, file io.Reader) (*dto.ImportResultDTO, error) {
	book, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("не удалось прочитать XLSX-файл: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewInvalidInputError("в файле нет ни одного листа")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewInvalidInputError("не удалось прочитать лист %q: %v", sheets[0], err)
	}
	if len(rows) <= 1 {
		return nil, apperrors.NewInvalidInputError("файл не содержит строк данных")
	}

	result := &dto.ImportResultDTO{Errors: make([]string, 0)}
	valid := make([]entities.Equipment, 0, len(rows)-1)

	for i, row := range rows[1:] {
		rowNum := i + 2
		item, err := parseEquipmentRow(row, instituteID)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", rowNum, err))
			continue
		}
		valid = append(valid, *item)
	}

	if len(valid) > 0 {
		err = s.txMgr.RunInTransaction(ctx, func(tx pgx.Tx) error {
			for i := range valid {
				if err := s.equipmentRepo.UpsertEquipmentInTx(ctx, tx, &valid[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		result.Imported = len(valid)
	}

	s.logger.Info("Импорт инвентаря завершён",
		zap.Uint64("institute_id", instituteID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func parseEquipmentRow(row []string, instituteID uint64) (*entities.Equipment, error) {
	get := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	name := get(0)
	category := get(1)
	location := get(2)
	quantityRaw := get(3)

	if name == "" {
		return nil, fmt.Errorf("пустое название")
	}
	if category == "" {
		return nil, fmt.Errorf("пустая категория")
	}

	quantity := 1
	if quantityRaw != "" {
		q, err := strconv.Atoi(quantityRaw)
		if err != nil || q <= 0 {
			return nil, fmt.Errorf("некорректное количество %q", quantityRaw)
		}
		quantity = q
	}

	return &entities.Equipment{
		InstituteID: instituteID,
		Name:        name,
		Category:    category,
		Location:    location,
		Quantity:    quantity,
	}, nil
}
