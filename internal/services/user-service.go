package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"institute-system/internal/dto"
	"institute-system/internal/entities"
	"institute-system/internal/repositories"
	"institute-system/pkg/constants"
	apperrors "institute-system/pkg/errors"
	"institute-system/pkg/types"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context, instituteID uint64, filter types.Filter) ([]dto.UserDTO, uint64, error)
	FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error)
	CreateUser(ctx context.Context, instituteID uint64, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, id uint64) error
}

type UserService struct {
	userRepo repositories.UserRepositoryInterface
	txMgr    repositories.TxManagerInterface
	logger   *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	txMgr repositories.TxManagerInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{userRepo: userRepo, txMgr: txMgr, logger: logger}
}

func userToDTO(user *entities.User) *dto.UserDTO {
	return &dto.UserDTO{
		ID:          user.ID,
		InstituteID: user.InstituteID,
		Fio:         user.Fio,
		Email:       user.Email,
		RoleCode:    user.RoleCode,
		RoleName:    user.RoleName,
		CreatedAt:   user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func (s *UserService) GetUsers(ctx context.Context, instituteID uint64, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	users, total, err := s.userRepo.GetUsers(ctx, instituteID, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		result = append(result, *userToDTO(&users[i]))
	}
	return result, total, nil
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return userToDTO(user), nil
}

func (s *UserService) CreateUser(ctx context.Context, instituteID uint64, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	if !constants.IsAllowedRole(payload.RoleCode) {
		return nil, apperrors.NewInvalidInputError("неизвестный код роли: %q", payload.RoleCode)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		InstituteID: instituteID,
		Fio:         payload.Fio,
		Email:       payload.Email,
		Password:    string(hashed),
		RoleCode:    payload.RoleCode,
	}

	var newID uint64
	err = s.txMgr.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.userRepo.CreateUser(ctx, tx, user)
		if err != nil {
			return err
		}
		newID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Создан пользователь",
		zap.Uint64("user_id", newID),
		zap.String("role", payload.RoleCode),
	)
	return s.FindUser(ctx, newID)
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Патчим только присланные поля.
	if payload.Fio.Valid {
		user.Fio = payload.Fio.String
	}
	if payload.Email.Valid {
		user.Email = payload.Email.String
	}
	if payload.RoleCode.Valid {
		if !constants.IsAllowedRole(payload.RoleCode.String) {
			return nil, apperrors.NewInvalidInputError("неизвестный код роли: %q", payload.RoleCode.String)
		}
		user.RoleCode = payload.RoleCode.String
	}
	if payload.Password.Valid {
		hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password.String), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	err = s.txMgr.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.userRepo.UpdateUser(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}
	return s.FindUser(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	if err := s.userRepo.SoftDeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Пользователь помечен удалённым", zap.Uint64("user_id", id))
	return nil
}
