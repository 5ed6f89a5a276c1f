package utils

import (
	"context"

	"institute-system/pkg/contextkeys"
	apperrors "institute-system/pkg/errors"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok {
		return 0, apperrors.ErrUserNotFound
	}
	return userID, nil
}

func GetUserRoleFromCtx(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(string)
	if !ok || role == "" {
		return "", apperrors.ErrUserNotFound
	}
	return role, nil
}

func GetUserNameFromCtx(ctx context.Context) (string, error) {
	name, ok := ctx.Value(contextkeys.UserNameKey).(string)
	if !ok {
		return "", apperrors.ErrUserNotFound
	}
	return name, nil
}

func GetInstituteIDFromCtx(ctx context.Context) (uint64, error) {
	id, ok := ctx.Value(contextkeys.InstituteIDKey).(uint64)
	if !ok || id == 0 {
		return 0, apperrors.ErrUserNotFound
	}
	return id, nil
}
