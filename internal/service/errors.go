package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/library-api/internal/apperr"
	"github.com/library-api/internal/repository"
)

// storeError translates repository failures into caller-facing errors
func storeError(err error, resource string) error {
	var conflict *repository.ConflictError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &conflict):
		return duplicate(resource, conflict.Column())
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(resource)
	default:
		return err
	}
}

func duplicate(resource, field string) *apperr.AppError {
	return apperr.InvalidField(field,
		fmt.Sprintf("%s with this %s already exists.", resource, strings.ReplaceAll(field, "_", " ")))
}
