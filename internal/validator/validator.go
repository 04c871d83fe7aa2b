// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"pitaka/internal/accounting"
	"pitaka/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("source_pool", validateSourcePool)
		_ = v.RegisterValidation("entry_kind", validateEntryKind)
		_ = v.RegisterValidation("date_only", validateDateOnly)
	}
}

func validateSourcePool(fl validator.FieldLevel) bool {
	return accounting.Pool(fl.Field().String()).Valid()
}

func validateEntryKind(fl validator.FieldLevel) bool {
	return models.EntryKind(fl.Field().String()).Valid()
}

// validateDateOnly accepts calendar dates in YYYY-MM-DD form.
func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}
