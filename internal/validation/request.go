package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"leadlens/internal/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// AggregateQuery is the query of an ad hoc value count over one column
type AggregateQuery struct {
	Column string `validate:"required,max=128"`
	Subset string `validate:"omitempty,oneof=all active inactive bounced"`
	Top    int    `validate:"gte=0,lte=500"`
}

// RegionsRequest names the region rules to apply; empty applies all of them
type RegionsRequest struct {
	Labels []string `json:"labels" validate:"omitempty,max=32,dive,required,max=64"`
}

// Struct validates v against its validate tags and returns a VALIDATION
// error naming every failing field
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.NewAppValidationError(err.Error())
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed '%s'", strings.ToLower(fe.Field()), fe.Tag()))
	}
	appErr := errors.NewAppValidationError("invalid request: " + strings.Join(fields, ", "))
	for _, fe := range verrs {
		appErr.WithContext(strings.ToLower(fe.Field()), fe.Tag())
	}
	return appErr
}
