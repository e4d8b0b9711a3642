package validate

import (
	"errors"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/baharkarakas/publishing-backend/internal/models"
)

// Handle is the allowed alphabet for logins.
var Handle = validation.Match(regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)).Error("may only contain letters, digits, '_', '.' and '-'")

// Check runs v.Validate and converts rule failures into a
// *models.ValidationError with one entry per field, sorted by field name.
// Errors that are not rule failures are returned unchanged.
func Check(v validation.Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	out := &models.ValidationError{}
	for field, ferr := range errs {
		if ferr == nil {
			continue
		}
		var inner validation.Errors
		if errors.As(ferr, &inner) {
			for sub, serr := range inner {
				out.Fields = append(out.Fields, models.FieldError{Field: field + "." + sub, Msg: serr.Error()})
			}
			continue
		}
		out.Fields = append(out.Fields, models.FieldError{Field: field, Msg: ferr.Error()})
	}
	if len(out.Fields) == 0 {
		return nil
	}
	sort.Slice(out.Fields, func(i, j int) bool { return out.Fields[i].Field < out.Fields[j].Field })
	return out
}
