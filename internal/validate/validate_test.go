package validate

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/publishing-backend/internal/models"
)

type payload struct {
	Login string `json:"login"`
	Title string `json:"title"`
}

func (p payload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Login, validation.Required, validation.Length(3, 20), Handle),
		validation.Field(&p.Title, validation.Required),
	)
}

func TestCheck_CollectsFieldsSorted(t *testing.T) {
	err := Check(payload{Login: "a b"})
	require.ErrorIs(t, err, models.ErrValidation)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
	require.Equal(t, "login", verr.Fields[0].Field)
	require.Equal(t, "title", verr.Fields[1].Field)
}

func TestCheck_Valid(t *testing.T) {
	require.NoError(t, Check(payload{Login: "alice_1", Title: "t"}))
}
