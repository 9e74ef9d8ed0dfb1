package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var errInvalidPayload = errors.New("invalid payload")

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodePayload unmarshals a command payload and validates its tags.
func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: payload required", errInvalidPayload)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
				return fe.Field() + ":" + fe.Tag()
			})
			return fmt.Errorf("%w: %v", errInvalidPayload, fields)
		}
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	return nil
}

func validateChannelId(channelId string) error {
	if err := validate.Var(channelId, "required,max=128"); err != nil {
		return errors.New("channelId required")
	}
	return nil
}
