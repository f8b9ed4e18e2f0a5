package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report koanf keys (read_timeout) instead of Go field names (ReadTimeout).
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

func validate(cfg *Config) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		first := verrs[0]
		key := strings.TrimPrefix(first.Namespace(), "Config.")
		return fmt.Errorf("invalid config: %s (rule: %s)", key, first.Tag())
	}
	return fmt.Errorf("validate config: %w", err)
}
