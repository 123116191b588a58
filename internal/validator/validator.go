// Package validator はechoのリクエストボディ検証。
package validator

import (
	"errors"
	"reflect"
	"strings"

	"rewards/internal/domain/model"

	playground "github.com/go-playground/validator/v10"
)

// 入力が不正（Fieldはjsonのキー名）
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "invalid " + e.Field
}

// echo.Validatorの実装
type Validator struct {
	v *playground.Validate
}

func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())

	//エラーのフィールド名はjsonタグに合わせる
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("role", func(fl playground.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("catalog_type", func(fl playground.FieldLevel) bool {
		return model.CatalogType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("category", func(fl playground.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("order_status", func(fl playground.FieldLevel) bool {
		return model.OrderStatus(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

// 最初に引っかかったフィールドだけ返す
func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: fieldName(verrs[0])}
	}
	return err
}

// slice要素のエラーは "categories[0]" になるので添字を落とす
func fieldName(fe playground.FieldError) string {
	name, _, _ := strings.Cut(fe.Field(), "[")
	if name == "" {
		return "body"
	}
	return name
}
