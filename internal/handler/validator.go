package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hitoshi/commcal/internal/model"
)

// requestValidator はリクエストボディの構造検証器。
// structタグの検証結果をフィールド→メッセージの一覧に変換する。
// エラー中のフィールド名はjsonタグの名前を使う。
var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// validateRequest はリクエスト構造体を検証し、違反をValidationErrorsとして返す。
func validateRequest(req interface{}) model.ValidationErrors {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return model.ValidationErrors{{Field: "request", Message: "invalid request"}}
	}

	result := make(model.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		result = append(result, model.FieldError{
			Field:   fe.Field(),
			Message: tagMessage(fe),
		})
	}
	return result
}

// tagMessage は検証タグごとのユーザー向けメッセージを返す。
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "oneof":
		return "is not included in the list"
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fe.Param())
	default:
		return "is invalid"
	}
}
