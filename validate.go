package dbx

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// ValidateOptions 校验 options 结构体上的 validate 标签。
// nil、nil 指针和非结构体直接通过，调用方不需要对可选 options 额外判空。
func ValidateOptions(options interface{}) error {
	if options == nil {
		return nil
	}

	rv := reflect.ValueOf(options)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil
	}

	return structValidator.Struct(rv.Interface())
}
