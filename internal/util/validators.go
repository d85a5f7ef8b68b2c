package util

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var tagNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,31}$`)

// ValidateFutureDate 验证日期是否在未来
func ValidateFutureDate(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return date.After(time.Now())
}

// ValidateTagName 验证规范化后的标签名：小写字母、数字和连字符
func ValidateTagName(fl validator.FieldLevel) bool {
	return tagNamePattern.MatchString(fl.Field().String())
}
