package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once

	vnPhone     = regexp.MustCompile(`^(\+84|84|0)[1-9][0-9]{8}$`)
	personName  = regexp.MustCompile(`^[\p{L}\s]+$`)
	addressText = regexp.MustCompile(`^[\p{L}0-9\s,.\-]+$`)
)

const passwordSpecials = "@$!%*?&"

// registerValidators installs the custom tags on gin's validator and makes
// field errors use json names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("vnphone", func(fl validator.FieldLevel) bool {
			return vnPhone.MatchString(strings.TrimSpace(fl.Field().String()))
		})
		_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return personName.MatchString(strings.TrimSpace(fl.Field().String()))
		})
		_ = v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
			return addressText.MatchString(strings.TrimSpace(fl.Field().String()))
		})
		_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return strongPassword(fl.Field().String())
		})
	})
}

// strongPassword wants at least one lower, upper, digit and special character.
func strongPassword(s string) bool {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

var fieldMessages = map[string]string{
	"name":             "Tên phải có từ 2-50 ký tự, chỉ gồm chữ cái và khoảng trắng",
	"email":            "Email không hợp lệ",
	"password":         "Mật khẩu phải có từ 8-128 ký tự, gồm chữ thường, chữ hoa, số và ký tự đặc biệt",
	"phone":            "Số điện thoại không hợp lệ. Ví dụ: 0123456789 hoặc +84123456789",
	"address":          "Địa chỉ phải có từ 5-200 ký tự hợp lệ",
	"current_password": "Mật khẩu hiện tại không được để trống",
	"new_password":     "Mật khẩu mới phải có từ 8-128 ký tự, gồm chữ thường, chữ hoa, số và ký tự đặc biệt",
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min", "gte", "gt":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte", "lt":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return fe.Field() + " is invalid"
}

// FlexInt accepts 3 as well as "3", as browser forms often send numbers as strings.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
		if len(data) == 0 {
			*f = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", data)
	}
	*f = FlexInt(n)
	return nil
}
