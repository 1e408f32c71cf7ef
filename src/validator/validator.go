package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
)

// CustomValidator は拡張バリデーション機能を提供
type CustomValidator struct {
	validator       *validator.Validate
	labelPattern    *regexp.Regexp
	spacePattern    *regexp.Regexp
	filenamePattern *regexp.Regexp
}

// ValidationError はバリデーションエラーの詳細情報
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationErrors は複数のバリデーションエラー
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve ValidationErrors) Error() string {
	if len(ve.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", ve.Errors[0].Message)
	}
	return fmt.Sprintf("validation failed: %d errors", len(ve.Errors))
}

// NewCustomValidator creates a new custom validator instance
func NewCustomValidator() *CustomValidator {
	v := validator.New()
	cv := &CustomValidator{
		validator:       v,
		labelPattern:    regexp.MustCompile(`^[\p{L}\p{N}_\-・() 　]+$`), // 文字、数字、記号の一部、空白
		spacePattern:    regexp.MustCompile(`\s+`),
		filenamePattern: regexp.MustCompile(`[/\\]`),
	}

	// カスタムバリデーションルールを登録
	v.RegisterValidation("safe_text", cv.validateSafeText)
	v.RegisterValidation("safe_label", cv.validateSafeLabel)
	v.RegisterValidation("safe_filename", cv.validateSafeFilename)
	v.RegisterValidation("record_id", cv.validateRecordID)

	return cv
}

// Validate validates a struct and returns detailed error information
func (cv *CustomValidator) Validate(s interface{}) error {
	if err := cv.validator.Struct(s); err != nil {
		fieldErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		var validationErrors []ValidationError
		for _, fe := range fieldErrors {
			ve := ValidationError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Value: fe.Value(),
			}

			// カスタムエラーメッセージを生成
			ve.Message = cv.generateErrorMessage(fe)
			validationErrors = append(validationErrors, ve)
		}

		return ValidationErrors{Errors: validationErrors}
	}
	return nil
}

// NormalizeText trims the input and collapses runs of whitespace
func (cv *CustomValidator) NormalizeText(input string) string {
	normalized := strings.TrimSpace(input)
	return cv.spacePattern.ReplaceAllString(normalized, " ")
}

// MaxIDLength is the longest record ID accepted from outside
const MaxIDLength = 64

// ValidateID checks that idStr is usable as an opaque record ID.
// IDs issued here are ULIDs, but records stored by older versions may carry
// any other string, so only emptiness, length and control characters are checked.
func (cv *CustomValidator) ValidateID(idStr string) (string, error) {
	if strings.TrimSpace(idStr) == "" {
		return "", fmt.Errorf("ID is required")
	}
	if utf8.RuneCountInString(idStr) > MaxIDLength {
		return "", fmt.Errorf("ID must be at most %d characters", MaxIDLength)
	}
	for _, r := range idStr {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("invalid ID format")
		}
	}
	return idStr, nil
}

// IsULID reports whether idStr is a canonical ULID
func (cv *CustomValidator) IsULID(idStr string) bool {
	if len(idStr) != ulid.EncodedSize {
		return false
	}
	_, err := ulid.ParseStrict(idStr)
	return err == nil
}

// カスタムバリデーション関数

func (cv *CustomValidator) validateSafeText(fl validator.FieldLevel) bool {
	value := fl.Field().String()

	// タブ、改行、復帰以外の制御文字を拒否
	for _, r := range value {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}

	return true
}

func (cv *CustomValidator) validateSafeLabel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 任意フィールド
	}

	return cv.labelPattern.MatchString(value)
}

func (cv *CustomValidator) validateSafeFilename(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if value == "." || value == ".." || cv.filenamePattern.MatchString(value) {
		return false
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func (cv *CustomValidator) validateRecordID(fl validator.FieldLevel) bool {
	_, err := cv.ValidateID(fl.Field().String())
	return err == nil
}

// generateErrorMessage generates user-friendly error messages
func (cv *CustomValidator) generateErrorMessage(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()
	value := err.Value()

	switch tag {
	case "required":
		return fmt.Sprintf("%s は必須項目です", field)
	case "max":
		return fmt.Sprintf("%s は %s 文字以下で入力してください", field, err.Param())
	case "min":
		return fmt.Sprintf("%s は %s 文字以上で入力してください", field, err.Param())
	case "oneof":
		return fmt.Sprintf("%s は有効な値を選択してください (許可された値: %s)", field, err.Param())
	case "datetime":
		return fmt.Sprintf("%s は YYYY-MM-DD 形式の有効な日付で入力してください", field)
	case "safe_text":
		return fmt.Sprintf("%s に不正な文字が含まれています", field)
	case "safe_label":
		return fmt.Sprintf("%s は文字、数字、ハイフン、アンダースコア、空白のみ使用できます", field)
	case "safe_filename":
		return fmt.Sprintf("%s は有効なファイル名ではありません", field)
	case "record_id":
		return fmt.Sprintf("%s は有効なIDではありません", field)
	default:
		return fmt.Sprintf("%s が無効です (値: %v)", field, value)
	}
}
