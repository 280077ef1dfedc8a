package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validatable interface {
	Validate() []FieldError
}

// validate reports fields by their json names.
var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors turns validator output into the API error details.
// field names errors produced by validate.Var, which carry none.
func fieldErrors(err error, field string) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: field, Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if name == "" {
			name = field
		}
		out = append(out, FieldError{Field: name, Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "datetime":
		return "must be an ISO 8601 timestamp"
	case "min", "gte":
		if text {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max", "lte":
		if text {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// Amount accepts both JSON numbers and numeric strings; balances are sent
// back to clients as strings.
type Amount int64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return errors.New("amount must be an integer")
	}
	*a = Amount(n)
	return nil
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *RegisterRequest) Validate() []FieldError {
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	return fieldErrors(validate.Struct(r), "")
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() []FieldError {
	r.Email = strings.TrimSpace(r.Email)
	return fieldErrors(validate.Struct(r), "")
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (r *RefreshRequest) Validate() []FieldError {
	return fieldErrors(validate.Struct(r), "")
}

type TelegramAuthRequest struct {
	InitData string `json:"initData" validate:"required"`
}

func (r *TelegramAuthRequest) Validate() []FieldError {
	return fieldErrors(validate.Struct(r), "")
}

// ClickRequest is a batch of clicks. energy and balance are the client's
// view and only validated; the server state is authoritative.
type ClickRequest struct {
	Clicks    *int64  `json:"clicks" validate:"required,min=1"`
	Timestamp string  `json:"timestamp" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Energy    *int64  `json:"energy" validate:"required,gte=0"`
	Balance   *Amount `json:"balance" validate:"required,gte=0"`

	maxClicks int64
	at        time.Time
}

func (r *ClickRequest) Validate() []FieldError {
	errs := fieldErrors(validate.Struct(r), "")
	// верхняя граница настраивается, поэтому не в теге
	if r.Clicks != nil && *r.Clicks >= 1 {
		if err := validate.Var(*r.Clicks, "max="+strconv.FormatInt(r.maxClicks, 10)); err != nil {
			errs = append(fieldErrors(err, "clicks"), errs...)
		}
	}
	if at, err := time.Parse(time.RFC3339Nano, r.Timestamp); err == nil {
		r.at = at
	}
	return errs
}

type SyncRequest struct {
	Energy  *int64  `json:"energy" validate:"required"`
	Balance *Amount `json:"balance" validate:"required"`
}

func (r *SyncRequest) Validate() []FieldError {
	return fieldErrors(validate.Struct(r), "")
}

type PurchaseUpgradeRequest struct {
	UpgradeID    *int64 `json:"upgradeId" validate:"required,min=1"`
	ExpectedCost *int64 `json:"expectedCost" validate:"required,gte=0"`
}

func (r *PurchaseUpgradeRequest) Validate() []FieldError {
	return fieldErrors(validate.Struct(r), "")
}

type ClaimTaskRequest struct {
	TaskID *int64 `json:"taskId" validate:"required,min=1"`
}

func (r *ClaimTaskRequest) Validate() []FieldError {
	return fieldErrors(validate.Struct(r), "")
}
