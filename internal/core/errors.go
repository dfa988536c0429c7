package core

import "errors"

var (
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrValidation      = errors.New("validation failed")
	ErrUnknownCategory = errors.New("unknown category")
	ErrRender          = errors.New("render failed")
)

// Operator-facing messages.
const (
	MsgCodeExists   = "الترميز موجود مسبقًا"
	MsgSerialExists = "الرقم التسلسلي/الترميز موجود مسبقًا"
	MsgNotFound     = "غير موجود"
)

// UserError pairs a sentinel with the message shown to the operator.
type UserError struct {
	Err     error
	Message string
}

func (e *UserError) Error() string { return e.Message }
func (e *UserError) Unwrap() error { return e.Err }

// NewUserError wraps err with an operator-facing message.
func NewUserError(err error, msg string) error {
	return &UserError{Err: err, Message: msg}
}
