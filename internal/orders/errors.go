package orders

import "fmt"

// ErrorCode classifies a lifecycle or query failure. Every validation
// failure is returned as a typed error; InternalError is the only code that
// indicates a bug or infrastructure fault.
type ErrorCode string

const (
	CodeInvalidRequest         ErrorCode = "INVALID_REQUEST"
	CodeMissingRequiredFields  ErrorCode = "MISSING_REQUIRED_FIELDS"
	CodeInvalidQuantity        ErrorCode = "INVALID_QUANTITY"
	CodeProductNotFound        ErrorCode = "PRODUCT_NOT_FOUND"
	CodeShopNotFound           ErrorCode = "SHOP_NOT_FOUND"
	CodeProductNotAvailable    ErrorCode = "PRODUCT_NOT_AVAILABLE"
	CodeShopNotActive          ErrorCode = "SHOP_NOT_ACTIVE"
	CodeProductNotBelongToShop ErrorCode = "PRODUCT_NOT_BELONG_TO_SHOP"
	CodeInsufficientStock      ErrorCode = "INSUFFICIENT_STOCK"
	CodeOrderNotFound          ErrorCode = "ORDER_NOT_FOUND"
	CodeForbidden              ErrorCode = "FORBIDDEN"
	CodeInvalidOrderStatus     ErrorCode = "INVALID_ORDER_STATUS"
	CodeOrderCannotBeCancelled ErrorCode = "ORDER_CANNOT_BE_CANCELLED"
	CodeInternalError          ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the error code, mapping untyped errors to InternalError.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return CodeInternalError
}
