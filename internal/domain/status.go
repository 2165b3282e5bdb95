package domain

import (
	"database/sql/driver"
	"fmt"
)

// OrderStatus is the order lifecycle state. Rows persist the legacy
// single-character codes ("1".."4"), so the type implements Valuer/Scanner
// and keeps the code mapping at the storage boundary only.
type OrderStatus uint8

const (
	OrderPending OrderStatus = iota + 1
	OrderConfirmed
	OrderCancelled
	OrderCompleted
)

const (
	orderPendingCode   = "1"
	orderConfirmedCode = "2"
	orderCancelledCode = "3"
	orderCompletedCode = "4"
)

// Code returns the wire/storage code for the status.
func (s OrderStatus) Code() string {
	switch s {
	case OrderPending:
		return orderPendingCode
	case OrderConfirmed:
		return orderConfirmedCode
	case OrderCancelled:
		return orderCancelledCode
	case OrderCompleted:
		return orderCompletedCode
	default:
		return ""
	}
}

func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "PENDING"
	case OrderConfirmed:
		return "CONFIRMED"
	case OrderCancelled:
		return "CANCELLED"
	case OrderCompleted:
		return "COMPLETED"
	default:
		return fmt.Sprintf("OrderStatus(%d)", uint8(s))
	}
}

// Label returns the customer-facing description shown in order listings.
func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "Awaiting confirmation"
	case OrderConfirmed:
		return "Confirmed"
	case OrderCancelled:
		return "Cancelled"
	case OrderCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no outgoing transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Valid reports whether s is one of the defined states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderCancelled, OrderCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a transition from s to next is legal.
// Only PENDING orders may move; COMPLETED and CANCELLED are terminal,
// and CONFIRMED has no engine-defined outgoing transition.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return s == OrderPending
}

// ParseOrderStatusCode maps a wire code back to a status.
func ParseOrderStatusCode(code string) (OrderStatus, error) {
	switch code {
	case orderPendingCode:
		return OrderPending, nil
	case orderConfirmedCode:
		return OrderConfirmed, nil
	case orderCancelledCode:
		return OrderCancelled, nil
	case orderCompletedCode:
		return OrderCompleted, nil
	default:
		return 0, fmt.Errorf("unknown order status code %q", code)
	}
}

// MarshalJSON emits the wire code so HTTP payloads match storage.
func (s OrderStatus) MarshalJSON() ([]byte, error) {
	code := s.Code()
	if code == "" {
		return nil, fmt.Errorf("invalid order status %d", uint8(s))
	}
	return []byte(`"` + code + `"`), nil
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	parsed, err := ParseOrderStatusCode(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer.
func (s OrderStatus) Value() (driver.Value, error) {
	code := s.Code()
	if code == "" {
		return nil, fmt.Errorf("invalid order status %d", uint8(s))
	}
	return code, nil
}

// Scan implements sql.Scanner.
func (s *OrderStatus) Scan(src interface{}) error {
	var code string
	switch v := src.(type) {
	case string:
		code = v
	case []byte:
		code = string(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", src)
	}
	parsed, err := ParseOrderStatusCode(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// EntityStatus is the active/inactive flag shared by products and shops,
// stored as "1"/"0".
type EntityStatus string

const (
	EntityActive   EntityStatus = "1"
	EntityInactive EntityStatus = "0"
)

func (s EntityStatus) Active() bool { return s == EntityActive }
