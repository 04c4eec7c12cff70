package core

import "fmt"

// The error types below are the discriminated failure modes of the POS core.
// Adapters match on them with errors.As to pick user-facing messages and HTTP
// statuses — never by string comparison.

// ValidationError reports malformed input caught before any write happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports a missing referenced record.
type NotFoundError struct {
	Kind string // "product", "sale", "purchase order", "supplier", ...
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Ref)
}

// InsufficientStockError aborts a checkout whose requested quantity exceeds
// the stock on hand of one of its cart lines.
type InsufficientStockError struct {
	ProductCode string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s (%s): requested %d, only %d available",
		e.ProductName, e.ProductCode, e.Requested, e.Available)
}

// NegativeStockError rejects an inventory adjustment that would drive stock
// on hand below zero.
type NegativeStockError struct {
	ProductCode string
	OnHand      int
	Delta       int
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("adjustment of %+d would drive stock of %s below zero (on hand %d)",
		e.Delta, e.ProductCode, e.OnHand)
}

// OverReceiptError rejects a purchase order receipt that would exceed the
// ordered quantity on a line. Receipts are cumulative across calls.
type OverReceiptError struct {
	PONumber        string
	LineNumber      int
	Ordered         int
	AlreadyReceived int
	Requested       int
}

func (e *OverReceiptError) Error() string {
	return fmt.Sprintf("PO %s line %d: receiving %d would exceed ordered %d (already received %d)",
		e.PONumber, e.LineNumber, e.Requested, e.Ordered, e.AlreadyReceived)
}

// ConsistencyError is raised when a guarded conditional update matched zero
// rows: a concurrent writer changed the row between read and write. The
// caller should surface it as "stock changed, please retry".
type ConsistencyError struct {
	Msg string
}

func (e *ConsistencyError) Error() string { return e.Msg }
