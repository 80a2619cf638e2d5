package models

import (
	"encoding/json"
	"strconv"

	"account-audit/core/reconcile"
)

// NotAvailable is rendered in place of a derived field the record does not carry.
const NotAvailable = reconcile.NotAvailable

// OriginArchiver tags records loaded from the canonical archiver store.
const OriginArchiver = "archiver"

// Shape identifies which account layout a payload decoded into.
type Shape int

const (
	// ShapeRegular is an account with a nested account-state object.
	ShapeRegular Shape = iota
	// ShapeSpecial is a network/global account without account state.
	ShapeSpecial
)

// String returns the lower-case shape name.
func (s Shape) String() string {
	switch s {
	case ShapeRegular:
		return "regular"
	case ShapeSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// DataValue is the {dataType, value} wrapper used by every account-state field.
// The value is kept as the stored string; no numeric coercion happens.
type DataValue struct {
	DataType string `json:"dataType"`
	Value    string `json:"value"`
}

// AccountState is the nested account object of a regular account.
type AccountState struct {
	Balance     DataValue `json:"balance"`
	CodeHash    DataValue `json:"codeHash"`
	Nonce       DataValue `json:"nonce"`
	StorageRoot DataValue `json:"storageRoot"`
}

// AccountData is one of RegularAccount or SpecialAccount.
type AccountData interface {
	Shape() Shape
}

// RegularAccount is an externally owned or contract account.
type RegularAccount struct {
	Account     AccountState `json:"account"`
	AccountType int32        `json:"accountType"`
	EthAddress  *string      `json:"ethAddress"`
	Hash        string       `json:"hash"`
	Timestamp   int64        `json:"timestamp"`
}

// Shape implements AccountData.
func (*RegularAccount) Shape() Shape { return ShapeRegular }

// SpecialAccount carries no account state. Keys beyond the known ones are
// kept verbatim in Extra and never interpreted.
type SpecialAccount struct {
	AccountType int32
	Hash        string
	ID          string
	Name        *string
	Nonce       *int64
	Timestamp   int64
	Extra       map[string]json.RawMessage
}

// Shape implements AccountData.
func (*SpecialAccount) Shape() Shape { return ShapeSpecial }

// MarshalJSON flattens Extra next to the known keys, restoring the stored layout.
func (s *SpecialAccount) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+6)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["accountType"] = s.AccountType
	out["hash"] = s.Hash
	out["id"] = s.ID
	out["timestamp"] = s.Timestamp
	// Optional keys are written only when the stored payload carried them
	if s.Name != nil {
		out["name"] = *s.Name
	}
	if s.Nonce != nil {
		out["nonce"] = *s.Nonce
	}
	return json.Marshal(out)
}

// Record is a decoded account as observed in one store.
type Record struct {
	// ID is the account identifier, the join key across stores.
	ID string
	// Origin is OriginArchiver or the name of the node that reported the account.
	Origin string
	// Data is the decoded payload.
	Data AccountData
}

// Shape returns the shape of the decoded payload.
func (r *Record) Shape() Shape {
	return r.Data.Shape()
}

// Source returns the record origin. It satisfies reconcile.Entry.
func (r *Record) Source() string {
	return r.Origin
}

// Balance returns the balance value of a regular account. Special accounts have none.
func (r *Record) Balance() (string, bool) {
	if acc, ok := r.Data.(*RegularAccount); ok {
		return acc.Account.Balance.Value, true
	}
	return "", false
}

// Nonce returns the nonce as a string, or NotAvailable when the account has none.
func (r *Record) Nonce() string {
	switch acc := r.Data.(type) {
	case *RegularAccount:
		return acc.Account.Nonce.Value
	case *SpecialAccount:
		if acc.Nonce == nil {
			return NotAvailable
		}
		return strconv.FormatInt(*acc.Nonce, 10)
	default:
		return NotAvailable
	}
}

// IsComparable reports whether the record takes part in reconciliation.
func (r *Record) IsComparable() bool {
	return r.Data.Shape() == ShapeRegular
}
