package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownShape is the cause of a DecodeError for a well-formed object that
// fits neither account layout.
var ErrUnknownShape = errors.New("payload matches no known account shape")

// ErrDuplicateKey is reported when an object repeats a key its layout interprets.
var ErrDuplicateKey = errors.New("duplicate key")

// DecodeError is returned when a payload cannot be decoded into any account shape.
type DecodeError struct {
	// ID is the account identifier the payload was stored under.
	ID string
	// Err is the underlying cause.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode account %s: %v", e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// specialKeys are the top-level keys SpecialAccount interprets; everything else goes to Extra.
var specialKeys = map[string]struct{}{
	"accountType": {},
	"hash":        {},
	"id":          {},
	"name":        {},
	"nonce":       {},
	"timestamp":   {},
}

// Keys interpreted by the regular layout, per object level.
var (
	regularKeys = map[string]struct{}{
		"account":     {},
		"accountType": {},
		"ethAddress":  {},
		"hash":        {},
		"timestamp":   {},
	}
	stateKeys = map[string]struct{}{
		"balance":     {},
		"codeHash":    {},
		"nonce":       {},
		"storageRoot": {},
	}
	valueKeys = map[string]struct{}{
		"dataType": {},
		"value":    {},
	}
)

// Decode parses a stored payload. The regular layout is tried first, then the
// special one; the first layout whose required keys are all present and well
// typed wins. Keys are matched exactly.
func Decode(id, payload string) (*Record, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, &DecodeError{ID: id, Err: err}
	}

	regular, regErr := decodeRegular(json.RawMessage(payload), obj)
	if regErr == nil {
		return &Record{ID: id, Data: regular}, nil
	}

	special, specErr := decodeSpecial(json.RawMessage(payload), obj)
	if specErr == nil {
		return &Record{ID: id, Data: special}, nil
	}

	return nil, &DecodeError{
		ID:  id,
		Err: fmt.Errorf("%w (regular: %v; special: %v)", ErrUnknownShape, regErr, specErr),
	}
}

func decodeRegular(raw json.RawMessage, obj map[string]json.RawMessage) (*RegularAccount, error) {
	acc := &RegularAccount{}

	if err := checkDuplicates(raw, regularKeys); err != nil {
		return nil, err
	}
	var state map[string]json.RawMessage
	if err := field(obj, "account", &state, true); err != nil {
		return nil, err
	}
	if err := checkDuplicates(obj["account"], stateKeys); err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}
	for _, f := range []struct {
		key string
		dst *DataValue
	}{
		{"balance", &acc.Account.Balance},
		{"codeHash", &acc.Account.CodeHash},
		{"nonce", &acc.Account.Nonce},
		{"storageRoot", &acc.Account.StorageRoot},
	} {
		var wrapper map[string]json.RawMessage
		if err := field(state, f.key, &wrapper, true); err != nil {
			return nil, fmt.Errorf("account: %w", err)
		}
		if err := checkDuplicates(state[f.key], valueKeys); err != nil {
			return nil, fmt.Errorf("account.%s: %w", f.key, err)
		}
		if err := field(wrapper, "dataType", &f.dst.DataType, true); err != nil {
			return nil, fmt.Errorf("account.%s: %w", f.key, err)
		}
		if err := field(wrapper, "value", &f.dst.Value, true); err != nil {
			return nil, fmt.Errorf("account.%s: %w", f.key, err)
		}
	}

	if err := field(obj, "accountType", &acc.AccountType, true); err != nil {
		return nil, err
	}
	if err := field(obj, "ethAddress", &acc.EthAddress, false); err != nil {
		return nil, err
	}
	if err := field(obj, "hash", &acc.Hash, true); err != nil {
		return nil, err
	}
	if err := field(obj, "timestamp", &acc.Timestamp, true); err != nil {
		return nil, err
	}
	return acc, nil
}

func decodeSpecial(raw json.RawMessage, obj map[string]json.RawMessage) (*SpecialAccount, error) {
	acc := &SpecialAccount{}

	if err := checkDuplicates(raw, specialKeys); err != nil {
		return nil, err
	}
	if err := field(obj, "accountType", &acc.AccountType, true); err != nil {
		return nil, err
	}
	if err := field(obj, "hash", &acc.Hash, true); err != nil {
		return nil, err
	}
	if err := field(obj, "id", &acc.ID, true); err != nil {
		return nil, err
	}
	if err := field(obj, "name", &acc.Name, false); err != nil {
		return nil, err
	}
	if err := field(obj, "nonce", &acc.Nonce, false); err != nil {
		return nil, err
	}
	if err := field(obj, "timestamp", &acc.Timestamp, true); err != nil {
		return nil, err
	}

	acc.Extra = make(map[string]json.RawMessage)
	for k, v := range obj {
		if _, known := specialKeys[k]; !known {
			acc.Extra[k] = v
		}
	}
	return acc, nil
}

// field decodes obj[key] into dst. A missing or null value is an error only when required.
func field(obj map[string]json.RawMessage, key string, dst any, required bool) error {
	raw, ok := obj[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		if required {
			return fmt.Errorf("missing field %q", key)
		}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	return nil
}

// checkDuplicates fails when the JSON object raw repeats one of the known keys.
// Repeated unknown keys are ignored, like unknown keys themselves. Values are
// skipped, not inspected; a raw value that is not an object is left to field.
func checkDuplicates(raw json.RawMessage, known map[string]struct{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}

	seen := make(map[string]struct{}, len(known))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		if _, interpreted := known[key]; interpreted {
			if _, dup := seen[key]; dup {
				return fmt.Errorf("%w %q", ErrDuplicateKey, key)
			}
			seen[key] = struct{}{}
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return err
		}
	}
	return nil
}
