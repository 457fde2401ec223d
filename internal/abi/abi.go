// Package abi encodes contract function calls and decodes their results
// against a JSON interface description, without generated bindings. The
// descriptors mirror the solc output format: an array of function and event
// entries with typed inputs and outputs.
package abi

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"strconv"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Kind distinguishes the descriptor entries we care about
type Kind string

const (
	KindFunction Kind = "function"
	KindEvent    Kind = "event"
)

// TypeDescriptor is one typed slot of a function or event signature
type TypeDescriptor struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
}

// Descriptor is one callable function or emitted event
type Descriptor struct {
	Name    string           `json:"name"`
	Type    Kind             `json:"type"`
	Inputs  []TypeDescriptor `json:"inputs"`
	Outputs []TypeDescriptor `json:"outputs,omitempty"`
}

// Document is an immutable, ordered collection of descriptors loaded from one
// contract's ABI file. Lookup is by (name, kind); names are expected to be
// unique per kind and the first match wins if they are not.
type Document struct {
	entries []Descriptor
}

// LookupError reports a function or event name missing from the document
type LookupError struct {
	Name string
	Kind Kind
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no %s named %q in ABI document", e.Kind, e.Name)
}

// EncodingError reports an argument arity or type mismatch during encoding
type EncodingError struct {
	Function string
	Reason   string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode call to %q: %s", e.Function, e.Reason)
}

// Load reads and parses an ABI document from disk
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ABI file %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a Document from raw ABI JSON
func Parse(raw []byte) (*Document, error) {
	var entries []Descriptor
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse ABI document: %w", err)
	}
	return &Document{entries: entries}, nil
}

// Find returns the first descriptor matching (name, kind)
func (d *Document) Find(name string, kind Kind) (*Descriptor, error) {
	for i := range d.entries {
		if d.entries[i].Name == name && d.entries[i].Type == kind {
			return &d.entries[i], nil
		}
	}
	return nil, &LookupError{Name: name, Kind: kind}
}

// Encode builds the binary call payload for a function: the 4-byte selector
// of the canonical signature followed by the ABI-encoded arguments. Arguments
// are config-sourced strings ( or []string for array parameters ); count and
// type mismatches fail rather than truncate or pad.
func Encode(doc *Document, function string, args []any) ([]byte, error) {
	desc, err := doc.Find(function, KindFunction)
	if err != nil {
		return nil, err
	}
	if len(args) != len(desc.Inputs) {
		return nil, &EncodingError{
			Function: function,
			Reason:   fmt.Sprintf("want %d arguments, got %d", len(desc.Inputs), len(args)),
		}
	}

	ethArgs, err := arguments(desc.Inputs)
	if err != nil {
		return nil, &EncodingError{Function: function, Reason: err.Error()}
	}

	values := make([]any, len(args))
	for i, raw := range args {
		v, err := convert(ethArgs[i].Type, raw)
		if err != nil {
			return nil, &EncodingError{
				Function: function,
				Reason:   fmt.Sprintf("argument %d (%s): %v", i, desc.Inputs[i].Type, err),
			}
		}
		values[i] = v
	}

	packed, err := ethArgs.Pack(values...)
	if err != nil {
		return nil, &EncodingError{Function: function, Reason: err.Error()}
	}
	return append(selector(desc), packed...), nil
}

// DecodeReturn decodes a function's return bytes using its output
// descriptors. Unnamed outputs are keyed by their position.
func DecodeReturn(doc *Document, function string, data []byte) (map[string]any, error) {
	desc, err := doc.Find(function, KindFunction)
	if err != nil {
		return nil, err
	}
	ethArgs, err := arguments(desc.Outputs)
	if err != nil {
		return nil, fmt.Errorf("bad output descriptors for %q: %w", function, err)
	}
	values, err := ethArgs.UnpackValues(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode return of %q: %w", function, err)
	}

	out := make(map[string]any, len(values))
	for i, v := range values {
		out[fieldKey(desc.Outputs[i].Name, i)] = v
	}
	return out, nil
}

// DecodeEvent decodes one emitted log against an event descriptor. The
// caller passes the topics already sliced from index 1; slot 0 is the event
// signature hash, not a field.
func DecodeEvent(doc *Document, event string, data []byte, topics [][]byte) (map[string]any, error) {
	desc, err := doc.Find(event, KindEvent)
	if err != nil {
		return nil, err
	}

	var indexed, plain []TypeDescriptor
	for _, in := range desc.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		} else {
			plain = append(plain, in)
		}
	}
	if len(topics) != len(indexed) {
		return nil, fmt.Errorf("event %q: want %d indexed topics, got %d", event, len(indexed), len(topics))
	}

	out := make(map[string]any, len(desc.Inputs))

	plainArgs, err := arguments(plain)
	if err != nil {
		return nil, fmt.Errorf("bad event descriptors for %q: %w", event, err)
	}
	values, err := plainArgs.UnpackValues(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode event %q data: %w", event, err)
	}
	for i, v := range values {
		out[fieldKey(plain[i].Name, i)] = v
	}

	if len(indexed) > 0 {
		indexedArgs, err := arguments(indexed)
		if err != nil {
			return nil, fmt.Errorf("bad event descriptors for %q: %w", event, err)
		}
		hashes := make([]common.Hash, len(topics))
		for i, t := range topics {
			hashes[i] = common.BytesToHash(t)
		}
		if err := ethabi.ParseTopicsIntoMap(out, indexedArgs, hashes); err != nil {
			return nil, fmt.Errorf("failed to decode event %q topics: %w", event, err)
		}
	}
	return out, nil
}

// Signature returns the canonical signature of a function, e.g.
// "transfer(address,uint256)"
func Signature(desc *Descriptor) string {
	types := make([]string, len(desc.Inputs))
	for i, in := range desc.Inputs {
		types[i] = in.Type
	}
	return fmt.Sprintf("%s(%s)", desc.Name, strings.Join(types, ","))
}

func selector(desc *Descriptor) []byte {
	return crypto.Keccak256([]byte(Signature(desc)))[:4]
}

func fieldKey(name string, i int) string {
	if name != "" {
		return name
	}
	return strconv.Itoa(i)
}

func arguments(descs []TypeDescriptor) (ethabi.Arguments, error) {
	args := make(ethabi.Arguments, 0, len(descs))
	for _, d := range descs {
		t, err := ethabi.NewType(d.Type, "", nil)
		if err != nil {
			return nil, fmt.Errorf("unsupported type %q: %w", d.Type, err)
		}
		args = append(args, ethabi.Argument{Name: d.Name, Type: t, Indexed: d.Indexed})
	}
	return args, nil
}

// convert turns a config-sourced string value into the Go representation the
// packer expects for the given ABI type
func convert(t ethabi.Type, raw any) (any, error) {
	if t.T == ethabi.SliceTy || t.T == ethabi.ArrayTy {
		items, err := listItems(raw)
		if err != nil {
			return nil, err
		}
		if t.T == ethabi.ArrayTy && len(items) != t.Size {
			return nil, fmt.Errorf("want %d elements, got %d", t.Size, len(items))
		}
		out := reflect.MakeSlice(reflect.SliceOf(t.Elem.GetType()), len(items), len(items))
		for i, item := range items {
			v, err := convert(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(v))
		}
		return out.Interface(), nil
	}

	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("want a string value, got %T", raw)
	}

	switch t.T {
	case ethabi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("%q is not a hex address", s)
		}
		return common.HexToAddress(s), nil

	case ethabi.UintTy, ethabi.IntTy:
		n, err := parseBig(s)
		if err != nil {
			return nil, err
		}
		return sizedInt(t, n)

	case ethabi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%q is not a bool", s)
		}
		return b, nil

	case ethabi.StringTy:
		return s, nil

	case ethabi.BytesTy:
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, fmt.Errorf("%q is not hex bytes", s)
		}
		return b, nil

	case ethabi.FixedBytesTy:
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, fmt.Errorf("%q is not hex bytes", s)
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("want %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	}

	return nil, fmt.Errorf("unsupported argument type %s", t.String())
}

func listItems(raw any) ([]any, error) {
	switch v := raw.(type) {
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items, nil
	case []any:
		return v, nil
	default:
		return nil, fmt.Errorf("want a list value, got %T", raw)
	}
}

func parseBig(s string) (*big.Int, error) {
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}

// sizedInt narrows a big.Int to the exact Go type the packer expects for the
// descriptor's bit size
func sizedInt(t ethabi.Type, n *big.Int) (any, error) {
	if t.T == ethabi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s for %s", n, t.String())
	}
	if n.BitLen() > t.Size {
		return nil, fmt.Errorf("value %s overflows %s", n, t.String())
	}
	if t.T == ethabi.UintTy {
		switch t.Size {
		case 8:
			return uint8(n.Uint64()), nil
		case 16:
			return uint16(n.Uint64()), nil
		case 32:
			return uint32(n.Uint64()), nil
		case 64:
			return n.Uint64(), nil
		}
		return n, nil
	}
	switch t.Size {
	case 8:
		return int8(n.Int64()), nil
	case 16:
		return int16(n.Int64()), nil
	case 32:
		return int32(n.Int64()), nil
	case 64:
		return n.Int64(), nil
	}
	return n, nil
}
