// Package record implements the row encoding used by pages: a SQLite
// inspired varint header followed by a small set of fixed serial
// types. It has no knowledge of pages or files — it only turns a list
// of named fields into bytes and back.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrEncoding means a field could not be encoded (unsupported Go
// value) or a byte stream could not be decoded against the column
// list it was given (corrupt or mismatched header).
var ErrEncoding = errors.New("record: encoding failure")

// Kind identifies which of the supported serial types a Field holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindText
)

// Field is one named value in a row. Only one of the typed accessors
// is meaningful, per Kind.
type Field struct {
	Name  string
	Kind  Kind
	Int   int32
	Float float64
	Text  string
}

// NullField constructs a NULL field.
func NullField(name string) Field { return Field{Name: name, Kind: KindNull} }

// IntField constructs an integer field. Go bools are represented as
// 0/1 integers here — there is no dedicated boolean serial type, so a
// bool written through IntField and read back comes back as an int,
// not a bool. This mirrors the source format's own behavior and is a
// deliberate, documented round-trip loss rather than a bug to fix.
func IntField(name string, v int32) Field { return Field{Name: name, Kind: KindInt, Int: v} }

// FloatField constructs a 64-bit float field.
func FloatField(name string, v float64) Field { return Field{Name: name, Kind: KindFloat, Float: v} }

// TextField constructs a UTF-8 string field.
func TextField(name string, v string) Field { return Field{Name: name, Kind: KindText, Text: v} }

// Serial type codes, matching the SQLite record format this codec is
// modeled on.
const (
	serialNull  = 0
	serialInt   = 4 // always 4 bytes, big-endian, signed
	serialFloat = 7 // always 8 bytes, big-endian IEEE 754
)

// textSerialType returns the odd serial type code for a text value of
// the given encoded byte length.
func textSerialType(byteLen int) int {
	return 13 + byteLen*2
}

// EncodeVarint appends n to buf using the base-128 LEB128 scheme: each
// output byte carries 7 bits of n, high bit set while more bytes
// follow.
func EncodeVarint(buf []byte, n int) []byte {
	for n >= 128 {
		buf = append(buf, byte(n&0x7f)|0x80)
		n >>= 7
	}
	return append(buf, byte(n))
}

// DecodeVarint reads a varint from the front of data, returning the
// decoded value and the number of bytes consumed. It returns
// ErrEncoding if data ends before a terminating byte (high bit clear)
// is found.
func DecodeVarint(data []byte) (int, int, error) {
	result := 0
	shift := uint(0)
	for i, b := range data {
		result += int(b&0x7f) << shift
		if b < 0x80 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("%w: truncated varint", ErrEncoding)
}

// Encode serializes fields into a header (a varint header size
// followed by one varint serial type per field) and a body (the
// concatenated field values), in field order. The header size assumes
// it fits in a single varint byte, i.e. fewer than ~126 columns; a
// row that would overflow that returns ErrEncoding rather than
// silently growing the header varint, since every reader of this
// format shares that same one-byte assumption.
func Encode(fields []Field) ([]byte, error) {
	var headerBody []byte
	var body []byte

	for _, f := range fields {
		switch f.Kind {
		case KindNull:
			headerBody = EncodeVarint(headerBody, serialNull)
		case KindInt:
			headerBody = EncodeVarint(headerBody, serialInt)
			var tmp [4]byte
			binary.BigEndian.PutUint32(tmp[:], uint32(f.Int))
			body = append(body, tmp[:]...)
		case KindFloat:
			headerBody = EncodeVarint(headerBody, serialFloat)
			var tmp [8]byte
			binary.BigEndian.PutUint64(tmp[:], math.Float64bits(f.Float))
			body = append(body, tmp[:]...)
		case KindText:
			encoded := []byte(f.Text)
			headerBody = EncodeVarint(headerBody, textSerialType(len(encoded)))
			body = append(body, encoded...)
		default:
			return nil, fmt.Errorf("%w: field %q has unknown kind %d", ErrEncoding, f.Name, f.Kind)
		}
	}

	headerSize := len(headerBody) + 1
	if headerSize >= 128 {
		return nil, fmt.Errorf("%w: header size %d does not fit in a single varint byte (too many columns)", ErrEncoding, headerSize)
	}

	out := EncodeVarint(nil, headerSize)
	out = append(out, headerBody...)
	out = append(out, body...)
	return out, nil
}

// Decode reconstructs a row from bytes previously produced by Encode,
// naming each value using columns in positional order. Integers are
// decoded as signed 32-bit values: the source format this codec is
// modeled on encodes ints with signed=True but decodes them unsigned,
// a asymmetry this implementation deliberately does not reproduce.
func Decode(data []byte, columns []string) ([]Field, error) {
	headerSize, offset, err := DecodeVarint(data)
	if err != nil {
		return nil, err
	}
	if headerSize > len(data) {
		return nil, fmt.Errorf("%w: header size %d exceeds record length %d", ErrEncoding, headerSize, len(data))
	}

	var serialTypes []int
	cursor := offset
	for cursor < headerSize {
		st, n, err := DecodeVarint(data[cursor:])
		if err != nil {
			return nil, err
		}
		serialTypes = append(serialTypes, st)
		cursor += n
	}
	if len(serialTypes) != len(columns) {
		return nil, fmt.Errorf("%w: record has %d serial types, expected %d columns", ErrEncoding, len(serialTypes), len(columns))
	}

	fields := make([]Field, len(serialTypes))
	body := data[headerSize:]
	bodyCursor := 0

	for i, st := range serialTypes {
		name := columns[i]
		switch {
		case st == serialNull:
			fields[i] = NullField(name)
		case st == serialInt:
			if bodyCursor+4 > len(body) {
				return nil, fmt.Errorf("%w: truncated int field %q", ErrEncoding, name)
			}
			v := int32(binary.BigEndian.Uint32(body[bodyCursor : bodyCursor+4]))
			fields[i] = IntField(name, v)
			bodyCursor += 4
		case st == serialFloat:
			if bodyCursor+8 > len(body) {
				return nil, fmt.Errorf("%w: truncated float field %q", ErrEncoding, name)
			}
			bits := binary.BigEndian.Uint64(body[bodyCursor : bodyCursor+8])
			fields[i] = FloatField(name, math.Float64frombits(bits))
			bodyCursor += 8
		case st >= 13 && st%2 == 1:
			size := (st - 13) / 2
			if bodyCursor+size > len(body) {
				return nil, fmt.Errorf("%w: truncated text field %q", ErrEncoding, name)
			}
			fields[i] = TextField(name, string(body[bodyCursor:bodyCursor+size]))
			bodyCursor += size
		default:
			return nil, fmt.Errorf("%w: unsupported serial type %d for field %q", ErrEncoding, st, name)
		}
	}

	return fields, nil
}
