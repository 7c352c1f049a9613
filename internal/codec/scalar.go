package codec

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/strata/internal/version"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// scalar handles a kind whose values cannot be absent.
type scalar[T any, K version.Kind[T]] struct {
	class Class
	enc   func(T) any
	dec   func(any) (T, error)
	parse func(string) (T, error)
}

func (s scalar[T, K]) Kind() types.KindName {
	var k K
	return k.Name()
}

func (s scalar[T, K]) Class() Class { return s.class }

func (s scalar[T, K]) Encode(v any) (any, error) {
	t, ok := v.(T)
	if !ok {
		return nil, mismatch(s.Kind(), v)
	}
	return s.enc(t), nil
}

func (s scalar[T, K]) Decode(src any, absent bool) (any, error) {
	if absent || src == nil {
		return nil, fmt.Errorf("%w: %s cannot be absent", types.ErrInvalidValue, s.Kind())
	}
	t, err := s.dec(src)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Kind(), err)
	}
	return t, nil
}

func (s scalar[T, K]) Parse(str string) (any, error) {
	t, err := s.parse(str)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", types.ErrInvalidValue, s.Kind(), str, err)
	}
	return t, nil
}

func (s scalar[T, K]) Format(v any) string {
	t, ok := v.(T)
	if !ok {
		return ""
	}
	var k K
	return k.Format(t)
}

func (s scalar[T, K]) Absent(any) bool { return false }

func (s scalar[T, K]) AbsentValue() (any, bool) { return nil, false }

// nullable lifts a scalar codec over sql.Null.
type nullable[T any, K version.Kind[T]] struct {
	inner scalar[T, K]
}

func (n nullable[T, K]) Kind() types.KindName { return version.NullableOf(n.inner.Kind()) }

func (n nullable[T, K]) Class() Class { return n.inner.class }

func (n nullable[T, K]) Encode(v any) (any, error) {
	t, ok := v.(sql.Null[T])
	if !ok {
		return nil, mismatch(n.Kind(), v)
	}
	if !t.Valid {
		return nil, nil
	}
	return n.inner.enc(t.V), nil
}

func (n nullable[T, K]) Decode(src any, absent bool) (any, error) {
	if absent || src == nil {
		return sql.Null[T]{}, nil
	}
	t, err := n.inner.dec(src)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", n.Kind(), err)
	}
	return sql.Null[T]{V: t, Valid: true}, nil
}

func (n nullable[T, K]) Parse(str string) (any, error) {
	t, err := n.inner.Parse(str)
	if err != nil {
		return nil, err
	}
	return sql.Null[T]{V: t.(T), Valid: true}, nil
}

func (n nullable[T, K]) Format(v any) string {
	t, ok := v.(sql.Null[T])
	if !ok || !t.Valid {
		return ""
	}
	return n.inner.Format(t.V)
}

func (n nullable[T, K]) Absent(v any) bool {
	t, ok := v.(sql.Null[T])
	return ok && !t.Valid
}

func (n nullable[T, K]) AbsentValue() (any, bool) { return sql.Null[T]{}, true }

func toInt64(src any) (int64, error) {
	switch s := src.(type) {
	case int64:
		return s, nil
	case int:
		return int64(s), nil
	case int32:
		return int64(s), nil
	case bool:
		if s {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return s.Int64()
	case string:
		return strconv.ParseInt(s, 10, 64)
	case []byte:
		return strconv.ParseInt(string(s), 10, 64)
	}
	return 0, fmt.Errorf("unsupported source %T", src)
}

func toFloat64(src any) (float64, error) {
	switch s := src.(type) {
	case float64:
		return s, nil
	case float32:
		return float64(s), nil
	case int64:
		return float64(s), nil
	case json.Number:
		return s.Float64()
	case string:
		return strconv.ParseFloat(s, 64)
	case []byte:
		return strconv.ParseFloat(string(s), 64)
	}
	return 0, fmt.Errorf("unsupported source %T", src)
}

func toString(src any) (string, error) {
	switch s := src.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", fmt.Errorf("unsupported source %T", src)
}

// ranged narrows a stored integer to T, rejecting values out of range.
func ranged[T ~int16 | ~int32 | ~int64 | ~uint8](src any) (T, error) {
	n, err := toInt64(src)
	if err != nil {
		return 0, err
	}
	if int64(T(n)) != n {
		return 0, fmt.Errorf("%d out of range", n)
	}
	return T(n), nil
}

func parseInt[T ~int16 | ~int32 | ~int64](bits int) func(string) (T, error) {
	return func(s string) (T, error) {
		n, err := strconv.ParseInt(s, 10, bits)
		return T(n), err
	}
}

func parseDecimal(s string) (apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return apd.Decimal{}, err
	}
	return *d, nil
}

func parseTime(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) }

func decodeTime(src any) (time.Time, error) {
	if t, ok := src.(time.Time); ok {
		return t, nil
	}
	s, err := toString(src)
	if err != nil {
		return time.Time{}, err
	}
	return parseTime(s)
}

func utc(t time.Time, err error) (time.Time, error) { return t.UTC(), err }

func decodeUUID(src any) (uuid.UUID, error) {
	switch s := src.(type) {
	case string:
		return uuid.Parse(s)
	case []byte:
		if len(s) == 16 {
			return uuid.FromBytes(s)
		}
		return uuid.ParseBytes(s)
	}
	return uuid.Nil, fmt.Errorf("unsupported source %T", src)
}

var (
	booleanCodec = scalar[bool, version.BooleanKind]{
		class: ClassInteger,
		enc: func(v bool) any {
			if v {
				return int64(1)
			}
			return int64(0)
		},
		dec: func(src any) (bool, error) {
			n, err := toInt64(src)
			return n != 0, err
		},
		parse: strconv.ParseBool,
	}
	int16Codec = scalar[int16, version.Int16Kind]{
		class: ClassInteger,
		enc:   func(v int16) any { return int64(v) },
		dec:   ranged[int16],
		parse: parseInt[int16](16),
	}
	int32Codec = scalar[int32, version.Int32Kind]{
		class: ClassInteger,
		enc:   func(v int32) any { return int64(v) },
		dec:   ranged[int32],
		parse: parseInt[int32](32),
	}
	int64Codec = scalar[int64, version.Int64Kind]{
		class: ClassInteger,
		enc:   func(v int64) any { return v },
		dec:   toInt64,
		parse: parseInt[int64](64),
	}
	byteCodec = scalar[uint8, version.ByteKind]{
		class: ClassInteger,
		enc:   func(v uint8) any { return int64(v) },
		dec:   ranged[uint8],
		parse: func(s string) (uint8, error) {
			n, err := strconv.ParseUint(s, 10, 8)
			return uint8(n), err
		},
	}
	singleCodec = scalar[float32, version.SingleKind]{
		class: ClassReal,
		enc:   func(v float32) any { return float64(v) },
		dec: func(src any) (float32, error) {
			f, err := toFloat64(src)
			return float32(f), err
		},
		parse: func(s string) (float32, error) {
			f, err := strconv.ParseFloat(s, 32)
			return float32(f), err
		},
	}
	doubleCodec = scalar[float64, version.DoubleKind]{
		class: ClassReal,
		enc:   func(v float64) any { return v },
		dec:   toFloat64,
		parse: func(s string) (float64, error) { return strconv.ParseFloat(s, 64) },
	}
	decimalCodec = scalar[apd.Decimal, version.DecimalKind]{
		class: ClassText,
		enc:   func(v apd.Decimal) any { return v.String() },
		dec: func(src any) (apd.Decimal, error) {
			s, err := toString(src)
			if err != nil {
				return apd.Decimal{}, err
			}
			return parseDecimal(s)
		},
		parse: parseDecimal,
	}
	dateTimeCodec = scalar[time.Time, version.DateTimeKind]{
		class: ClassText,
		enc:   func(v time.Time) any { return v.UTC().Format(time.RFC3339Nano) },
		dec:   func(src any) (time.Time, error) { return utc(decodeTime(src)) },
		parse: func(s string) (time.Time, error) { return utc(parseTime(s)) },
	}
	dateTimeOffsetCodec = scalar[time.Time, version.DateTimeOffsetKind]{
		class: ClassText,
		enc:   func(v time.Time) any { return v.Format(time.RFC3339Nano) },
		dec:   decodeTime,
		parse: parseTime,
	}
	guidCodec = scalar[uuid.UUID, version.GUIDKind]{
		class: ClassText,
		enc:   func(v uuid.UUID) any { return v.String() },
		dec:   decodeUUID,
		parse: uuid.Parse,
	}
)

func init() {
	register(booleanCodec)
	register(int16Codec)
	register(int32Codec)
	register(int64Codec)
	register(byteCodec)
	register(singleCodec)
	register(doubleCodec)
	register(decimalCodec)
	register(dateTimeCodec)
	register(dateTimeOffsetCodec)
	register(guidCodec)

	register(nullable[bool, version.BooleanKind]{booleanCodec})
	register(nullable[int16, version.Int16Kind]{int16Codec})
	register(nullable[int32, version.Int32Kind]{int32Codec})
	register(nullable[int64, version.Int64Kind]{int64Codec})
	register(nullable[uint8, version.ByteKind]{byteCodec})
	register(nullable[float32, version.SingleKind]{singleCodec})
	register(nullable[float64, version.DoubleKind]{doubleCodec})
	register(nullable[apd.Decimal, version.DecimalKind]{decimalCodec})
	register(nullable[time.Time, version.DateTimeKind]{dateTimeCodec})
	register(nullable[time.Time, version.DateTimeOffsetKind]{dateTimeOffsetCodec})
	register(nullable[uuid.UUID, version.GUIDKind]{guidCodec})

	register(textCodec{})
	register(blobCodec{})
}

// textCodec stores UTF-8 text as-is; absence is a NULL column.
type textCodec struct{}

func (textCodec) Kind() types.KindName { return types.KindText }
func (textCodec) Class() Class         { return ClassText }

func (c textCodec) Encode(v any) (any, error) {
	s, ok := v.(sql.Null[string])
	if !ok {
		return nil, mismatch(c.Kind(), v)
	}
	if !s.Valid {
		return nil, nil
	}
	if !utf8.ValidString(s.V) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", types.ErrInvalidValue)
	}
	return s.V, nil
}

func (textCodec) Decode(src any, absent bool) (any, error) {
	if absent || src == nil {
		return sql.Null[string]{}, nil
	}
	s, err := toString(src)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	return sql.Null[string]{V: s, Valid: true}, nil
}

func (textCodec) Parse(s string) (any, error) { return sql.Null[string]{V: s, Valid: true}, nil }

func (textCodec) Format(v any) string {
	s, _ := v.(sql.Null[string])
	return version.TextKind{}.Format(s)
}

func (textCodec) Absent(v any) bool {
	s, ok := v.(sql.Null[string])
	return ok && !s.Valid
}

func (textCodec) AbsentValue() (any, bool) { return sql.Null[string]{}, true }

// blobCodec stores bytes; a nil slice is absent and a zero-length slice is
// a present, empty blob.
type blobCodec struct{}

func (blobCodec) Kind() types.KindName { return types.KindBlob }
func (blobCodec) Class() Class         { return ClassBlob }

func (c blobCodec) Encode(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, mismatch(c.Kind(), v)
	}
	if b == nil {
		return nil, nil
	}
	return append([]byte{}, b...), nil
}

func (blobCodec) Decode(src any, absent bool) (any, error) {
	if absent {
		return []byte(nil), nil
	}
	switch s := src.(type) {
	case nil:
		return []byte{}, nil
	case []byte:
		return append([]byte{}, s...), nil
	case string:
		return []byte(s), nil
	}
	return nil, fmt.Errorf("decode blob: unsupported source %T", src)
}

func (blobCodec) Parse(s string) (any, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: blob %q: %v", types.ErrInvalidValue, s, err)
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

func (blobCodec) Format(v any) string {
	b, _ := v.([]byte)
	return version.BlobKind{}.Format(b)
}

func (blobCodec) Absent(v any) bool {
	b, ok := v.([]byte)
	return ok && b == nil
}

func (blobCodec) AbsentValue() (any, bool) { return []byte(nil), true }

// NonFinite reports whether an encoded real value is NaN or infinite. SQLite
// turns NaN into NULL, so the SQLite backend stores these as text.
func NonFinite(encoded any) bool {
	f, ok := encoded.(float64)
	return ok && (math.IsNaN(f) || math.IsInf(f, 0))
}
