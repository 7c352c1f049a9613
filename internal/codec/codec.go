// Package codec maps catalog value kinds to their storage and text forms.
//
// Every kind has one Codec. Backends use Encode and Decode to move values in
// and out of database columns; the CLI and the JSONL journal use Parse and
// Format. Values cross the Codec boundary as the kind's Go type boxed in any
// (int32 for int32, sql.Null[string] for text, and so on).
package codec

import (
	"fmt"

	"github.com/mesh-intelligence/strata/internal/version"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// Class is the storage class a kind's values occupy in a database row.
type Class int

const (
	ClassInteger Class = iota + 1
	ClassReal
	ClassText
	ClassBlob
)

func (c Class) String() string {
	switch c {
	case ClassInteger:
		return "integer"
	case ClassReal:
		return "real"
	case ClassText:
		return "text"
	case ClassBlob:
		return "blob"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Codec converts the values of one kind.
type Codec interface {
	// Kind returns the catalog kind handled by the codec.
	Kind() types.KindName

	// Class returns the storage class of encoded values.
	Class() Class

	// Encode converts v to int64, float64, string or []byte. It returns nil
	// for an absent value.
	Encode(v any) (any, error)

	// Decode converts a stored value back into the kind's Go type. When absent
	// is true src is ignored and the kind's absent value is returned.
	Decode(src any, absent bool) (any, error)

	// Parse reads the text form produced by Format.
	Parse(s string) (any, error)

	// Format renders v in its natural text form, "" when absent.
	Format(v any) string

	// Absent reports whether v is absent.
	Absent(v any) bool

	// AbsentValue returns the absent value of an optional kind. The boolean
	// is false for kinds that cannot express absence.
	AbsentValue() (any, bool)
}

var registry = map[version.KindName]Codec{}

func register(c Codec) { registry[c.Kind()] = c }

// For returns the codec of kind k. Required kinds share the codec of the
// kind they refine.
func For(k types.KindName) (Codec, error) {
	c, ok := registry[k.Underlying()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidKind, k)
	}
	return c, nil
}

func mismatch(k types.KindName, v any) error {
	return fmt.Errorf("%w: %T is not a %s value", types.ErrInvalidValue, v, k)
}
