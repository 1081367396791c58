package ir

import (
	"encoding/hex"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
)

// IRValue is a sealed interface over the values a recorded binding can
// take. Numbers other than integers are carried as tagged strings so the
// canonical form never depends on float formatting.
type IRValue interface {
	irValue()
}

// IRNull is a NULL parameter.
type IRNull struct{}

func (IRNull) irValue() {}

// IRString is a string value.
type IRString string

func (IRString) irValue() {}

// IRInt is an integer value.
type IRInt int64

func (IRInt) irValue() {}

// IRBool is a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray is an ordered list of values.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject maps keys to values. Use SortedKeys for deterministic
// iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// Tags for binding values with no direct JSON form.
const (
	TagFloat = "$float"
	TagTime  = "$time"
	TagBytes = "$bytes"
)

func tagged(tag, text string) IRObject {
	return IRObject{tag: IRString(text)}
}

// FromBinding converts a bound parameter into an IRValue.
func FromBinding(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int8:
		return IRInt(val), nil
	case int16:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint8:
		return IRInt(val), nil
	case uint16:
		return IRInt(val), nil
	case uint32:
		return IRInt(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("unsigned value %d overflows int64", val)
		}
		return IRInt(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("unsigned value %d overflows int64", val)
		}
		return IRInt(val), nil
	case float32:
		return tagged(TagFloat, strconv.FormatFloat(float64(val), 'g', -1, 32)), nil
	case float64:
		return tagged(TagFloat, strconv.FormatFloat(val, 'g', -1, 64)), nil
	case time.Time:
		return tagged(TagTime, val.UTC().Format(time.RFC3339Nano)), nil
	case []byte:
		return tagged(TagBytes, hex.EncodeToString(val)), nil
	case uuid.UUID:
		return IRString(val.String()), nil
	case []any:
		return FromBindings(val)
	case fmt.Stringer:
		return IRString(val.String()), nil
	default:
		return nil, fmt.Errorf("unsupported binding type %T", v)
	}
}

// FromBindings converts an ordered binding list.
func FromBindings(values []any) (IRArray, error) {
	arr := make(IRArray, len(values))
	for i, v := range values {
		iv, err := FromBinding(v)
		if err != nil {
			return nil, fmt.Errorf("bindings[%d]: %w", i, err)
		}
		arr[i] = iv
	}
	return arr, nil
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
