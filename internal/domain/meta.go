package domain

import (
	"encoding/json"
	"fmt"
)

// MetaKind discriminates the variants of MetaValue.
type MetaKind int

const (
	MetaString MetaKind = iota
	MetaNumber
	MetaList
	MetaMap
)

// MetaValue is a tagged variant (string | number | list | map) used for
// metadata fields whose shape is genuinely data-dependent, such as custom
// integration metadata. Statically-known fields stay concrete.
type MetaValue struct {
	Kind MetaKind
	Str  string
	Num  float64
	List []MetaValue
	Map  map[string]MetaValue
}

func MetaStringValue(s string) MetaValue  { return MetaValue{Kind: MetaString, Str: s} }
func MetaNumberValue(n float64) MetaValue { return MetaValue{Kind: MetaNumber, Num: n} }

// MetaFromAny converts a decoded YAML/JSON value into a MetaValue. Unsupported
// shapes (booleans, nils) are stringified so no supplied metadata is dropped.
func MetaFromAny(v interface{}) MetaValue {
	switch t := v.(type) {
	case string:
		return MetaStringValue(t)
	case float64:
		return MetaNumberValue(t)
	case int:
		return MetaNumberValue(float64(t))
	case int64:
		return MetaNumberValue(float64(t))
	case []interface{}:
		list := make([]MetaValue, 0, len(t))
		for _, item := range t {
			list = append(list, MetaFromAny(item))
		}
		return MetaValue{Kind: MetaList, List: list}
	case map[string]interface{}:
		m := make(map[string]MetaValue, len(t))
		for k, item := range t {
			m[k] = MetaFromAny(item)
		}
		return MetaValue{Kind: MetaMap, Map: m}
	default:
		return MetaStringValue(fmt.Sprintf("%v", v))
	}
}

// MarshalJSON renders the active variant as its natural JSON shape.
func (m MetaValue) MarshalJSON() ([]byte, error) {
	switch m.Kind {
	case MetaString:
		return json.Marshal(m.Str)
	case MetaNumber:
		return json.Marshal(m.Num)
	case MetaList:
		if m.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(m.List)
	case MetaMap:
		if m.Map == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(m.Map)
	default:
		return nil, fmt.Errorf("invalid meta value kind %d", m.Kind)
	}
}

// UnmarshalJSON picks the variant from the JSON token shape.
func (m *MetaValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MetaStringValue(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*m = MetaNumberValue(n)
		return nil
	}
	var list []MetaValue
	if err := json.Unmarshal(data, &list); err == nil {
		*m = MetaValue{Kind: MetaList, List: list}
		return nil
	}
	var mp map[string]MetaValue
	if err := json.Unmarshal(data, &mp); err == nil {
		*m = MetaValue{Kind: MetaMap, Map: mp}
		return nil
	}
	return fmt.Errorf("meta value: cannot unmarshal %s", string(data))
}
