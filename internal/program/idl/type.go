package idl

import (
	"encoding/json"
	"fmt"
)

// Type IDL 中的字段类型，可以是基础类型字符串，也可以是 {"defined"}/{"vec"}/{"option"}/{"array"} 对象
type Type struct {
	Primitive string
	Defined   string
	Vec       *Type
	Option    *Type
	Array     *Type
	ArrayLen  int
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var prim string
	if err := json.Unmarshal(data, &prim); err == nil {
		*t = Type{Primitive: prim}
		return nil
	}

	var obj struct {
		Defined string            `json:"defined"`
		Vec     *Type             `json:"vec"`
		Option  *Type             `json:"option"`
		Array   []json.RawMessage `json:"array"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("idl type %s: %w", string(data), err)
	}
	switch {
	case obj.Defined != "":
		*t = Type{Defined: obj.Defined}
	case obj.Vec != nil:
		*t = Type{Vec: obj.Vec}
	case obj.Option != nil:
		*t = Type{Option: obj.Option}
	case len(obj.Array) == 2:
		var elem Type
		if err := json.Unmarshal(obj.Array[0], &elem); err != nil {
			return err
		}
		var n int
		if err := json.Unmarshal(obj.Array[1], &n); err != nil {
			return err
		}
		*t = Type{Array: &elem, ArrayLen: n}
	default:
		return fmt.Errorf("idl type %s: unsupported shape", string(data))
	}
	return nil
}

func (t Type) MarshalJSON() ([]byte, error) {
	switch {
	case t.Primitive != "":
		return json.Marshal(t.Primitive)
	case t.Defined != "":
		return json.Marshal(map[string]string{"defined": t.Defined})
	case t.Vec != nil:
		return json.Marshal(map[string]*Type{"vec": t.Vec})
	case t.Option != nil:
		return json.Marshal(map[string]*Type{"option": t.Option})
	case t.Array != nil:
		return json.Marshal(map[string][]any{"array": {t.Array, t.ArrayLen}})
	}
	return nil, fmt.Errorf("idl type: empty")
}

func (t Type) String() string {
	switch {
	case t.Primitive != "":
		return t.Primitive
	case t.Defined != "":
		return t.Defined
	case t.Vec != nil:
		return "vec<" + t.Vec.String() + ">"
	case t.Option != nil:
		return "option<" + t.Option.String() + ">"
	case t.Array != nil:
		return fmt.Sprintf("[%s; %d]", t.Array.String(), t.ArrayLen)
	}
	return "<empty>"
}
