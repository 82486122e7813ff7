package idl

import (
	"fmt"
	"reflect"
)

// CheckValue 校验 Go 值的类型是否能按 IDL 类型进行 borsh 编码
func (p *IDL) CheckValue(t Type, v any) error {
	if v == nil {
		return fmt.Errorf("nil value for %s", t)
	}
	return p.checkType(t, reflect.TypeOf(v), 0)
}

// CheckStruct 校验 Go 结构体与 IDL 中的账户/自定义类型字段一一对应（数量、顺序、宽度）
func (p *IDL) CheckStruct(defName string, v any) error {
	def, ok := p.Account(defName)
	if !ok {
		def, ok = p.Type(defName)
	}
	if !ok {
		return fmt.Errorf("unknown idl type %q", defName)
	}
	rt := reflect.TypeOf(v)
	for rt != nil && rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return p.checkDef(def, rt, 0)
}

const maxTypeDepth = 16

func (p *IDL) checkType(t Type, rt reflect.Type, depth int) error {
	if depth > maxTypeDepth {
		return fmt.Errorf("type nesting too deep at %s", t)
	}
	switch {
	case t.Primitive != "":
		return checkPrimitive(t.Primitive, rt)
	case t.Defined != "":
		def, ok := p.Type(t.Defined)
		if !ok {
			return fmt.Errorf("unknown defined type %q", t.Defined)
		}
		return p.checkDef(def, rt, depth+1)
	case t.Vec != nil:
		if rt.Kind() != reflect.Slice {
			return fmt.Errorf("want slice for %s, got %s", t, rt)
		}
		return p.checkType(*t.Vec, rt.Elem(), depth+1)
	case t.Option != nil:
		if rt.Kind() != reflect.Ptr {
			return fmt.Errorf("want pointer for %s, got %s", t, rt)
		}
		return p.checkType(*t.Option, rt.Elem(), depth+1)
	case t.Array != nil:
		if rt.Kind() != reflect.Array || rt.Len() != t.ArrayLen {
			return fmt.Errorf("want array of %d for %s, got %s", t.ArrayLen, t, rt)
		}
		return p.checkType(*t.Array, rt.Elem(), depth+1)
	}
	return fmt.Errorf("empty idl type")
}

func (p *IDL) checkDef(def *TypeDef, rt reflect.Type, depth int) error {
	switch def.Type.Kind {
	case "enum":
		// 无数据枚举按 u8 编码
		if rt.Kind() != reflect.Uint8 {
			return fmt.Errorf("want u8 enum for %s, got %s", def.Name, rt)
		}
		return nil
	case "struct":
		if rt.Kind() != reflect.Struct {
			return fmt.Errorf("want struct for %s, got %s", def.Name, rt)
		}
		if rt.NumField() != len(def.Type.Fields) {
			return fmt.Errorf("%s: field count mismatch: go=%d idl=%d", def.Name, rt.NumField(), len(def.Type.Fields))
		}
		for i, f := range def.Type.Fields {
			if err := p.checkType(f.Type, rt.Field(i).Type, depth+1); err != nil {
				return fmt.Errorf("%s.%s: %w", def.Name, f.Name, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%s: unsupported kind %q", def.Name, def.Type.Kind)
}

func checkPrimitive(name string, rt reflect.Type) error {
	var ok bool
	switch name {
	case "bool":
		ok = rt.Kind() == reflect.Bool
	case "u8":
		ok = rt.Kind() == reflect.Uint8
	case "i8":
		ok = rt.Kind() == reflect.Int8
	case "u16":
		ok = rt.Kind() == reflect.Uint16
	case "i16":
		ok = rt.Kind() == reflect.Int16
	case "u32":
		ok = rt.Kind() == reflect.Uint32
	case "i32":
		ok = rt.Kind() == reflect.Int32
	case "u64":
		ok = rt.Kind() == reflect.Uint64
	case "i64":
		ok = rt.Kind() == reflect.Int64
	case "u128", "i128":
		ok = isByteArray(rt, 16)
	case "publicKey":
		ok = isByteArray(rt, 32)
	case "bytes":
		ok = rt.Kind() == reflect.Slice && rt.Elem().Kind() == reflect.Uint8
	case "string":
		ok = rt.Kind() == reflect.String
	default:
		return fmt.Errorf("unsupported primitive %q", name)
	}
	if !ok {
		return fmt.Errorf("type %s is not compatible with %s", rt, name)
	}
	return nil
}

func isByteArray(rt reflect.Type, n int) bool {
	return rt.Kind() == reflect.Array && rt.Len() == n && rt.Elem().Kind() == reflect.Uint8
}
