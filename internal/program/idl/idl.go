// Package idl 加载 cronos 程序的 Anchor IDL，并提供按 IDL 构造指令、解码账户的通用能力。
//
// IDL 是客户端与链上程序之间的唯一契约：指令名、账户顺序与可写/签名标记、参数顺序与宽度、
// 账户布局以及错误码，全部以嵌入的 cronos.json 为准。
package idl

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed cronos.json
var rawIDL []byte

type IDL struct {
	Version      string        `json:"version"`
	Name         string        `json:"name"`
	Instructions []Instruction `json:"instructions"`
	Accounts     []TypeDef     `json:"accounts"`
	Types        []TypeDef     `json:"types"`
	Errors       []ErrorDef    `json:"errors"`

	instructionIdx map[string]*Instruction
	accountIdx     map[string]*TypeDef
	typeIdx        map[string]*TypeDef
	errorIdx       map[uint32]*ErrorDef
}

type Instruction struct {
	Name     string        `json:"name"`
	Accounts []AccountItem `json:"accounts"`
	Args     []Field       `json:"args"`
}

// AccountItem 指令所需账户及其权限标记
type AccountItem struct {
	Name     string `json:"name"`
	IsMut    bool   `json:"isMut"`
	IsSigner bool   `json:"isSigner"`
}

type Field struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

type TypeDef struct {
	Name string      `json:"name"`
	Type TypeDefBody `json:"type"`
}

type TypeDefBody struct {
	Kind     string    `json:"kind"` // struct / enum
	Fields   []Field   `json:"fields,omitempty"`
	Variants []Variant `json:"variants,omitempty"`
}

type Variant struct {
	Name string `json:"name"`
}

type ErrorDef struct {
	Code uint32 `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

var (
	loadOnce sync.Once
	loaded   *IDL
	loadErr  error
)

// Load 解析嵌入的 IDL（只解析一次）
func Load() (*IDL, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(rawIDL)
	})
	return loaded, loadErr
}

// MustLoad 同 Load，失败直接 panic（IDL 随二进制发布，解析失败属于构建问题）
func MustLoad() *IDL {
	p, err := Load()
	if err != nil {
		panic(err)
	}
	return p
}

// Raw 返回嵌入的 IDL 原文
func Raw() []byte {
	out := make([]byte, len(rawIDL))
	copy(out, rawIDL)
	return out
}

func Parse(data []byte) (*IDL, error) {
	var p IDL
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse idl: %w", err)
	}

	p.instructionIdx = make(map[string]*Instruction, len(p.Instructions))
	for i := range p.Instructions {
		ix := &p.Instructions[i]
		if _, dup := p.instructionIdx[ix.Name]; dup {
			return nil, fmt.Errorf("parse idl: duplicate instruction %q", ix.Name)
		}
		p.instructionIdx[ix.Name] = ix
	}
	p.accountIdx = make(map[string]*TypeDef, len(p.Accounts))
	for i := range p.Accounts {
		p.accountIdx[p.Accounts[i].Name] = &p.Accounts[i]
	}
	p.typeIdx = make(map[string]*TypeDef, len(p.Types))
	for i := range p.Types {
		p.typeIdx[p.Types[i].Name] = &p.Types[i]
	}
	p.errorIdx = make(map[uint32]*ErrorDef, len(p.Errors))
	for i := range p.Errors {
		p.errorIdx[p.Errors[i].Code] = &p.Errors[i]
	}
	return &p, nil
}

func (p *IDL) Instruction(name string) (*Instruction, bool) {
	ix, ok := p.instructionIdx[name]
	return ix, ok
}

func (p *IDL) Account(name string) (*TypeDef, bool) {
	def, ok := p.accountIdx[name]
	return def, ok
}

func (p *IDL) Type(name string) (*TypeDef, bool) {
	def, ok := p.typeIdx[name]
	return def, ok
}

func (p *IDL) ErrorByCode(code uint32) (*ErrorDef, bool) {
	def, ok := p.errorIdx[code]
	return def, ok
}
