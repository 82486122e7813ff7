package idl

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

var (
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrUnknownAccount     = errors.New("unknown account type")
	ErrMissingAccount     = errors.New("missing account")
	ErrArgCount           = errors.New("argument count mismatch")
	ErrDiscriminator      = errors.New("account discriminator mismatch")
)

// EncodeInstructionData 按 IDL 参数顺序编码：discriminator(8) + borsh(arg0) + borsh(arg1) ...
func (p *IDL) EncodeInstructionData(name string, args ...any) ([]byte, error) {
	ix, ok := p.Instruction(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstruction, name)
	}
	if len(args) != len(ix.Args) {
		return nil, fmt.Errorf("%w: %s want %d got %d", ErrArgCount, name, len(ix.Args), len(args))
	}

	disc := InstructionDiscriminator(name)
	buf := bytes.NewBuffer(make([]byte, 0, 64))
	buf.Write(disc[:])
	for i, field := range ix.Args {
		if err := p.CheckValue(field.Type, args[i]); err != nil {
			return nil, fmt.Errorf("%s arg %q: %w", name, field.Name, err)
		}
		b, err := borsh.Serialize(args[i])
		if err != nil {
			return nil, fmt.Errorf("%s arg %q: borsh serialize: %w", name, field.Name, err)
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

// AccountMetas 按 IDL 顺序展开账户表，缺失任何一个账户直接报错
func (p *IDL) AccountMetas(name string, accounts map[string]common.PublicKey) ([]types.AccountMeta, error) {
	ix, ok := p.Instruction(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstruction, name)
	}
	metas := make([]types.AccountMeta, 0, len(ix.Accounts))
	for _, acc := range ix.Accounts {
		key, ok := accounts[acc.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrMissingAccount, name, acc.Name)
		}
		metas = append(metas, types.AccountMeta{
			PubKey:     key,
			IsSigner:   acc.IsSigner,
			IsWritable: acc.IsMut,
		})
	}
	return metas, nil
}

// BuildInstruction 通用指令构造：schema + 参数 + 账户表 -> Instruction
func (p *IDL) BuildInstruction(
	programID common.PublicKey,
	name string,
	args []any,
	accounts map[string]common.PublicKey,
) (types.Instruction, error) {
	metas, err := p.AccountMetas(name, accounts)
	if err != nil {
		return types.Instruction{}, err
	}
	data, err := p.EncodeInstructionData(name, args...)
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: programID,
		Accounts:  metas,
		Data:      data,
	}, nil
}

// DecodeAccount 校验账户判别前缀后，将剩余数据 borsh 解码到 out
func (p *IDL) DecodeAccount(name string, data []byte, out any) error {
	if _, ok := p.Account(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, name)
	}
	if len(data) < len(Discriminator{}) {
		return fmt.Errorf("%s: account data too short: %d", name, len(data))
	}
	want := AccountDiscriminator(name)
	if !bytes.Equal(data[:len(want)], want[:]) {
		return fmt.Errorf("%w: %s", ErrDiscriminator, name)
	}
	if err := borsh.Deserialize(out, data[len(want):]); err != nil {
		return fmt.Errorf("%s: borsh deserialize: %w", name, err)
	}
	return nil
}

// EncodeAccount 生成与链上一致的账户数据（测试与本地模拟使用）
func (p *IDL) EncodeAccount(name string, v any) ([]byte, error) {
	// borsh 会把指针当作 Option 编码，这里统一解引用
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("%s: nil account value", name)
		}
		v = rv.Elem().Interface()
	}
	if err := p.CheckStruct(name, v); err != nil {
		return nil, err
	}
	body, err := borsh.Serialize(v)
	if err != nil {
		return nil, fmt.Errorf("%s: borsh serialize: %w", name, err)
	}
	disc := AccountDiscriminator(name)
	return append(disc[:], body...), nil
}
