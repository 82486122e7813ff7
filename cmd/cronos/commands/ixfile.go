package commands

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"cronos-client-sol/internal/consts"
	pkgtypes "cronos-client-sol/internal/pkg/types"
	"cronos-client-sol/internal/program/state"

	"github.com/mr-tron/base58"
)

// ixFile 内嵌指令的 JSON 描述
//
//	{
//	  "program_id": "...",
//	  "accounts": [{"pubkey": "...", "is_signer": true, "is_writable": false}],
//	  "data": "3Bxs4h24hBtQy9rw",
//	  "encoding": "base58"
//	}
type ixFile struct {
	ProgramID pkgtypes.Pubkey `json:"program_id"`
	Accounts  []struct {
		Pubkey     pkgtypes.Pubkey `json:"pubkey"`
		IsSigner   bool            `json:"is_signer"`
		IsWritable bool            `json:"is_writable"`
	} `json:"accounts"`
	Data     string `json:"data"`
	Encoding string `json:"encoding"` // base58（默认）/ base64 / hex
}

func decodeData(data, encoding string) ([]byte, error) {
	switch encoding {
	case "", "base58":
		return base58.Decode(data)
	case "base64":
		return base64.StdEncoding.DecodeString(data)
	case "hex":
		return hex.DecodeString(data)
	default:
		return nil, fmt.Errorf("unsupported data encoding %q", encoding)
	}
}

func parseIxJSON(raw []byte) (state.InstructionData, error) {
	var f ixFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return state.InstructionData{}, fmt.Errorf("parse instruction json: %w", err)
	}
	if f.ProgramID.IsZero() {
		return state.InstructionData{}, fmt.Errorf("instruction program_id is required")
	}
	data, err := decodeData(f.Data, f.Encoding)
	if err != nil {
		return state.InstructionData{}, fmt.Errorf("decode instruction data: %w", err)
	}
	ix := state.InstructionData{
		ProgramID: f.ProgramID.ToCommon(),
		Accounts:  make([]state.AccountMetaData, 0, len(f.Accounts)),
		Data:      data,
	}
	for _, a := range f.Accounts {
		ix.Accounts = append(ix.Accounts, state.AccountMetaData{
			Pubkey:     a.Pubkey.ToCommon(),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		})
	}
	return ix, nil
}

// memoIx 无账户的 memo 指令，便于调度演示
func memoIx(text string) state.InstructionData {
	return state.InstructionData{
		ProgramID: consts.MemoProgram.ToCommon(),
		Accounts:  []state.AccountMetaData{},
		Data:      []byte(text),
	}
}

// loadInnerIx 从 --ix-file 或 --memo 得到内嵌指令
func loadInnerIx(path, memo string) (state.InstructionData, error) {
	switch {
	case path != "" && memo != "":
		return state.InstructionData{}, fmt.Errorf("--ix-file and --memo are mutually exclusive")
	case path != "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return state.InstructionData{}, err
		}
		return parseIxJSON(raw)
	case memo != "":
		return memoIx(memo), nil
	default:
		return state.InstructionData{}, fmt.Errorf("an inner instruction is required (--ix-file or --memo)")
	}
}
