package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
)

// LoadKeypair 读取 solana-keygen 生成的 JSON 密钥文件（64 个字节的数组）
func LoadKeypair(path string) (types.Account, error) {
	path = expandHome(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, fmt.Errorf("read keypair %s: %w", path, err)
	}
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return types.Account{}, fmt.Errorf("parse keypair %s: %w", path, err)
	}
	bs := make([]byte, 0, len(ints))
	for _, v := range ints {
		if v < 0 || v > 255 {
			return types.Account{}, fmt.Errorf("parse keypair %s: byte out of range: %d", path, v)
		}
		bs = append(bs, byte(v))
	}
	acc, err := types.AccountFromBytes(bs)
	if err != nil {
		return types.Account{}, fmt.Errorf("keypair %s: %w", path, err)
	}
	return acc, nil
}

// SaveKeypair 以 solana-keygen 兼容格式写出密钥
func SaveKeypair(path string, acc types.Account) error {
	ints := make([]int, 0, len(acc.PrivateKey))
	for _, b := range acc.PrivateKey {
		ints = append(ints, int(b))
	}
	raw, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	return os.WriteFile(expandHome(path), raw, 0o600)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
