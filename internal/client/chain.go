package client

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountInfo 链上账户快照
type AccountInfo struct {
	Address  common.PublicKey
	Lamports uint64
	Owner    common.PublicKey
	Data     []byte
}

// MemcmpFilter getProgramAccounts 的 memcmp 过滤条件
type MemcmpFilter struct {
	Offset uint64
	Bytes  []byte
}

// Chain 客户端依赖的 RPC 能力子集，测试中以内存实现替代
type Chain interface {
	GetAccount(ctx context.Context, addr common.PublicKey) (*AccountInfo, error)
	GetAccounts(ctx context.Context, addrs []common.PublicKey) ([]*AccountInfo, error)
	GetProgramAccounts(ctx context.Context, programID common.PublicKey, filters ...MemcmpFilter) ([]*AccountInfo, error)
	LatestBlockhash(ctx context.Context) (string, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
}

// RPCChain 基于 solana-go-sdk JSON-RPC 客户端的实现
type RPCChain struct {
	c *client.Client
}

func NewRPCChain(endpoint string) (*RPCChain, error) {
	c := client.NewClient(endpoint)
	if c == nil {
		return nil, errors.New("rpc client init failed")
	}
	return &RPCChain{c: c}, nil
}

func (r *RPCChain) GetAccount(ctx context.Context, addr common.PublicKey) (*AccountInfo, error) {
	info, err := r.c.GetAccountInfo(ctx, addr.ToBase58())
	if err != nil {
		return nil, fmt.Errorf("GetAccountInfo %s failed: %w", addr, err)
	}
	// 账户不存在时 RPC 返回 null，SDK 给出零值
	if info.Lamports == 0 && len(info.Data) == 0 && info.Owner == (common.PublicKey{}) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return &AccountInfo{
		Address:  addr,
		Lamports: info.Lamports,
		Owner:    info.Owner,
		Data:     info.Data,
	}, nil
}

// GetAccounts 不存在的账户对应位置为 nil
func (r *RPCChain) GetAccounts(ctx context.Context, addrs []common.PublicKey) ([]*AccountInfo, error) {
	keys := make([]string, 0, len(addrs))
	for _, a := range addrs {
		keys = append(keys, a.ToBase58())
	}
	infos, err := r.c.GetMultipleAccounts(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("GetMultipleAccounts failed: %w", err)
	}
	if len(infos) != len(addrs) {
		return nil, fmt.Errorf("返回账户数与请求不一致: got=%d want=%d", len(infos), len(addrs))
	}
	out := make([]*AccountInfo, len(addrs))
	for i, info := range infos {
		if info.Lamports == 0 && len(info.Data) == 0 {
			continue
		}
		out[i] = &AccountInfo{
			Address:  addrs[i],
			Lamports: info.Lamports,
			Owner:    info.Owner,
			Data:     info.Data,
		}
	}
	return out, nil
}

func (r *RPCChain) GetProgramAccounts(ctx context.Context, programID common.PublicKey, filters ...MemcmpFilter) ([]*AccountInfo, error) {
	// 未指定 encoding 时节点返回 base58，超过 128 字节的账户会失败
	cfg := rpc.GetProgramAccountsConfig{
		Encoding:   rpc.AccountEncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	}
	for _, f := range filters {
		cfg.Filters = append(cfg.Filters, rpc.GetProgramAccountsConfigFilter{
			MemCmp: &rpc.GetProgramAccountsConfigFilterMemCmp{
				Offset: f.Offset,
				Bytes:  base58.Encode(f.Bytes),
			},
		})
	}
	res, err := r.c.RpcClient.GetProgramAccountsWithConfig(ctx, programID.ToBase58(), cfg)
	if err != nil {
		return nil, fmt.Errorf("GetProgramAccounts %s failed: %w", programID, err)
	}
	if res.Error != nil {
		return nil, fmt.Errorf("GetProgramAccounts %s failed: %w", programID, res.Error)
	}
	out := make([]*AccountInfo, 0, len(res.Result))
	for _, a := range res.Result {
		data, err := decodeAccountData(a.Account.Data)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Pubkey, err)
		}
		out = append(out, &AccountInfo{
			Address:  common.PublicKeyFromString(a.Pubkey),
			Lamports: a.Account.Lamports,
			Owner:    common.PublicKeyFromString(a.Account.Owner),
			Data:     data,
		})
	}
	return out, nil
}

// decodeAccountData 解析 ["<base64>", "base64"] 形式的账户数据
func decodeAccountData(raw any) ([]byte, error) {
	pair, ok := raw.([]any)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("unexpected account data %T", raw)
	}
	enc, _ := pair[1].(string)
	if enc != string(rpc.AccountEncodingBase64) {
		return nil, fmt.Errorf("unexpected account data encoding %q", enc)
	}
	s, ok := pair[0].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected account data %T", pair[0])
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("base64 decode account data: %w", err)
	}
	return data, nil
}

func (r *RPCChain) LatestBlockhash(ctx context.Context) (string, error) {
	res, err := r.c.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("GetLatestBlockhash failed: %w", err)
	}
	return res.Blockhash, nil
}

func (r *RPCChain) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	return r.c.SendTransaction(ctx, tx)
}
