// Package client 组合 RPC 读取与指令构造：读取链上账户补全调用参数，签名并提交交易。
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cronos-client-sol/internal/consts"
	"cronos-client-sol/internal/pkg/logger"
	"cronos-client-sol/internal/program/errcode"
	"cronos-client-sol/internal/program/instruction"
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

type Client struct {
	chain   Chain
	builder *instruction.Builder
	payer   types.Account
}

func New(chain Chain, programID common.PublicKey, payer types.Account) *Client {
	return &Client{
		chain:   chain,
		builder: instruction.NewBuilder(programID),
		payer:   payer,
	}
}

func (c *Client) Builder() *instruction.Builder { return c.builder }
func (c *Client) ProgramID() common.PublicKey   { return c.builder.ProgramID() }

// ---------- 账户读取 ----------

func fetch[T any](ctx context.Context, c *Client, addr common.PublicKey, decode func([]byte) (*T, error)) (*T, error) {
	info, err := c.chain.GetAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	return decodeOwned(c, addr, info, decode)
}

// decodeOwned 校验账户归属后解码，info 为 nil 表示账户不存在
func decodeOwned[T any](c *Client, addr common.PublicKey, info *AccountInfo, decode func([]byte) (*T, error)) (*T, error) {
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if info.Owner != c.ProgramID() {
		return nil, fmt.Errorf("account %s owned by %s, want %s", addr, info.Owner, c.ProgramID())
	}
	v, err := decode(info.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", addr, err)
	}
	return v, nil
}

func (c *Client) Config(ctx context.Context) (*state.Config, error) {
	pda, err := state.ConfigPDA(c.ProgramID())
	if err != nil {
		return nil, err
	}
	return fetch(ctx, c, pda.Address, state.DecodeConfig)
}

// Authority 读取 authority 单例，同时返回其地址（也是 authority daemon 的 owner）
func (c *Client) Authority(ctx context.Context) (*state.Authority, state.PDA, error) {
	pda, err := state.AuthorityPDA(c.ProgramID())
	if err != nil {
		return nil, state.PDA{}, err
	}
	a, err := fetch(ctx, c, pda.Address, state.DecodeAuthority)
	return a, pda, err
}

// Treasury 读取 treasury 单例，同时返回其地址（fee_collect 的收款账户）
func (c *Client) Treasury(ctx context.Context) (*state.Treasury, state.PDA, error) {
	pda, err := state.TreasuryPDA(c.ProgramID())
	if err != nil {
		return nil, state.PDA{}, err
	}
	t, err := fetch(ctx, c, pda.Address, state.DecodeTreasury)
	return t, pda, err
}

func (c *Client) Health(ctx context.Context) (*state.Health, error) {
	pda, err := state.HealthPDA(c.ProgramID())
	if err != nil {
		return nil, err
	}
	return fetch(ctx, c, pda.Address, state.DecodeHealth)
}

// Daemon 读取 owner 名下的 daemon，同时返回其地址
func (c *Client) Daemon(ctx context.Context, owner common.PublicKey) (*state.Daemon, state.PDA, error) {
	pda, err := state.DaemonPDA(c.ProgramID(), owner)
	if err != nil {
		return nil, state.PDA{}, err
	}
	d, err := fetch(ctx, c, pda.Address, state.DecodeDaemon)
	return d, pda, err
}

func (c *Client) Fee(ctx context.Context, daemon common.PublicKey) (*state.Fee, error) {
	pda, err := state.FeePDA(c.ProgramID(), daemon)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, c, pda.Address, state.DecodeFee)
}

func (c *Client) Task(ctx context.Context, addr common.PublicKey) (*state.Task, error) {
	return fetch(ctx, c, addr, state.DecodeTask)
}

// TaskEntry 任务地址与解码后的数据
type TaskEntry struct {
	Address common.PublicKey
	Task    *state.Task
}

// Tasks 列出程序下的任务；daemon 非空时只返回该 daemon 的任务。解码失败的账户跳过并告警
func (c *Client) Tasks(ctx context.Context, daemon *common.PublicKey) ([]TaskEntry, error) {
	disc := state.TaskDiscriminator()
	filters := []MemcmpFilter{{Offset: 0, Bytes: disc[:]}}
	if daemon != nil {
		filters = append(filters, MemcmpFilter{Offset: state.TaskDaemonOffset, Bytes: daemon.Bytes()})
	}
	accounts, err := c.chain.GetProgramAccounts(ctx, c.ProgramID(), filters...)
	if err != nil {
		return nil, err
	}
	out := make([]TaskEntry, 0, len(accounts))
	for _, acc := range accounts {
		task, err := state.DecodeTask(acc.Data)
		if err != nil {
			logger.Warnf("[client] 任务解码失败: addr=%s err=%v", acc.Address, err)
			continue
		}
		out = append(out, TaskEntry{Address: acc.Address, Task: task})
	}
	return out, nil
}

// Clock 读取链上 clock sysvar
func (c *Client) Clock(ctx context.Context) (*state.Clock, error) {
	info, err := c.chain.GetAccount(ctx, consts.SysvarClock.ToCommon())
	if err != nil {
		return nil, err
	}
	return state.DecodeClock(info.Data)
}

// ---------- 自动补全参数的指令封装 ----------

func (c *Client) admin(ctx context.Context) (common.PublicKey, error) {
	cfg, err := c.Config(ctx)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("read config: %w", err)
	}
	return cfg.Admin, nil
}

// ConfigUpdateAdmin admin 取自当前 config
func (c *Client) ConfigUpdateAdmin(ctx context.Context, newAdmin common.PublicKey) (types.Instruction, error) {
	admin, err := c.admin(ctx)
	if err != nil {
		return types.Instruction{}, err
	}
	return c.builder.ConfigUpdateAdmin(admin, newAdmin)
}

func (c *Client) ConfigUpdateProgramFee(ctx context.Context, newProgramFee uint64) (types.Instruction, error) {
	admin, err := c.admin(ctx)
	if err != nil {
		return types.Instruction{}, err
	}
	return c.builder.ConfigUpdateProgramFee(admin, newProgramFee)
}

func (c *Client) ConfigUpdateWorkerFee(ctx context.Context, newWorkerFee uint64) (types.Instruction, error) {
	admin, err := c.admin(ctx)
	if err != nil {
		return types.Instruction{}, err
	}
	return c.builder.ConfigUpdateWorkerFee(admin, newWorkerFee)
}

func (c *Client) AdminResetHealth(ctx context.Context) (types.Instruction, error) {
	admin, err := c.admin(ctx)
	if err != nil {
		return types.Instruction{}, err
	}
	return c.builder.AdminResetHealth(admin)
}

func (c *Client) AdminCancelTask(ctx context.Context, task common.PublicKey) (types.Instruction, error) {
	admin, err := c.admin(ctx)
	if err != nil {
		return types.Instruction{}, err
	}
	return c.builder.AdminCancelTask(admin, task)
}

// preflight 本地预检时间线，链上 clock 读取失败时退回本地时间
func (c *Client) preflight(ctx context.Context, sched instruction.Schedule, minRecurr int64) error {
	now := time.Now().Unix()
	if clock, err := c.Clock(ctx); err == nil {
		now = clock.UnixTimestamp
	} else {
		logger.Warnf("[client] 读取 clock 失败，使用本地时间预检: %v", err)
	}
	return state.ValidateSchedule(sched.ExecAt, sched.StopAt, sched.Recurr, minRecurr, now)
}

// configAndDaemon 一次 getMultipleAccounts 读取 config 与 owner 的 daemon
func (c *Client) configAndDaemon(ctx context.Context, owner common.PublicKey) (*state.Config, *state.Daemon, state.PDA, error) {
	cfgPDA, err := state.ConfigPDA(c.ProgramID())
	if err != nil {
		return nil, nil, state.PDA{}, err
	}
	daemonPDA, err := state.DaemonPDA(c.ProgramID(), owner)
	if err != nil {
		return nil, nil, state.PDA{}, err
	}
	infos, err := c.chain.GetAccounts(ctx, []common.PublicKey{cfgPDA.Address, daemonPDA.Address})
	if err != nil {
		return nil, nil, state.PDA{}, err
	}
	cfg, err := decodeOwned(c, cfgPDA.Address, infos[0], state.DecodeConfig)
	if err != nil {
		return nil, nil, state.PDA{}, fmt.Errorf("read config: %w", err)
	}
	daemon, err := decodeOwned(c, daemonPDA.Address, infos[1], state.DecodeDaemon)
	if err != nil {
		return nil, nil, state.PDA{}, fmt.Errorf("read daemon: %w", err)
	}
	return cfg, daemon, daemonPDA, nil
}

// AdminCreateTask 读取 config（admin、min_recurr）与 authority daemon 的 task_count
func (c *Client) AdminCreateTask(ctx context.Context, inner state.InstructionData, sched instruction.Schedule) (types.Instruction, state.PDA, error) {
	authority, err := state.AuthorityPDA(c.ProgramID())
	if err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	cfg, daemon, daemonPDA, err := c.configAndDaemon(ctx, authority.Address)
	if err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	if err := state.ValidateSignatory(inner, daemonPDA); err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	if err := c.preflight(ctx, sched, cfg.MinRecurr); err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	return c.builder.AdminCreateTask(cfg.Admin, daemon.TaskCount, inner, sched)
}

// HealthStart 重置 health，并以 authority daemon 创建周期执行 health_check 的任务
func (c *Client) HealthStart(ctx context.Context, sched instruction.Schedule) ([]types.Instruction, state.PDA, error) {
	reset, err := c.AdminResetHealth(ctx)
	if err != nil {
		return nil, state.PDA{}, err
	}
	check, err := c.builder.HealthCheck()
	if err != nil {
		return nil, state.PDA{}, err
	}
	create, task, err := c.AdminCreateTask(ctx, state.NewInstructionData(check), sched)
	if err != nil {
		return nil, state.PDA{}, err
	}
	return []types.Instruction{reset, create}, task, nil
}

// BlockTime 链上当前 unix 时间
func (c *Client) BlockTime(ctx context.Context) (int64, error) {
	clock, err := c.Clock(ctx)
	if err != nil {
		return 0, err
	}
	return clock.UnixTimestamp, nil
}

// TaskCreate 读取 owner daemon 的 task_count 决定新任务地址，并在本地做时间线与签名者预检
func (c *Client) TaskCreate(ctx context.Context, owner common.PublicKey, inner state.InstructionData, sched instruction.Schedule) (types.Instruction, state.PDA, error) {
	cfg, daemon, daemonPDA, err := c.configAndDaemon(ctx, owner)
	if err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	if err := state.ValidateSignatory(inner, daemonPDA); err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	if err := c.preflight(ctx, sched, cfg.MinRecurr); err != nil {
		return types.Instruction{}, state.PDA{}, err
	}
	return c.builder.TaskCreate(owner, daemon.TaskCount, inner, sched)
}

// TaskExecute 读取任务数据以确定 daemon、fee 与 remaining accounts
func (c *Client) TaskExecute(ctx context.Context, worker, taskAddr common.PublicKey) (types.Instruction, error) {
	task, err := c.Task(ctx, taskAddr)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("read task: %w", err)
	}
	clock, err := c.Clock(ctx)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("read clock: %w", err)
	}
	if err := task.CheckExecutable(clock.UnixTimestamp); err != nil {
		return types.Instruction{}, err
	}
	return c.builder.TaskExecute(worker, taskAddr, task)
}

// FeeCollect 由 payer 发起，收取 daemon 的 fee 余额
func (c *Client) FeeCollect(ctx context.Context, daemon common.PublicKey) (types.Instruction, error) {
	if _, err := c.Fee(ctx, daemon); err != nil {
		return types.Instruction{}, fmt.Errorf("read fee: %w", err)
	}
	return c.builder.FeeCollect(c.payer.PublicKey, daemon)
}

// ---------- 提交 ----------

// SignAndSubmit payer 作为手续费账户并签名，extra 为额外签名者
func (c *Client) SignAndSubmit(ctx context.Context, memo string, ixs []types.Instruction, extra ...types.Account) (string, error) {
	if len(ixs) == 0 {
		return "", errors.New("no instructions")
	}
	blockhash, err := c.chain.LatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	signers := append([]types.Account{c.payer}, extra...)
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        c.payer.PublicKey,
			RecentBlockhash: blockhash,
			Instructions:    ixs,
		}),
		Signers: signers,
	})
	if err != nil {
		return "", fmt.Errorf("build tx: %w", err)
	}

	start := time.Now()
	sig, err := c.chain.SendTransaction(ctx, tx)
	if err != nil {
		logger.Warnf("[client] %s 提交失败: %v", memo, err)
		return "", errcode.Wrap(err)
	}
	logger.Infof("[client] %s 提交成功: sig=%s 耗时=%v", memo, sig, time.Since(start))
	return sig, nil
}
