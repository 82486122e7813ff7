package state

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
)

// 账户名，与 IDL accounts 中的 name 一致
const (
	AccountAuthority = "authority"
	AccountConfig    = "config"
	AccountDaemon    = "daemon"
	AccountFee       = "fee"
	AccountHealth    = "health"
	AccountTask      = "task"
	AccountTreasury  = "treasury"
)

// 以下结构体字段顺序与宽度必须与 IDL 完全一致（borsh 按声明顺序编码）

type Authority struct {
	Bump uint8
}

type Config struct {
	Admin      common.PublicKey
	MinRecurr  int64
	ProgramFee uint64
	WorkerFee  uint64
	Bump       uint8
}

type Treasury struct {
	Bump uint8
}

// Health 由 daemon 周期性 ping，RealTime 落后 TargetTime 越多说明执行网络越不健康
type Health struct {
	RealTime   int64
	TargetTime int64
	Bump       uint8
}

// Lag 观测时间相对目标时间的偏差（秒）
func (h Health) Lag() int64 {
	return h.RealTime - h.TargetTime
}

type Daemon struct {
	Owner     common.PublicKey
	TaskCount Uint128
	Bump      uint8
}

type Fee struct {
	Daemon  common.PublicKey
	Balance uint64
	Bump    uint8
}

type Task struct {
	Daemon common.PublicKey
	ID     Uint128
	Ix     InstructionData
	Status TaskStatus
	ExecAt int64
	StopAt int64
	Recurr int64
	Bump   uint8
}

// AccountMetaData 任务内嵌指令的账户引用
type AccountMetaData struct {
	Pubkey     common.PublicKey
	IsSigner   bool
	IsWritable bool
}

// InstructionData 任务到期后由 daemon 代为调用的指令
type InstructionData struct {
	ProgramID common.PublicKey
	Accounts  []AccountMetaData
	Data      []byte
}

// TaskStatus 变体顺序与 IDL 一致：Cancelled=0, Executed=1, Pending=2
type TaskStatus uint8

const (
	TaskStatusCancelled TaskStatus = iota
	TaskStatusExecuted
	TaskStatusPending
)

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusCancelled:
		return "Cancelled"
	case TaskStatusExecuted:
		return "Executed"
	case TaskStatusPending:
		return "Pending"
	default:
		return fmt.Sprintf("TaskStatus(%d)", uint8(s))
	}
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch s {
	case "Cancelled", "cancelled":
		return TaskStatusCancelled, nil
	case "Executed", "executed":
		return TaskStatusExecuted, nil
	case "Pending", "pending":
		return TaskStatusPending, nil
	}
	return 0, fmt.Errorf("unknown task status %q", s)
}
