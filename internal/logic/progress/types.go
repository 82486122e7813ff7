package progress

import "fmt"

// ExecStatus 表示一次任务执行 (task, exec_at) 的状态（统一 Redis 与 DB 编码）
type ExecStatus int

const (
	ExecUnknown   ExecStatus = 0 // Redis 不存在
	ExecClaimed   ExecStatus = 1 // 🕒 已认领，交易提交中（仅 Redis 用）
	ExecSucceeded ExecStatus = 2 // ✅ 交易已确认提交
	ExecFailed    ExecStatus = 3 // ❌ 提交失败，可在下一轮重试
	ExecRejected  ExecStatus = 4 // 程序明确拒绝（任务已非 Pending），不再重试
)

func (s ExecStatus) String() string {
	switch s {
	case ExecClaimed:
		return "claimed"
	case ExecSucceeded:
		return "succeeded"
	case ExecFailed:
		return "failed"
	case ExecRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Final 是否为终态（终态不再重复提交）
func (s ExecStatus) Final() bool {
	return s == ExecSucceeded || s == ExecRejected
}

// Source 表示任务数据来源模块（grpc、rpc）
const (
	SourceUnknown int16 = 0
	SourceGrpc    int16 = 1
	SourceRpc     int16 = 2
)

func SourceName(src int16) string {
	switch src {
	case SourceGrpc:
		return "grpc"
	case SourceRpc:
		return "rpc"
	default:
		return "unknown"
	}
}

// ExecutionRecord 表示一条待写入 DB 的执行记录
type ExecutionRecord struct {
	Task       string     // task 账户地址（base58）
	Daemon     string     // 所属 daemon 地址（base58）
	ExecAt     int64      // 本次执行对应的 exec_at（秒）
	Worker     string     // 提交交易的 worker 地址
	Signature  string     // 交易签名，失败时可能为空
	Status     ExecStatus // 执行状态
	Error      string     // 失败原因
	Source     int16      // 任务数据来源
	ExecutedAt int64      // 提交时间 Unix timestamp（秒）
}

// ExecKey 一次执行的幂等 key
func ExecKey(task string, execAt int64) string {
	return fmt.Sprintf("%s:%d", task, execAt)
}
