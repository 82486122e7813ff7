package config

import (
	"fmt"

	"cronos-client-sol/internal/pkg/logger"
	"cronos-client-sol/internal/pkg/types"
)

type LogConfig struct {
	Format   string `json:"format,default=console"` // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,default=logs"`   // 日志目录（可为相对路径或绝对路径）
	Level    string `json:"level,default=info"`     // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,default=false"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// ProgramConfig 链上程序与 worker 身份
type ProgramConfig struct {
	Address string `json:"program_id,optional"` // cronos 程序地址（base58）
	Keypair string `json:"keypair,optional"`    // worker 签名密钥文件（solana-keygen JSON）

	ProgramID types.Pubkey `json:"-"` // Validate 时由 Address 解析
}

type RpcConfig struct {
	Endpoint  string `json:"endpoint,optional"`       // Solana JSON-RPC 地址
	TimeoutMs int    `json:"timeout_ms,default=5000"` // 单次 RPC 超时（毫秒）
}

// ExecutorConfig 到期任务执行器
type ExecutorConfig struct {
	TickMs          int     `json:"tick_ms,default=1000"`            // 扫描间隔（毫秒）
	LookbackSec     int64   `json:"lookback_sec,default=10"`         // 回看窗口（秒）
	MaxPerTick      int     `json:"max_per_tick,default=64"`         // 每轮最多提交的任务数
	RateLimitPerSec float64 `json:"rate_limit_per_sec,default=20"`   // 交易提交速率上限
	RateBurst       int     `json:"rate_burst,default=10"`           // 速率突发容量
	SubmitTimeoutMs int     `json:"submit_timeout_ms,default=10000"` // 单笔交易提交超时（毫秒）
}

// TaskSyncConfig 全量任务刷新
type TaskSyncConfig struct {
	IntervalSec int `json:"interval_sec,default=5"` // getProgramAccounts 全量刷新间隔（秒）
}

// HealthConfig health 账户巡检
type HealthConfig struct {
	Cron      string `json:"cron,default=*/30 * * * * *"` // 巡检 cron 表达式（支持秒字段）
	MaxLagSec int64  `json:"max_lag_sec,default=60"`      // real_time 落后 target_time 超过该值告警
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置，Brokers 为空时不发送事件
type KafkaProducerConfig struct {
	Brokers   string `json:"brokers,optional"`         // Kafka broker 地址，多个用英文逗号分隔
	BatchSize int    `json:"batch_size,default=32768"` // 批处理大小（单位字节）
	LingerMs  int    `json:"linger_ms,default=5"`      // 批处理最大延迟（毫秒）

	Topics struct {
		Execution string `json:"execution,default=cronos_task_execution"` // 任务执行结果 topic
	} `json:"topics"`

	Partitions struct {
		Execution int `json:"execution,default=4"` // execution topic 的分区数
	} `json:"partitions"`
}

// ProgressConfig 执行进度判重与落库
type ProgressConfig struct {
	ClaimTTLSec      int    `json:"claim_ttl_sec,default=120"`     // 认领标记 TTL（秒）
	FlushIntervalSec int    `json:"flush_interval_sec,default=5"`  // 执行记录批量落库间隔（秒）
	SweepIntervalSec int    `json:"sweep_interval_sec,default=60"` // 进程内认领表过期清理间隔（秒）
	RetainDays       int    `json:"retain_days,default=7"`         // 执行记录保留天数
	SqlitePath       string `json:"sqlite_path,optional"`          // 执行记录 sqlite 文件，为空时不落库
}

// GrpcConfig yellowstone geyser 账户订阅，Endpoint 为空时只依赖 RPC 轮询
type GrpcConfig struct {
	Endpoint string `json:"endpoint,optional"` // gRPC 服务端地址
	XToken   string `json:"x_token,optional"`  // x-token 认证

	StreamPingIntervalSec int `json:"stream_ping_interval_sec,default=10"` // 应用层 ping 心跳间隔（秒）

	KeepalivePingIntervalSec int `json:"keepalive_ping_interval_sec,default=30"` // 底层 keepalive 间隔（秒）
	KeepalivePingTimeoutSec  int `json:"keepalive_ping_timeout_sec,default=10"`  // 底层 keepalive 超时（秒）

	MaxCallRecvMsgSize int `json:"max_call_recv_msg_size,default=67108864"` // 单条消息最大接收字节数

	ReconnectIntervalSec int `json:"reconnect_interval_sec,default=3"` // 重连最小间隔（秒）
	ConnectTimeoutSec    int `json:"connect_timeout_sec,default=10"`   // 连接建立超时（秒）
	SendTimeoutSec       int `json:"send_timeout_sec,default=5"`       // 发送超时（秒）
	IdleTimeoutSec       int `json:"idle_timeout_sec,default=60"`      // 超过该时间没有任何更新则重连（秒）
}

// WorkerConfig 是主配置结构体，用于驱动 worker 服务
type WorkerConfig struct {
	LogConf           LogConfig           `json:"logger"`         // 日志配置
	ProgramConf       ProgramConfig       `json:"program"`        // 程序配置
	RpcConf           RpcConfig           `json:"rpc"`            // RPC 配置
	ExecutorConf      ExecutorConfig      `json:"executor"`       // 执行器配置
	TaskSyncConf      TaskSyncConfig      `json:"task_sync"`      // 任务刷新配置
	HealthConf        HealthConfig        `json:"health"`         // health 巡检配置
	KafkaProducerConf KafkaProducerConfig `json:"kafka_producer"` // Kafka 生产者配置
	ProgressConf      ProgressConfig      `json:"progress"`       // 执行进度配置
	Grpc              GrpcConfig          `json:"grpc"`           // geyser 订阅配置

	RedisAddr string `json:"redis_addr,optional"` // Redis 地址，为空时只做进程内判重
}

// Validate 由 conf.Load 在填充默认值后调用，校验配置并解析 program_id
func (c *WorkerConfig) Validate() error {
	if c.ProgramConf.Address == "" {
		return fmt.Errorf("program.program_id is required")
	}
	pid, err := types.TryPubkeyFromBase58(c.ProgramConf.Address)
	if err != nil {
		return fmt.Errorf("program.program_id: %w", err)
	}
	c.ProgramConf.ProgramID = pid

	if c.ProgramConf.Keypair == "" {
		return fmt.Errorf("program.keypair is required")
	}
	if c.RpcConf.Endpoint == "" {
		return fmt.Errorf("rpc.endpoint is required")
	}
	if c.ExecutorConf.TickMs <= 0 || c.ExecutorConf.LookbackSec <= 0 {
		return fmt.Errorf("executor.tick_ms and executor.lookback_sec must be positive")
	}
	if c.TaskSyncConf.IntervalSec <= 0 {
		return fmt.Errorf("task_sync.interval_sec must be positive")
	}
	// 只靠轮询发现任务时，轮询间隔超过回看窗口会让新任务在被看到之前就落出窗口
	if c.Grpc.Endpoint == "" && int64(c.TaskSyncConf.IntervalSec) > c.ExecutorConf.LookbackSec {
		return fmt.Errorf("task_sync.interval_sec (%d) must not exceed executor.lookback_sec (%d) without grpc.endpoint",
			c.TaskSyncConf.IntervalSec, c.ExecutorConf.LookbackSec)
	}
	return nil
}
