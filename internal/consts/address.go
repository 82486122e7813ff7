package consts

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	SystemProgramStr = "11111111111111111111111111111111"
	MemoProgramStr   = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"
	SysvarClockStr   = "SysvarC1ock11111111111111111111111111111111"
)

// PDA 种子，与链上程序保持一致
var (
	SeedAuthority = []byte("authority")
	SeedConfig    = []byte("config")
	SeedDaemon    = []byte("daemon")
	SeedFee       = []byte("fee")
	SeedHealth    = []byte("health")
	SeedTask      = []byte("task")
	SeedTreasury  = []byte("treasury")
)
