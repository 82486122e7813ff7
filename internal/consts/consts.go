package consts

const (
	// StaleToleranceSec 创建任务时 exec_at 允许落后链上时钟的秒数
	StaleToleranceSec int64 = 10
)
