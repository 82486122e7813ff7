package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/conf"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func load(t *testing.T, body string) (WorkerConfig, error) {
	t.Helper()
	var c WorkerConfig
	err := conf.Load(writeConfig(t, body), &c)
	return c, err
}

const minimal = `
program:
  program_id: MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr
  keypair: /tmp/id.json
rpc:
  endpoint: http://127.0.0.1:8899
`

func TestLoad_Defaults(t *testing.T) {
	c, err := load(t, minimal+`
executor:
  max_per_tick: 8
`)
	require.NoError(t, err)

	assert.Equal(t, "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr", c.ProgramConf.ProgramID.String())
	assert.Equal(t, 8, c.ExecutorConf.MaxPerTick)
	assert.Equal(t, int64(10), c.ExecutorConf.LookbackSec)
	assert.Equal(t, 1000, c.ExecutorConf.TickMs)
	assert.Equal(t, 20.0, c.ExecutorConf.RateLimitPerSec)
	assert.Equal(t, 5, c.TaskSyncConf.IntervalSec)
	assert.Equal(t, "*/30 * * * * *", c.HealthConf.Cron)
	assert.Equal(t, "console", c.LogConf.Format)
	assert.Equal(t, "cronos_task_execution", c.KafkaProducerConf.Topics.Execution)
	assert.Equal(t, 4, c.KafkaProducerConf.Partitions.Execution)
	assert.Equal(t, 120, c.ProgressConf.ClaimTTLSec)
	assert.Equal(t, 60, c.ProgressConf.SweepIntervalSec)
	assert.Empty(t, c.Grpc.Endpoint)
	assert.Equal(t, 60, c.Grpc.IdleTimeoutSec)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := load(t, "rpc:\n  endpoint: http://x\n")
	assert.ErrorContains(t, err, "program_id")

	_, err = load(t, "program:\n  program_id: not-base58-0OIl\n  keypair: /tmp/id.json\nrpc:\n  endpoint: http://x\n")
	assert.ErrorContains(t, err, "program_id")

	_, err = load(t, "program:\n  program_id: MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr\nrpc:\n  endpoint: http://x\n")
	assert.ErrorContains(t, err, "keypair")

	var c WorkerConfig
	assert.Error(t, conf.Load(filepath.Join(t.TempDir(), "missing.yaml"), &c))
}

func TestLoad_SyncIntervalWithinLookback(t *testing.T) {
	// 仅轮询时，刷新间隔超过回看窗口会漏掉刚创建的任务
	_, err := load(t, minimal+`
task_sync:
  interval_sec: 30
`)
	assert.ErrorContains(t, err, "task_sync.interval_sec")

	_, err = load(t, minimal+`
task_sync:
  interval_sec: 10
`)
	assert.NoError(t, err)

	// geyser 推送负责及时发现任务，轮询只做兜底
	c, err := load(t, minimal+`
task_sync:
  interval_sec: 30
grpc:
  endpoint: 127.0.0.1:10000
`)
	require.NoError(t, err)
	assert.Equal(t, 30, c.TaskSyncConf.IntervalSec)
}

func TestLoad_ShippedConfigParses(t *testing.T) {
	raw, err := os.ReadFile("../../etc/worker.yaml")
	require.NoError(t, err)
	// 示例配置没有填写 program_id
	_, err = load(t, string(raw))
	assert.ErrorContains(t, err, "program_id")

	filled := strings.Replace(string(raw), `program_id: ""`, "program_id: MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr", 1)
	c, err := load(t, filled)
	require.NoError(t, err)
	assert.LessOrEqual(t, int64(c.TaskSyncConf.IntervalSec), c.ExecutorConf.LookbackSec)
	assert.Equal(t, "data/executions.db", c.ProgressConf.SqlitePath)
}
