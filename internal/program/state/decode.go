package state

import (
	"cronos-client-sol/internal/program/idl"
)

func decode[T any](name string, data []byte) (*T, error) {
	var out T
	if err := idl.MustLoad().DecodeAccount(name, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func DecodeAuthority(data []byte) (*Authority, error) { return decode[Authority](AccountAuthority, data) }
func DecodeConfig(data []byte) (*Config, error)       { return decode[Config](AccountConfig, data) }
func DecodeDaemon(data []byte) (*Daemon, error)       { return decode[Daemon](AccountDaemon, data) }
func DecodeFee(data []byte) (*Fee, error)             { return decode[Fee](AccountFee, data) }
func DecodeHealth(data []byte) (*Health, error)       { return decode[Health](AccountHealth, data) }
func DecodeTask(data []byte) (*Task, error)           { return decode[Task](AccountTask, data) }
func DecodeTreasury(data []byte) (*Treasury, error)   { return decode[Treasury](AccountTreasury, data) }

// Encode 生成带判别前缀的账户数据
func Encode(name string, v any) ([]byte, error) {
	return idl.MustLoad().EncodeAccount(name, v)
}

// TaskDaemonOffset Task 账户中 daemon 字段的偏移。
// status 之前是变长的内嵌指令，getProgramAccounts 无法直接按状态做 memcmp 过滤
const TaskDaemonOffset = 8

func TaskDiscriminator() idl.Discriminator {
	return idl.AccountDiscriminator(AccountTask)
}
