package state

import (
	"fmt"

	"github.com/near/borsh-go"
)

// Clock sysvar 布局（40 字节）
type Clock struct {
	Slot                uint64
	EpochStartTimestamp int64
	Epoch               uint64
	LeaderScheduleEpoch uint64
	UnixTimestamp       int64
}

const clockSize = 40

func DecodeClock(data []byte) (*Clock, error) {
	if len(data) < clockSize {
		return nil, fmt.Errorf("clock sysvar too short: %d", len(data))
	}
	var c Clock
	if err := borsh.Deserialize(&c, data[:clockSize]); err != nil {
		return nil, fmt.Errorf("clock sysvar: %w", err)
	}
	return &c, nil
}
