package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cronos-client-sol/internal/program/instruction"

	"github.com/robfig/cron/v3"
)

// scheduleFlags task create / admin create-task 的时间参数
type scheduleFlags struct {
	execAt string
	stopAt string
	recurr string
	cron   string

	defaultRecurr string // 未给出 --recurr 与 --cron 时使用
}

// parseTime 支持 unix 秒、RFC3339、相对时间（+30s / +1h）
func parseTime(s string, now time.Time) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "now" {
		return now.Unix(), nil
	}
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid relative time %q: %w", s, err)
		}
		return now.Add(d).Unix(), nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (unix seconds, RFC3339 or +duration)", s)
	}
	return t.Unix(), nil
}

// parseRecurr 支持秒数或 duration（60 / 1m）
func parseRecurr(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid recurrence %q: %w", s, err)
	}
	return int64(d / time.Second), nil
}

// resolve 计算 Schedule。
// 给出 --cron 时 exec_at 取下一次触发时间，未指定 --recurr 时取相邻两次触发的间隔；
// 两者都未给出时 recurr 取 defaultRecurr；
// stop_at 缺省时：一次性任务等于 exec_at，周期任务为 math.MaxInt64
func (f scheduleFlags) resolve(now time.Time) (instruction.Schedule, error) {
	var sched instruction.Schedule

	recurrFlag := f.recurr
	if recurrFlag == "" && f.cron == "" {
		recurrFlag = f.defaultRecurr
	}
	recurr, err := parseRecurr(recurrFlag)
	if err != nil {
		return sched, err
	}

	if f.cron != "" {
		if f.execAt != "" {
			return sched, fmt.Errorf("--cron and --exec-at are mutually exclusive")
		}
		spec, err := cron.ParseStandard(f.cron)
		if err != nil {
			return sched, fmt.Errorf("invalid cron %q: %w", f.cron, err)
		}
		first := spec.Next(now)
		sched.ExecAt = first.Unix()
		if f.recurr == "" {
			recurr = int64(spec.Next(first).Sub(first) / time.Second)
		}
	} else {
		sched.ExecAt, err = parseTime(f.execAt, now)
		if err != nil {
			return sched, err
		}
	}
	sched.Recurr = recurr

	switch {
	case f.stopAt != "":
		sched.StopAt, err = parseTime(f.stopAt, now)
		if err != nil {
			return sched, err
		}
	case recurr == 0:
		sched.StopAt = sched.ExecAt
	default:
		sched.StopAt = 1<<63 - 1
	}
	return sched, nil
}
