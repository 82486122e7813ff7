// Package errcode 是 cronos 程序自定义错误码（6000-6007）的客户端映射。
package errcode

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

type Code uint32

const (
	InvalidChronology     Code = 6000
	InvalidExecAtStale    Code = 6001
	InvalidRecurrNegative Code = 6002
	InvalidRecurrBelowMin Code = 6003
	InvalidSignatory      Code = 6004
	TaskNotPending        Code = 6005
	TaskNotDue            Code = 6006
	Unknown               Code = 6007
)

// ProgramError 链上程序返回的自定义错误
type ProgramError struct {
	Code Code
	Name string
	Msg  string
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("cronos error %d (%s): %s", e.Code, e.Name, e.Msg)
}

// Is 按错误码比较，便于 errors.Is(err, errcode.ErrTaskNotDue)
func (e *ProgramError) Is(target error) bool {
	var pe *ProgramError
	if !errors.As(target, &pe) {
		return false
	}
	return pe.Code == e.Code
}

var (
	ErrInvalidChronology     = &ProgramError{InvalidChronology, "InvalidChronology", "Tasks cannot be started before they are stopped"}
	ErrInvalidExecAtStale    = &ProgramError{InvalidExecAtStale, "InvalidExecAtStale", "Tasks cannot be scheduled for execution in the past"}
	ErrInvalidRecurrNegative = &ProgramError{InvalidRecurrNegative, "InvalidRecurrNegative", "Recurrence interval cannot be negative"}
	ErrInvalidRecurrBelowMin = &ProgramError{InvalidRecurrBelowMin, "InvalidRecurrBelowMin", "Recurrence interval is below the minimum supported time granulartiy"}
	ErrInvalidSignatory      = &ProgramError{InvalidSignatory, "InvalidSignatory", "Your daemon cannot provide all required signatures for this instruction"}
	ErrTaskNotPending        = &ProgramError{TaskNotPending, "TaskNotPending", "Task is not pending and may not executed"}
	ErrTaskNotDue            = &ProgramError{TaskNotDue, "TaskNotDue", "This task is not due and may not be executed yet"}
	ErrUnknown               = &ProgramError{Unknown, "Unknown", "Unknown error"}
)

var catalog = map[Code]*ProgramError{
	InvalidChronology:     ErrInvalidChronology,
	InvalidExecAtStale:    ErrInvalidExecAtStale,
	InvalidRecurrNegative: ErrInvalidRecurrNegative,
	InvalidRecurrBelowMin: ErrInvalidRecurrBelowMin,
	InvalidSignatory:      ErrInvalidSignatory,
	TaskNotPending:        ErrTaskNotPending,
	TaskNotDue:            ErrTaskNotDue,
	Unknown:               ErrUnknown,
}

// All 按错误码升序返回完整目录
func All() []*ProgramError {
	out := make([]*ProgramError, 0, len(catalog))
	for c := InvalidChronology; c <= Unknown; c++ {
		out = append(out, catalog[c])
	}
	return out
}

func Lookup(code Code) (*ProgramError, bool) {
	e, ok := catalog[code]
	return e, ok
}

var (
	hexCustomRe  = regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`)
	jsonCustomRe = regexp.MustCompile(`"Custom"\s*:\s*(\d+)`)
)

// FromRPCError 从 RPC / 模拟错误中识别自定义错误码。
// 识别 "custom program error: 0x1770" 与 {"Custom":6000} 两种形式；
// 6000 以下属于 Anchor 框架错误，返回 false；6000 以上未登记的码统一映射到 Unknown。
func FromRPCError(err error) (*ProgramError, bool) {
	if err == nil {
		return nil, false
	}
	var pe *ProgramError
	if errors.As(err, &pe) {
		return pe, true
	}

	code, ok := parseCustomCode(err.Error())
	if !ok || code < uint64(InvalidChronology) {
		return nil, false
	}
	if e, ok := Lookup(Code(code)); ok {
		return e, true
	}
	return ErrUnknown, true
}

func parseCustomCode(msg string) (uint64, bool) {
	if m := hexCustomRe.FindStringSubmatch(msg); m != nil {
		v, err := strconv.ParseUint(m[1], 16, 32)
		return v, err == nil
	}
	if m := jsonCustomRe.FindStringSubmatch(msg); m != nil {
		v, err := strconv.ParseUint(m[1], 10, 32)
		return v, err == nil
	}
	return 0, false
}

// Wrap 若 err 携带自定义错误码，则包装为 ProgramError 保留原始错误
func Wrap(err error) error {
	pe, ok := FromRPCError(err)
	if !ok {
		return err
	}
	if errors.Is(err, pe) {
		return err
	}
	return fmt.Errorf("%w: %w", pe, err)
}

// MarshalJSON CLI 以 json 输出错误目录
func (e *ProgramError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Code uint32 `json:"code"`
		Name string `json:"name"`
		Msg  string `json:"msg"`
	}{uint32(e.Code), e.Name, e.Msg})
}
