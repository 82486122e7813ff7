package grpc

import (
	"bytes"
	"context"
	"errors"
	"runtime/debug"

	"cronos-client-sol/internal/cache"
	"cronos-client-sol/internal/logic/progress"
	"cronos-client-sol/internal/pkg/logger"
	"cronos-client-sol/internal/pkg/types"
	"cronos-client-sol/internal/program/state"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
)

// AccountProcessor 消费账户更新，把 Task 账户同步到缓存
type AccountProcessor struct {
	cache      *cache.TaskCache
	programID  types.Pubkey
	updateChan <-chan *pb.SubscribeUpdateAccount
	ctx        context.Context
	cancel     func(err error)
}

func NewAccountProcessor(taskCache *cache.TaskCache, programID types.Pubkey, updateChan <-chan *pb.SubscribeUpdateAccount) *AccountProcessor {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &AccountProcessor{
		cache:      taskCache,
		programID:  programID,
		updateChan: updateChan,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (p *AccountProcessor) Start() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case u := <-p.updateChan:
			p.safeProc(u)
			if n := len(p.updateChan); n > 100 {
				logger.Debugf("[AccountProcessor] update chan len: %d", n)
			}
		}
	}
}

func (p *AccountProcessor) Stop() {
	p.cancel(errors.New("service stop"))
}

func (p *AccountProcessor) safeProc(u *pb.SubscribeUpdateAccount) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[AccountProcessor] panic: %v\n%s", r, debug.Stack())
		}
	}()
	p.Process(u)
}

// Process 处理一条账户更新：关闭的账户移出缓存，Task 账户解码后写入缓存，其余账户忽略
func (p *AccountProcessor) Process(u *pb.SubscribeUpdateAccount) {
	if u == nil || u.Account == nil {
		return
	}
	info := u.Account

	addr, err := types.TryPubkeyFromBytes(info.Pubkey)
	if err != nil {
		logger.Warnf("[AccountProcessor] bad account pubkey at slot %d: %v", u.Slot, err)
		return
	}
	if !bytes.Equal(info.Owner, p.programID[:]) || info.Lamports == 0 || len(info.Data) == 0 {
		// 账户被关闭或转移
		p.cache.Remove(addr)
		return
	}

	disc := state.TaskDiscriminator()
	if !bytes.HasPrefix(info.Data, disc[:]) {
		return
	}
	task, err := state.DecodeTask(info.Data)
	if err != nil {
		logger.Warnf("[AccountProcessor] decode task %s failed: %v", addr, err)
		return
	}
	p.cache.Upsert(cache.TaskRef{Address: addr, Task: task, Slot: u.Slot, Source: progress.SourceGrpc})
}
