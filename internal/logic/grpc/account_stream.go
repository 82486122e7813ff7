package grpc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cronos-client-sol/internal/config"
	"cronos-client-sol/internal/pkg/logger"
	"cronos-client-sol/internal/pkg/types"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
)

// AccountStreamManager 订阅程序名下所有账户的变更，断线自动重连
type AccountStreamManager struct {
	mu                    sync.Mutex                           // 互斥锁，保护并发安全
	conn                  *grpc.ClientConn                     // gRPC 连接对象
	client                pb.GeyserClient                      // gRPC 客户端
	stream                pb.Geyser_SubscribeClient            // gRPC 订阅流
	stopped               bool                                 // 标记是否已经停止
	reconnectAttempts     int                                  // 已重连次数
	reconnectInterval     time.Duration                        // 重连基础间隔
	xToken                string                               // 认证用的 x-token
	programID             string                               // 订阅的 owner
	streamPingIntervalSec int                                  // Stream 心跳包发送间隔（秒）
	idleTimeout           time.Duration                        // 无更新超时
	sendTimeoutSec        int                                  // gRPC 发送超时时间（秒）
	updateChan            chan<- *pb.SubscribeUpdateAccount    // 账户更新输出
	connCtx               context.Context                      // 当前连接的 context
	connCancel            context.CancelFunc                   // 当前连接的 cancel 函数
	lastRecv              atomic.Int64                         // 最近一次收到消息的时间（UnixMilli）
	done                  chan struct{}                        // Stop 时关闭
}

func NewAccountStreamManager(
	grpcConf config.GrpcConfig,
	programID types.Pubkey,
	updateChan chan<- *pb.SubscribeUpdateAccount,
) (*AccountStreamManager, error) {
	target, creds := transportFor(grpcConf.Endpoint)

	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(grpcConf.ConnectTimeoutSec)*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(
		dialCtx,
		target,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(grpcConf.MaxCallRecvMsgSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                time.Duration(grpcConf.KeepalivePingIntervalSec) * time.Second,
			Timeout:             time.Duration(grpcConf.KeepalivePingTimeoutSec) * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect %s: %w", grpcConf.Endpoint, err)
	}

	return &AccountStreamManager{
		conn:                  conn,
		client:                pb.NewGeyserClient(conn),
		reconnectInterval:     time.Duration(grpcConf.ReconnectIntervalSec) * time.Second,
		xToken:                grpcConf.XToken,
		programID:             programID.String(),
		streamPingIntervalSec: grpcConf.StreamPingIntervalSec,
		idleTimeout:           time.Duration(grpcConf.IdleTimeoutSec) * time.Second,
		sendTimeoutSec:        grpcConf.SendTimeoutSec,
		updateChan:            updateChan,
		done:                  make(chan struct{}),
	}, nil
}

// transportFor http:// 走明文，其余走 TLS
func transportFor(endpoint string) (string, credentials.TransportCredentials) {
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		return rest, insecure.NewCredentials()
	}
	target := strings.TrimPrefix(endpoint, "https://")
	return target, credentials.NewTLS(&tls.Config{})
}

func (m *AccountStreamManager) Start() {
	m.mustConnect()
	<-m.done
}

func (m *AccountStreamManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	m.stopped = true
	if m.connCancel != nil {
		m.connCancel()
		m.connCancel = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
	}
	close(m.done)
}

// 内部循环直到连接成功
func (m *AccountStreamManager) mustConnect() {
	for {
		m.mu.Lock()
		if m.stopped {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		if m.reconnectAttempts > 0 {
			if m.reconnectAttempts > 3 {
				time.Sleep(m.reconnectInterval * 2)
			} else {
				time.Sleep(m.reconnectInterval)
			}
		}
		logger.Infof("[AccountStream] connecting, attempt %d", m.reconnectAttempts+1)
		m.reconnectAttempts++
		err := m.connect()
		if err == nil {
			return
		}
		logger.Warnf("[AccountStream] connect failed: %v, will retry", err)
	}
}

func buildSubscribeRequest(programID string) *pb.SubscribeRequest {
	accounts := map[string]*pb.SubscribeRequestFilterAccounts{
		"cronos": {Owner: []string{programID}},
	}
	commitment := pb.CommitmentLevel_CONFIRMED
	return &pb.SubscribeRequest{
		Accounts:   accounts,
		Commitment: &commitment,
	}
}

// connect 只尝试一次连接
func (m *AccountStreamManager) connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return errors.New("manager is stopped")
	}

	// 先关闭旧的 context，优雅退出旧 goroutine
	if m.connCancel != nil {
		m.connCancel()
		m.connCancel = nil
	}
	m.connCtx, m.connCancel = context.WithCancel(context.Background())

	metaCtx := metadata.NewOutgoingContext(
		m.connCtx,
		metadata.New(map[string]string{"x-token": m.xToken}),
	)
	stream, err := m.client.Subscribe(metaCtx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	req := buildSubscribeRequest(m.programID)
	err = sendWithTimeout(m.connCtx, stream.Send, req, time.Duration(m.sendTimeoutSec)*time.Second)
	if err != nil {
		return fmt.Errorf("send subscribe request: %w", err)
	}

	m.stream = stream
	m.reconnectAttempts = 0
	m.lastRecv.Store(time.Now().UnixMilli())
	logger.Infof("[AccountStream] subscribed to accounts owned by %s", m.programID)

	go m.pingLoop(m.connCtx, stream)
	go m.recvLoop(m.connCtx, stream)

	return nil
}

func (m *AccountStreamManager) recvLoop(ctx context.Context, stream pb.Geyser_SubscribeClient) {
	for {
		update, err := stream.Recv()
		if ctx.Err() != nil {
			return // 已被取消（重连或停止）
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Warnf("[AccountStream] stream closed by server (EOF), will reconnect")
			} else {
				logger.Warnf("[AccountStream] stream error: %v, will reconnect", err)
			}
			m.reconnect(ctx)
			return
		}
		m.lastRecv.Store(time.Now().UnixMilli())

		u, ok := update.GetUpdateOneof().(*pb.SubscribeUpdate_Account)
		if !ok || u.Account == nil {
			continue // pong 等
		}
		select {
		case m.updateChan <- u.Account:
		case <-ctx.Done():
			return
		}
	}
}

// 带超时的 Send
func sendWithTimeout[T any](ctx context.Context, sendFunc func(T) error, req T, timeout time.Duration) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- sendFunc(req)
	}()

	select {
	case <-timeoutCtx.Done():
		return timeoutCtx.Err()
	case err := <-done:
		return err
	}
}

// 心跳 + 空闲检测
func (m *AccountStreamManager) pingLoop(ctx context.Context, stream pb.Geyser_SubscribeClient) {
	ticker := time.NewTicker(time.Duration(m.streamPingIntervalSec) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.idle() {
				logger.Warnf("[AccountStream] %v 未收到任何消息，触发重连", m.idleTimeout)
				m.reconnect(ctx)
				return
			}
			pingReq := &pb.SubscribeRequest{
				Ping: &pb.SubscribeRequestPing{Id: 1},
			}
			if err := sendWithTimeout(ctx, stream.Send, pingReq, time.Duration(m.sendTimeoutSec)*time.Second); err != nil {
				// 只记录日志，由 recvLoop 决定是否重连
				logger.Warnf("[AccountStream] ping failed: %v", err)
			}
		}
	}
}

func (m *AccountStreamManager) idle() bool {
	if m.idleTimeout <= 0 {
		return false
	}
	last := time.UnixMilli(m.lastRecv.Load())
	return time.Since(last) > m.idleTimeout
}

// reconnect 只对当前连接生效，recvLoop 与 pingLoop 可能同时触发
func (m *AccountStreamManager) reconnect(ctx context.Context) {
	m.mu.Lock()
	if m.stopped || m.connCtx != ctx {
		m.mu.Unlock()
		return
	}
	if m.connCancel != nil {
		m.connCancel()
		m.connCancel = nil
	}
	m.connCtx = nil
	m.mu.Unlock()

	go m.mustConnect()
}
