package svc

import (
	"database/sql"
	"fmt"

	"cronos-client-sol/internal/cache"
	"cronos-client-sol/internal/client"
	"cronos-client-sol/internal/config"
	"cronos-client-sol/internal/logic/progress"
	"cronos-client-sol/internal/mq"
	"cronos-client-sol/internal/pkg/logger"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/redis/go-redis/v9"
)

// ServiceContext 包含 worker 各服务共享的资源
type ServiceContext struct {
	Config          config.WorkerConfig
	Client          *client.Client
	Worker          types.Account
	TaskCache       *cache.TaskCache
	ProgressManager *progress.ProgressManager
	Publisher       mq.Publisher

	rdb *redis.Client
	db  *sql.DB
}

// NewServiceContext 创建 worker 服务上下文
func NewServiceContext(c config.WorkerConfig) (*ServiceContext, error) {
	// 1. worker 签名账户
	worker, err := client.LoadKeypair(c.ProgramConf.Keypair)
	if err != nil {
		return nil, fmt.Errorf("load worker keypair: %w", err)
	}

	// 2. RPC 客户端
	chain, err := client.NewRPCChain(c.RpcConf.Endpoint)
	if err != nil {
		return nil, err
	}
	cli := client.New(chain, c.ProgramConf.ProgramID.ToCommon(), worker)

	sc := &ServiceContext{
		Config:    c,
		Client:    cli,
		Worker:    worker,
		TaskCache: cache.NewTaskCache(),
		Publisher: mq.NopPublisher{},
	}

	// 3. 判重存储：Redis 可选，未配置时进程内判重
	var claims progress.ClaimStore
	if c.RedisAddr != "" {
		sc.rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		claims = progress.NewRedisClaimStore(sc.rdb)
	} else {
		logger.Warnf("[svc] redis_addr 未配置，多 worker 之间不做判重")
		claims = progress.NewMemoryClaimStore()
	}

	// 4. 执行记录落库（sqlite 可选）
	var dbStore *progress.DBProgressStore
	if c.ProgressConf.SqlitePath != "" {
		sc.db, err = progress.OpenSqlite(c.ProgressConf.SqlitePath)
		if err != nil {
			sc.Close()
			return nil, err
		}
		dbStore = progress.NewDBProgressStore(sc.db)
	}
	sc.ProgressManager = progress.NewProgressManager(claims, dbStore, c.ProgressConf.ClaimTTLSec)

	// 5. Kafka 事件（可选）
	if c.KafkaProducerConf.Brokers != "" {
		pub, err := mq.NewKafkaPublisher(c.KafkaProducerConf)
		if err != nil {
			logger.Errorf("Kafka producer 初始化失败: %v", err)
			sc.Close()
			return nil, err
		}
		sc.Publisher = pub
	}

	logger.Infof("worker 服务上下文初始化完成, worker=%s program=%s", worker.PublicKey.ToBase58(), c.ProgramConf.ProgramID)
	return sc, nil
}

// Close 关闭服务上下文中的资源
func (sc *ServiceContext) Close() {
	if sc.Publisher != nil {
		sc.Publisher.Close()
	}
	if sc.rdb != nil {
		_ = sc.rdb.Close()
	}
	if sc.db != nil {
		_ = sc.db.Close()
	}
}
