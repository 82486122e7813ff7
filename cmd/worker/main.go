package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"cronos-client-sol/internal/config"
	"cronos-client-sol/internal/logic/grpc"
	"cronos-client-sol/internal/pkg/logger"
	"cronos-client-sol/internal/service"
	"cronos-client-sol/internal/svc"

	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	zerosvc "github.com/zeromicro/go-zero/core/service"
)

var configFile = flag.String("f", "etc/worker.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	var c config.WorkerConfig
	conf.MustLoad(*configFile, &c)

	if err := logger.Init(c.LogConf.ToLogOption()); err != nil {
		panic(err)
	}
	defer logger.Sync()

	serviceContext, err := svc.NewServiceContext(c)
	if err != nil {
		panic(err)
	}
	defer serviceContext.Close()

	rpcTimeout := time.Duration(c.RpcConf.TimeoutMs) * time.Millisecond
	sg := zerosvc.NewServiceGroup()

	// 1. 任务全量刷新
	taskSync, err := service.NewTaskSyncService(
		serviceContext.Client,
		serviceContext.TaskCache,
		time.Duration(c.TaskSyncConf.IntervalSec)*time.Second,
		rpcTimeout,
	)
	if err != nil {
		panic(err)
	}
	sg.Add(taskSync)

	// 2. geyser 账户推送（可选）
	if c.Grpc.Endpoint != "" {
		updateChan := make(chan *pb.SubscribeUpdateAccount, 1024)
		stream, err := grpc.NewAccountStreamManager(c.Grpc, c.ProgramConf.ProgramID, updateChan)
		if err != nil {
			panic(err)
		}
		sg.Add(stream)
		sg.Add(grpc.NewAccountProcessor(serviceContext.TaskCache, c.ProgramConf.ProgramID, updateChan))
	}

	// 3. 到期任务执行
	sg.Add(service.NewExecutorService(
		c.ExecutorConf,
		serviceContext.TaskCache,
		serviceContext.ProgressManager,
		serviceContext.Publisher,
		serviceContext.Client.Builder(),
		serviceContext.Client,
		serviceContext.Worker.PublicKey,
	))

	// 4. 执行记录落库
	sg.Add(service.NewProgressService(
		serviceContext.ProgressManager,
		time.Duration(c.ProgressConf.FlushIntervalSec)*time.Second,
		time.Duration(c.ProgressConf.SweepIntervalSec)*time.Second,
		time.Duration(c.ProgressConf.RetainDays)*24*time.Hour,
	))

	// 5. health 巡检
	health, err := service.NewHealthService(serviceContext.Client, c.HealthConf.Cron, c.HealthConf.MaxLagSec, rpcTimeout)
	if err != nil {
		panic(err)
	}
	sg.Add(health)

	logx.Infof("Starting cronos worker, program=%s worker=%s", c.ProgramConf.ProgramID, serviceContext.Worker.PublicKey.ToBase58())

	// 启动服务
	go sg.Start()

	// 等待退出信号
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logx.Info("Shutting down services...")
	sg.Stop()
}
