package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"cronos-client-sol/internal/client"
	"cronos-client-sol/internal/pkg/logger"
	pkgtypes "cronos-client-sol/internal/pkg/types"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/cobra"
)

const (
	envRPCURL    = "CRONOS_RPC_URL"
	envProgramID = "CRONOS_PROGRAM_ID"
	envKeypair   = "CRONOS_KEYPAIR"
)

// 全局参数
var (
	rpcURL      string
	keypairPath string
	programID   string
	logLevel    string
	timeout     time.Duration
)

// RootCmd cronos 命令行入口
var RootCmd = &cobra.Command{
	Use:   "cronos",
	Short: "Operate the cronos task scheduler program",
	Long: `cronos - client for the cronos on-chain task scheduler.

Available commands:
  initialize  - Initialize program singletons
  config      - Read or update the program config
  daemon      - Manage your daemon (task signer)
  task        - Create, inspect, cancel or execute tasks
  health      - Inspect and schedule the health check
  admin       - Admin-only task operations
  fee         - Inspect and collect daemon fees
  blocktime   - Print the cluster unix timestamp
  idl         - Print the embedded IDL and error codes
  keygen      - Generate a keypair file

Examples:
  cronos daemon create
  cronos task create --memo "hello" --exec-at +30s --recurr 60s --stop-at +1h
  cronos task list --daemon mine`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.LogOption{Format: "console", Level: logLevel})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&rpcURL, "url", "u", envOr(envRPCURL, "http://127.0.0.1:8899"), "Solana JSON-RPC endpoint")
	RootCmd.PersistentFlags().StringVarP(&keypairPath, "keypair", "k", envOr(envKeypair, "~/.config/solana/id.json"), "signer keypair file")
	RootCmd.PersistentFlags().StringVarP(&programID, "program-id", "p", os.Getenv(envProgramID), "cronos program address")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for each command")

	RootCmd.AddCommand(InitializeCmd)
	RootCmd.AddCommand(ConfigCmd)
	RootCmd.AddCommand(DaemonCmd)
	RootCmd.AddCommand(TaskCmd)
	RootCmd.AddCommand(HealthCmd)
	RootCmd.AddCommand(AdminCmd)
	RootCmd.AddCommand(FeeCmd)
	RootCmd.AddCommand(BlocktimeCmd)
	RootCmd.AddCommand(IdlCmd)
	RootCmd.AddCommand(KeygenCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// env 单条命令的运行环境
type env struct {
	ctx    context.Context
	cancel context.CancelFunc
	client *client.Client
	signer types.Account
}

// newEnv 构造客户端；needSigner 为 false 时密钥文件缺失不报错（只读命令）
func newEnv(needSigner bool) (*env, error) {
	if programID == "" {
		return nil, fmt.Errorf("program id is required (--program-id or %s)", envProgramID)
	}
	pid, err := pkgtypes.TryPubkeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}

	signer, err := client.LoadKeypair(keypairPath)
	if err != nil {
		if needSigner {
			return nil, err
		}
		signer = types.NewAccount()
	}

	chain, err := client.NewRPCChain(rpcURL)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return &env{
		ctx:    ctx,
		cancel: cancel,
		client: client.New(chain, pid.ToCommon(), signer),
		signer: signer,
	}, nil
}

func (e *env) Close() {
	e.cancel()
}

// submit 签名提交并打印签名
func (e *env) submit(cmd *cobra.Command, memo string, ixs ...types.Instruction) error {
	sig, err := e.client.SignAndSubmit(e.ctx, memo, ixs)
	if err != nil {
		return fmt.Errorf("%s: %w", memo, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "signature: %s\n", sig)
	return nil
}

// withEnv 包装 RunE，统一创建与释放 env
func withEnv(needSigner bool, run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(needSigner)
		if err != nil {
			return err
		}
		defer e.Close()
		return run(cmd, args, e)
	}
}
