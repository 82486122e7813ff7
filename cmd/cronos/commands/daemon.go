package commands

import (
	pkgtypes "cronos-client-sol/internal/pkg/types"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/spf13/cobra"
)

// DaemonCmd daemon 是任务的签名者，每个 owner 一个
var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage your daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var DaemonCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the daemon (and its fee account) for the signer",
	Args:  cobra.NoArgs,
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		ix, err := e.client.Builder().DaemonCreate(e.signer.PublicKey)
		if err != nil {
			return err
		}
		return e.submit(cmd, "daemon_create", ix)
	}),
}

var DaemonGetCmd = &cobra.Command{
	Use:   "get [owner]",
	Short: "Print a daemon (defaults to the signer's)",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEnv(false, func(cmd *cobra.Command, args []string, e *env) error {
		owner, err := ownerArg(args, e)
		if err != nil {
			return err
		}
		d, pda, err := e.client.Daemon(e.ctx, owner)
		if err != nil {
			return err
		}
		printDaemon(cmd.OutOrStdout(), pda.Address, d)
		return nil
	}),
}

var (
	invokeIxFile string
	invokeMemo   string
)

var DaemonInvokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Invoke an instruction immediately, signed by your daemon",
	Args:  cobra.NoArgs,
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		inner, err := loadInnerIx(invokeIxFile, invokeMemo)
		if err != nil {
			return err
		}
		ix, err := e.client.Builder().DaemonInvoke(e.signer.PublicKey, inner)
		if err != nil {
			return err
		}
		return e.submit(cmd, "daemon_invoke", ix)
	}),
}

// ownerArg 第一个参数为 owner，缺省为当前签名者
func ownerArg(args []string, e *env) (common.PublicKey, error) {
	if len(args) == 0 {
		return e.signer.PublicKey, nil
	}
	pk, err := pkgtypes.TryPubkeyFromBase58(args[0])
	if err != nil {
		return common.PublicKey{}, err
	}
	return pk.ToCommon(), nil
}

func init() {
	DaemonInvokeCmd.Flags().StringVar(&invokeIxFile, "ix-file", "", "JSON file describing the instruction")
	DaemonInvokeCmd.Flags().StringVar(&invokeMemo, "memo", "", "invoke a memo instruction with this text")

	DaemonCmd.AddCommand(DaemonCreateCmd)
	DaemonCmd.AddCommand(DaemonGetCmd)
	DaemonCmd.AddCommand(DaemonInvokeCmd)
}
