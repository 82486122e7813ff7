package commands

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/spf13/cobra"
)

// FeeCmd daemon 的 fee 账户累积 program fee，可被收取到 treasury
var FeeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Inspect and collect daemon fees",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// daemonArg 参数为 daemon 地址，缺省为当前签名者的 daemon
func daemonArg(args []string, e *env) (common.PublicKey, error) {
	if len(args) > 0 {
		return pubkeyArg(args[0])
	}
	_, pda, err := e.client.Daemon(e.ctx, e.signer.PublicKey)
	if err != nil {
		return common.PublicKey{}, err
	}
	return pda.Address, nil
}

var FeeGetCmd = &cobra.Command{
	Use:   "get [daemon]",
	Short: "Print a daemon's fee account",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEnv(false, func(cmd *cobra.Command, args []string, e *env) error {
		daemon, err := daemonArg(args, e)
		if err != nil {
			return err
		}
		f, err := e.client.Fee(e.ctx, daemon)
		if err != nil {
			return err
		}
		printFee(cmd.OutOrStdout(), f)
		return nil
	}),
}

var FeeCollectCmd = &cobra.Command{
	Use:   "collect [daemon]",
	Short: "Move a daemon's fee balance into the treasury",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		daemon, err := daemonArg(args, e)
		if err != nil {
			return err
		}
		ix, err := e.client.FeeCollect(e.ctx, daemon)
		if err != nil {
			return err
		}
		return e.submit(cmd, "fee_collect", ix)
	}),
}

func init() {
	FeeCmd.AddCommand(FeeGetCmd)
	FeeCmd.AddCommand(FeeCollectCmd)
}
