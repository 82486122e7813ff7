package commands

import (
	"context"
	"fmt"
	"strconv"

	pkgtypes "cronos-client-sol/internal/pkg/types"
	"cronos-client-sol/internal/program/state"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/cobra"
)

// ConfigCmd 程序配置
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or update the program config",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var ConfigGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the program config with the authority and treasury addresses",
	Args:  cobra.NoArgs,
	RunE: withEnv(false, func(cmd *cobra.Command, args []string, e *env) error {
		pda, err := state.ConfigPDA(e.client.ProgramID())
		if err != nil {
			return err
		}
		cfg, err := e.client.Config(e.ctx)
		if err != nil {
			return err
		}
		_, authority, err := e.client.Authority(e.ctx)
		if err != nil {
			return fmt.Errorf("read authority: %w", err)
		}
		_, treasury, err := e.client.Treasury(e.ctx)
		if err != nil {
			return fmt.Errorf("read treasury: %w", err)
		}
		printConfig(cmd.OutOrStdout(), pda.Address, cfg, authority.Address, treasury.Address)
		return nil
	}),
}

var ConfigSetAdminCmd = &cobra.Command{
	Use:   "set-admin <address>",
	Short: "Transfer the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		newAdmin, err := pkgtypes.TryPubkeyFromBase58(args[0])
		if err != nil {
			return err
		}
		ix, err := e.client.ConfigUpdateAdmin(e.ctx, newAdmin.ToCommon())
		if err != nil {
			return err
		}
		return e.submit(cmd, "config_update_admin", ix)
	}),
}

var ConfigSetProgramFeeCmd = &cobra.Command{
	Use:   "set-program-fee <lamports>",
	Short: "Set the per-execution program fee",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		return setFee(cmd, e, args[0], "config_update_program_fee", e.client.ConfigUpdateProgramFee)
	}),
}

var ConfigSetWorkerFeeCmd = &cobra.Command{
	Use:   "set-worker-fee <lamports>",
	Short: "Set the per-execution worker fee",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		return setFee(cmd, e, args[0], "config_update_worker_fee", e.client.ConfigUpdateWorkerFee)
	}),
}

func setFee(cmd *cobra.Command, e *env, raw, memo string, build func(ctx context.Context, v uint64) (types.Instruction, error)) error {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return err
	}
	ix, err := build(e.ctx, v)
	if err != nil {
		return err
	}
	return e.submit(cmd, memo, ix)
}

func init() {
	ConfigCmd.AddCommand(ConfigGetCmd)
	ConfigCmd.AddCommand(ConfigSetAdminCmd)
	ConfigCmd.AddCommand(ConfigSetProgramFeeCmd)
	ConfigCmd.AddCommand(ConfigSetWorkerFeeCmd)
}
