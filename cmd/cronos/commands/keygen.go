package commands

import (
	"fmt"
	"os"

	"cronos-client-sol/internal/client"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/spf13/cobra"
)

var (
	keygenOutfile string
	keygenForce   bool
)

// KeygenCmd 生成 worker / daemon owner 使用的密钥文件
var KeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a keypair file (solana-keygen format)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		acc, err := keygen(keygenOutfile, keygenForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pubkey: %s\nwrote: %s\n", acc.PublicKey.ToBase58(), keygenOutfile)
		return nil
	},
}

func keygen(path string, force bool) (types.Account, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return types.Account{}, fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	acc := types.NewAccount()
	if err := client.SaveKeypair(path, acc); err != nil {
		return types.Account{}, err
	}
	return acc, nil
}

func init() {
	KeygenCmd.Flags().StringVarP(&keygenOutfile, "outfile", "o", "id.json", "output keypair file")
	KeygenCmd.Flags().BoolVar(&keygenForce, "force", false, "overwrite an existing file")
}
