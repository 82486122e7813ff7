package commands

import (
	"github.com/spf13/cobra"
)

// InitializeCmd 创建 authority/config/treasury/health 以及 authority 的 daemon 与 fee
var InitializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Initialize program singletons (signer becomes admin)",
	Args:  cobra.NoArgs,
	RunE: withEnv(true, func(cmd *cobra.Command, args []string, e *env) error {
		ix, err := e.client.Builder().Initialize(e.signer.PublicKey)
		if err != nil {
			return err
		}
		return e.submit(cmd, "initialize", ix)
	}),
}
