package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"cronos-client-sol/internal/program/errcode"
	"cronos-client-sol/internal/program/idl"

	"github.com/spf13/cobra"
)

var idlErrorsJSON bool

// IdlCmd 输出嵌入的 IDL，离线可用
var IdlCmd = &cobra.Command{
	Use:   "idl",
	Short: "Print the embedded program IDL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(idl.Raw())
		return err
	},
}

var IdlErrorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List the program's custom error codes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := idl.Load()
		if err != nil {
			return err
		}
		return printErrors(cmd.OutOrStdout(), p, idlErrorsJSON)
	},
}

func printErrors(w io.Writer, p *idl.IDL, asJSON bool) error {
	all := errcode.All()
	if asJSON {
		raw, err := json.MarshalIndent(all, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "CODE\tHEX\tNAME\tMESSAGE")
	for _, e := range all {
		name := e.Name
		// 客户端目录与 IDL 不一致时标出来
		if def, ok := p.ErrorByCode(uint32(e.Code)); !ok {
			name += " (missing in idl)"
		} else if def.Name != e.Name {
			name += " (idl: " + def.Name + ")"
		}
		fmt.Fprintf(tw, "%d\t0x%x\t%s\t%s\n", e.Code, uint32(e.Code), name, e.Msg)
	}
	return tw.Flush()
}

func init() {
	IdlErrorsCmd.Flags().BoolVar(&idlErrorsJSON, "json", false, "print as json")
	IdlCmd.AddCommand(IdlErrorsCmd)
}
