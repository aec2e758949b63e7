package kv

import (
	"fmt"
	"github.com/spf13/cobra"
	"os"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if err := rpcStore.SetContext(cmd.Context(), key, []byte(value)); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Long:  "Reads the value for a key. Prints the value or (nil) if the key is not set. With --raw the value is written to stdout unchanged and a missing key exits with an error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, ok, err := rpcStore.GetContext(cmd.Context(), key)
			if err != nil {
				return err
			}

			raw, _ := cmd.Flags().GetBool("raw")
			switch {
			case raw && !ok:
				return fmt.Errorf("key %q not found", key)
			case raw:
				_, err = os.Stdout.Write(value)
				return err
			case !ok:
				fmt.Println("(nil)")
			default:
				fmt.Printf("%q\n", value)
			}
			return nil
		},
	}
)

func init() {
	getCmd.Flags().Bool("raw", false, "Print the value without quoting")
}
