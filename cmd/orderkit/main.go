package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/autom8ter/orderkit/kv/badger"
)

func main() {
	cmd := &cobra.Command{
		Use:   "orderkit",
		Short: "orderkit explains order by index decisions and runs update statements",
	}
	cmd.AddCommand(explainCmd(), updateCmd())
	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
