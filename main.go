// Package main provides the entry point for the bill2ledger CLI application.
package main

import (
	"os"

	"github.com/penghee/alipay2moneywiz-sub001/cmd/categorizecmd"
	"github.com/penghee/alipay2moneywiz-sub001/cmd/importcmd"
	"github.com/penghee/alipay2moneywiz-sub001/cmd/root"
	"github.com/penghee/alipay2moneywiz-sub001/cmd/validatecmd"
)

func main() {
	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(categorizecmd.Cmd)
	root.Cmd.AddCommand(validatecmd.Cmd)

	if err := root.Cmd.Execute(); err != nil {
		root.Log.Error(err.Error())
		os.Exit(1)
	}
}
