package main

import (
	"fmt"
	"os"

	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/batch"
	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/categorize"
	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/detect"
	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/importcmd"
	"github.com/davidbugayov/Financeanalyzer-sub008/cmd/root"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(detect.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
