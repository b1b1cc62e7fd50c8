package main

import (
	"fmt"
	"os"

	"github.com/TY-Hongmeng/gongzhuang-mis-sub001/internal/cli"
)

var Version = "dev"

func main() {
	cli.Version = Version
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
