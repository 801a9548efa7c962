// Command poolctl is a small demonstration CLI over the poolshell
// package: it spawns a pool of copies of an arbitrary line-oriented
// child process and feeds it one instruction per line of its own
// stdin, printing each instruction's recalled output. It exists to
// exercise Pool end-to-end, not as a production tool.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	flagConfigPath    string
	flagVerbose       bool
	flagSentinelCmd   string
	flagSentinelValue string
)

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "",
		"path to a pool config YAML file (see poolshell.LoadConfig); defaults unset fields otherwise")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "log pool/shell state transitions to stderr")
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(runCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "poolctl:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Drive a pool of interactive subprocess shells from the command line",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print build information",
	Run: func(*cobra.Command, []string) {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("poolctl: version info not available")
			return
		}
		fmt.Printf("poolctl: %s\n", info.Main.Version)
		fmt.Printf("go:      %s\n", info.GoVersion)
	},
}
