package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/monopole/poolshell"
	"github.com/monopole/poolshell/sentinelcmd"
)

var (
	flagQuitCmd     string
	flagMinPoolSize int
	flagMaxPoolSize int
	flagReserveSize int
)

var runCmd = &cobra.Command{
	Use:   "run -- <child command> [args...]",
	Short: "spawn a pool of the given child command and feed it stdin, one instruction per line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  doRun,
}

func init() {
	runCmd.Flags().StringVar(&flagSentinelCmd, "sentinel-cmd", "echo __poolctl_done__",
		"a cheap, deterministic command the child runs after every real instruction, to mark it complete")
	runCmd.Flags().StringVar(&flagSentinelValue, "sentinel-value", "__poolctl_done__",
		"the line sentinel-cmd is expected to print")
	runCmd.Flags().StringVar(&flagQuitCmd, "quit-cmd", "",
		"an instruction that asks the child to exit on its own; if unset, shells are force-killed on shutdown")
	runCmd.Flags().IntVar(&flagMinPoolSize, "min", 1, "minimum pool size")
	runCmd.Flags().IntVar(&flagMaxPoolSize, "max", 4, "maximum pool size")
	runCmd.Flags().IntVar(&flagReserveSize, "reserve", 0, "spare ready shells to keep beyond demand")
}

// doRun loads a base Config (from --config, if given), lets the
// explicitly-set run flags win over it, then pumps stdin into the
// resulting pool one instruction at a time, printing each
// instruction's recalled output as it completes.
func doRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("min") {
		cfg.MinPoolSize = flagMinPoolSize
	}
	if cmd.Flags().Changed("max") {
		cfg.MaxPoolSize = flagMaxPoolSize
	}
	if cmd.Flags().Changed("reserve") {
		cfg.ReserveSize = flagReserveSize
	}
	if flagVerbose {
		cfg.Verbose = true
	}

	sentinel := sentinelcmd.Sentinel{C: flagSentinelCmd, V: flagSentinelValue}
	if err := sentinel.Validate(); err != nil {
		return fmt.Errorf("sentinel: %w", err)
	}

	var logger poolshell.Logger
	if cfg.Verbose {
		logger = stderrLogger{}
	}

	factory := sentinelcmd.NewManagerFactory(sentinelcmd.Options{
		Spawn:             func() *exec.Cmd { return exec.Command(args[0], args[1:]...) },
		StartsUpInstantly: true,
		Terminate:         quitTerminator(),
	})

	pool, err := poolshell.New(factory, cfg, logger)
	if err != nil {
		return fmt.Errorf("starting pool: %w", err)
	}
	defer pool.Shutdown()

	return pumpInstructions(pool, sentinel)
}

func quitTerminator() func(poolshell.Shell) bool {
	if flagQuitCmd == "" {
		return nil
	}
	return sentinelcmd.QuitTerminator(flagQuitCmd)
}

func pumpInstructions(pool *poolshell.Pool, sentinel sentinelcmd.Sentinel) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		instruction := scanner.Text()
		if instruction == "" {
			continue
		}

		rc := sentinelcmd.NewRecallCommand(instruction, sentinel)
		sub := sentinelcmd.NewSubmission(false, rc.Commands())

		future, err := pool.Submit(sub)
		if err != nil {
			fmt.Fprintln(os.Stderr, "poolctl:", err)
			continue
		}
		if err := future.Await(); err != nil {
			fmt.Fprintln(os.Stderr, "poolctl:", err)
			continue
		}
		for _, line := range rc.Out.Lines() {
			fmt.Println(line)
		}
		for _, line := range rc.Err.Lines() {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	return scanner.Err()
}

func loadConfig() (poolshell.Config, error) {
	if flagConfigPath == "" {
		return poolshell.Config{
			MinPoolSize: flagMinPoolSize,
			MaxPoolSize: flagMaxPoolSize,
			ReserveSize: flagReserveSize,
		}, nil
	}
	return poolshell.LoadConfig(flagConfigPath)
}

type stderrLogger struct{}

func (stderrLogger) Printf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
