package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagWorkers int
	flagQuiet   bool
	flagVerbose bool

	// Version info
	Version   = "1.0.0"
	BuildDate = "2025-10-03"
)

var rootCmd = &cobra.Command{
	Use:   "pkgsweep",
	Short: "Sweep a machine for known-compromised npm packages",
	Long: `pkgsweep locates known-compromised npm package identifiers across the
installation surfaces of a machine during supply-chain incident response:

  • project lockfiles (package-lock.json, pnpm-lock.yaml, yarn.lock)
  • globally installed npm packages
  • nvm-managed node runtimes and their global package trees
  • nave-managed node runtimes and their global package trees

It can additionally run a heuristic pass over manifest install scripts and
source files, flagging signatures used by recent npm supply chain
campaigns (remote fetch-and-pipe installs, injected global symbols,
credential-scanner drops, a known attacker wallet address).

Indicators are plain identifiers, one of:
  name              matches any version of the package
  name@version      matches that exact version, plus any other version of
                    the same package (broader recall on purpose)

Example usage:
  pkgsweep scan -t @ctrl/tinycolor@4.1.1 ~/projects
  pkgsweep scan -f iocs.txt --global --suspicious
  pkgsweep scan --feed-default --broad --report sweep.tsv ~
  pkgsweep check posthog-node@4.3.2 -f iocs.txt`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func setupLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableQuote:  true,
		PadLevelText:  true,
		FullTimestamp: false,
	})
	switch {
	case flagQuiet:
		logrus.SetLevel(logrus.ErrorLevel)
	case flagVerbose:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagWorkers, "workers", "w", 0, "Worker goroutines for content scanning (default scales with CPU)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")
}
