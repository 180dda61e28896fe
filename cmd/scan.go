package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pkgsweep/config"
	"pkgsweep/ioc"
	"pkgsweep/report"
	"pkgsweep/scanner"
)

var (
	flagTerms       string
	flagTermsFile   string
	flagFeed        string
	flagFeedDefault bool
	flagGlobal      bool
	flagNvmDir      string
	flagNaveDir     string
	flagSuspicious  bool
	flagBroad       bool
	flagReport      string
	flagConfig      string
	flagTimeout     time.Duration
)

var scanCmd = &cobra.Command{
	Use:   "scan [roots...]",
	Short: "Scan for compromised package identifiers",
	Long: `Scan project directories and the local machine for indicator-of-compromise
package identifiers.

Scopes run in a fixed order: project lockfiles, globally installed
packages (with --global), nvm-managed runtimes, nave-managed runtimes,
then the heuristic script/code scan (with --suspicious or --broad).

Indicators come from -t (inline, comma separated), -f (file, one per line,
'#' comments), a remote CSV feed (--feed / --feed-default), a config file,
or any combination. The run fails before scanning if none remain.

Examples:
  pkgsweep scan -t @ctrl/tinycolor@4.1.1            # scan current directory
  pkgsweep scan -f iocs.txt ~/projects /srv/apps    # several roots
  pkgsweep scan -f iocs.txt --global                # include npm -g packages
  pkgsweep scan -f iocs.txt --nvm-dir /opt/nvm      # non-default nvm layout
  pkgsweep scan -f iocs.txt --suspicious            # script + curated code scan
  pkgsweep scan -f iocs.txt --broad                 # scan all non-dependency files
  pkgsweep scan -f iocs.txt --report sweep.tsv      # persist a TSV report`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&flagTerms, "terms", "t", "", "Inline indicator terms, comma separated (name or name@version)")
	scanCmd.Flags().StringVarP(&flagTermsFile, "terms-file", "f", "", "File of indicator terms, one per line")
	scanCmd.Flags().StringVar(&flagFeed, "feed", "", "URL of a Package,Version CSV feed of compromised packages")
	scanCmd.Flags().BoolVar(&flagFeedDefault, "feed-default", false, "Load the Wiz Research Shai-Hulud package feed")
	scanCmd.Flags().BoolVarP(&flagGlobal, "global", "g", false, "Also check globally installed npm packages")
	scanCmd.Flags().StringVar(&flagNvmDir, "nvm-dir", "", "nvm base directory (default: $NVM_DIR or ~/.nvm)")
	scanCmd.Flags().StringVar(&flagNaveDir, "nave-dir", "", "nave base directory (default: ~/.nave)")
	scanCmd.Flags().BoolVar(&flagSuspicious, "suspicious", false, "Heuristic scan of manifest scripts and curated code files")
	scanCmd.Flags().BoolVar(&flagBroad, "broad", false, "Heuristic scan of every non-dependency file (implies --suspicious)")
	scanCmd.Flags().StringVar(&flagReport, "report", "", "Write a TSV report to this path")
	scanCmd.Flags().StringVar(&flagConfig, "config", "", "TOML config file supplying defaults")
	scanCmd.Flags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "Timeout per external call (npm query, feed download)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, fileTerms, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	terms, err := collectTerms(ctx, cfg, fileTerms)
	if err != nil {
		return err
	}
	matcher, err := ioc.Compile(terms)
	if err != nil {
		return err
	}
	logrus.Infof("loaded %d indicator terms", len(terms))

	var tsv *os.File
	if cfg.ReportPath != "" {
		tsv, err = os.Create(cfg.ReportPath)
		if err != nil {
			return fmt.Errorf("report file: %w", err)
		}
		defer tsv.Close()
	}
	sink := report.NewSink(os.Stdout, tsvWriter(tsv))

	err = scanner.New(cfg, matcher, sink).Run(ctx)
	if err != nil {
		logrus.Warnf("scan cancelled, partial results flushed: %v", err)
	}

	if cfg.ReportPath != "" {
		logrus.Infof("report written to %s", cfg.ReportPath)
	}
	if n := sink.Count(); n > 0 {
		logrus.Warnf("%d matches found, review the locations above", n)
	} else {
		logrus.Info("no matches found")
	}
	return nil
}

// tsvWriter keeps a nil *os.File from turning into a non-nil interface.
func tsvWriter(f *os.File) io.Writer {
	if f == nil {
		return nil
	}
	return f
}

// buildConfig layers the run configuration: built-in defaults, then the
// optional config file, then every explicitly set flag.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, []string, error) {
	cfg := config.Default()
	var fileTerms []string

	if flagConfig != "" {
		f, err := config.LoadFile(flagConfig)
		if err != nil {
			return nil, nil, err
		}
		f.Apply(cfg)
		fileTerms = f.Terms
	}

	fl := cmd.Flags()
	if len(args) > 0 {
		cfg.Roots = args
	}
	if fl.Changed("global") {
		cfg.CheckGlobal = flagGlobal
	}
	if fl.Changed("nvm-dir") {
		cfg.NvmDir = flagNvmDir
	}
	if fl.Changed("nave-dir") {
		cfg.NaveDir = flagNaveDir
	}
	if fl.Changed("report") {
		cfg.ReportPath = flagReport
	}
	if fl.Changed("timeout") {
		cfg.Timeout = flagTimeout
	}
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	switch {
	case flagBroad:
		cfg.Suspicious = config.SuspiciousBroad
	case flagSuspicious:
		cfg.Suspicious = config.SuspiciousScripts
	}
	switch {
	case fl.Changed("feed"):
		cfg.FeedURL = flagFeed
	case flagFeedDefault:
		cfg.FeedURL = ioc.DefaultFeedURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, fileTerms, nil
}

// collectTerms merges every configured term source. A feed failure is
// fatal only when the feed was the sole source; otherwise the run
// degrades to the locally supplied terms.
func collectTerms(ctx context.Context, cfg *config.Config, fileTerms []string) ([]string, error) {
	terms, err := ioc.LoadTerms(flagTerms, flagTermsFile)
	if err != nil && !errors.Is(err, ioc.ErrNoTerms) {
		return nil, err
	}
	for _, raw := range fileTerms {
		if t := ioc.NormalizeTerm(raw); t != "" {
			terms = append(terms, t)
		}
	}
	if cfg.FeedURL != "" {
		feedTerms, err := ioc.FetchFeed(ctx, cfg.FeedURL, cfg.Timeout)
		if err != nil {
			if len(terms) == 0 {
				return nil, err
			}
			logrus.Warnf("continuing without feed: %v", err)
		} else {
			logrus.Infof("loaded %d terms from feed", len(feedTerms))
			terms = append(terms, feedTerms...)
		}
	}
	if len(terms) == 0 {
		return nil, ioc.ErrNoTerms
	}
	return terms, nil
}
