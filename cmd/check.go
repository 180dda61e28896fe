package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"pkgsweep/ioc"
)

var checkCmd = &cobra.Command{
	Use:   "check <name[@version]>",
	Short: "Check one package identifier against the indicator set",
	Long: `Check whether a single package identifier is covered by the loaded
indicator terms, without scanning anything on disk.

The indicator set comes from the same sources as scan: -t, -f, --feed or
--feed-default.

Examples:
  pkgsweep check posthog-node@4.3.2 -f iocs.txt
  pkgsweep check @asyncapi/specs@6.8.2 --feed-default
  pkgsweep check kill-port -t kill-port@2.0.3`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&flagTerms, "terms", "t", "", "Inline indicator terms, comma separated")
	checkCmd.Flags().StringVarP(&flagTermsFile, "terms-file", "f", "", "File of indicator terms, one per line")
	checkCmd.Flags().StringVar(&flagFeed, "feed", "", "URL of a Package,Version CSV feed of compromised packages")
	checkCmd.Flags().BoolVar(&flagFeedDefault, "feed-default", false, "Load the Wiz Research Shai-Hulud package feed")
}

func runCheck(cmd *cobra.Command, args []string) error {
	id := ioc.NormalizeTerm(args[0])
	if id == "" {
		return errors.New("empty package identifier")
	}

	if i := strings.LastIndex(id, "@"); i > 0 {
		if v := id[i+1:]; !semver.IsValid("v" + v) {
			logrus.Warnf("version %q does not look like a semantic version", v)
		}
	}

	ctx := context.Background()

	terms, err := ioc.LoadTerms(flagTerms, flagTermsFile)
	if err != nil && !errors.Is(err, ioc.ErrNoTerms) {
		return err
	}
	feedURL := flagFeed
	if feedURL == "" && flagFeedDefault {
		feedURL = ioc.DefaultFeedURL
	}
	if feedURL != "" {
		feedTerms, err := ioc.FetchFeed(ctx, feedURL, 30*time.Second)
		if err != nil {
			if len(terms) == 0 {
				return err
			}
			logrus.Warnf("continuing without feed: %v", err)
		} else {
			terms = append(terms, feedTerms...)
		}
	}
	if len(terms) == 0 {
		return ioc.ErrNoTerms
	}

	matcher, err := ioc.Compile(terms)
	if err != nil {
		return err
	}
	logrus.Infof("checking against %d indicator terms", len(terms))

	if matcher.Match(id) {
		fmt.Printf("MATCH: %s is covered by the indicator set (matched %q)\n", id, matcher.First(id))
		fmt.Println("Do not install or keep this package. Remove it and rotate credentials.")
	} else {
		fmt.Printf("no match: %s is not covered by the loaded indicators\n", id)
	}
	return nil
}
