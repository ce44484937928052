package main

import (
	"fmt"
	"io"
	"time"

	"github.com/IliaW/bots-checker/config"
	"github.com/IliaW/bots-checker/internal/agent"
	"github.com/IliaW/bots-checker/internal/checker"
	"github.com/IliaW/bots-checker/internal/logger"
	"github.com/IliaW/bots-checker/internal/robots"
	"github.com/IliaW/bots-checker/internal/telemetry"
	"github.com/IliaW/bots-checker/util"
	"github.com/spf13/cobra"
)

type options struct {
	cfgFile       string
	output        string
	logLevel      string
	workers       int
	robotsTimeout time.Duration
	pageTimeout   time.Duration
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "botcheck <url>",
		Short: "Check whether a website is accessible to known AI crawlers.",
		Long: `botcheck fetches robots.txt once, then requests the page with the user agent
of every registered AI crawler and reports a verdict per crawler based on
robots.txt, the robots meta tag and the HTTP status.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.IntVar(&opts.workers, "workers", 0, "number of crawlers checked concurrently")
	flags.DurationVar(&opts.robotsTimeout, "robots-timeout", 0, "timeout of the robots.txt request")
	flags.DurationVar(&opts.pageTimeout, "page-timeout", 0, "timeout of every page request")

	return cmd
}

func run(cmd *cobra.Command, opts *options, url string, stdout, stderr io.Writer) error {
	if opts.output != outputTable && opts.output != outputJson {
		return fmt.Errorf("unknown output format '%s'", opts.output)
	}
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("can't initialize config. %w", err)
	}
	applyFlags(cmd, cfg, opts)
	logger.Setup(cfg, stderr)

	metrics := telemetry.SetupMetrics(cmd.Context(), cfg)
	defer metrics.Close()
	registry, err := agent.New(cfg.Agents)
	if err != nil {
		return fmt.Errorf("failed to load agents. %w", err)
	}
	httpClient := util.NewHttpClient(cfg.HttpClientSettings)
	resolver := robots.NewResolver(httpClient, cfg.CheckerSettings.RobotsUserAgent,
		cfg.CheckerSettings.RobotsTimeout, metrics.CheckMetrics.RobotsResolveCounter)
	c := checker.NewChecker(cfg.CheckerSettings, registry, resolver, httpClient, metrics.CheckMetrics)

	results, err := c.CheckSite(cmd.Context(), url)
	if err != nil {
		return err
	}

	return render(stdout, opts.output, url, results)
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *options) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("workers") {
		cfg.CheckerSettings.MaxWorkers = opts.workers
	}
	if flags.Changed("robots-timeout") {
		cfg.CheckerSettings.RobotsTimeout = opts.robotsTimeout
	}
	if flags.Changed("page-timeout") {
		cfg.CheckerSettings.PageTimeout = opts.pageTimeout
	}
}
