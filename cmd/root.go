package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"facecam/config"
)

// Version is the application version.
const Version = "0.1.0"

type flagOptions struct {
	ConfigPath string
	Source     string
	Headless   bool
	ListenAddr string
	LogLevel   string
}

var opts flagOptions

var rootCmd = &cobra.Command{
	Use:     "facecam",
	Short:   "Live webcam view with a face crop beside it",
	Version: Version,
	// Bad config is reported by RunE; usage text would bury it.
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), c)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "JSON or YAML config file, watched for changes")
	rootCmd.Flags().StringVarP(&opts.Source, "source", "s", "", "Camera index or video file/URI (default 0)")
	rootCmd.Flags().BoolVar(&opts.Headless, "headless", false, "Run without a window; serve the panes over HTTP only")
	rootCmd.Flags().StringVarP(&opts.ListenAddr, "listen", "l", "", "Address for the web endpoints, empty string disables (default :8080)")
	rootCmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level (default info)")
}

// loadConfig reads the config file, if any, and applies the flags the user
// set on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if opts.ConfigPath != "" {
		if err := config.Load(cmd.Context(), opts.ConfigPath); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	c := *config.Get()

	flags := cmd.Flags()
	if flags.Changed("source") {
		c.Source = opts.Source
	}
	if flags.Changed("headless") {
		c.Headless = opts.Headless
	}
	if flags.Changed("listen") {
		c.ListenAddr = opts.ListenAddr
	}
	if flags.Changed("log-level") {
		c.LogLevel = opts.LogLevel
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

func setLevel(name string) {
	level, err := log.ParseLevel(name)
	if err != nil {
		log.Errorf("Ignoring log level %q: %v", name, err)
		return
	}
	if level != log.GetLevel() {
		log.SetLevel(level)
		log.Infof("Log level now %v", level)
	}
}
