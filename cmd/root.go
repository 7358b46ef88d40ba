package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/clipshr/internal/app"
	"github.com/tanq16/clipshr/internal/config"
	clipimage "github.com/tanq16/clipshr/internal/downloaders/image"
	clipytdlp "github.com/tanq16/clipshr/internal/downloaders/ytdlp"
	"github.com/tanq16/clipshr/internal/media"
	"github.com/tanq16/clipshr/internal/orchestrator"
	"github.com/tanq16/clipshr/internal/output"
	"github.com/tanq16/clipshr/internal/utils"
)

var (
	homeDir       string
	timeout       time.Duration
	probeTimeout  time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	ffmpegPath    string
	headers       []string
	debug         bool

	state            *app.State
	globalHTTPConfig utils.HTTPClientConfig
)

var ClipshrVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "clipshr",
	Short:   "clipshr downloads videos, audio and images from a link",
	Version: ClipshrVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.InitLogger(debug)
		var err error
		state, err = app.Load(homeDir)
		if err != nil {
			return err
		}
		output.ApplyTheme(state.Config.Theme)
		globalHTTPConfig = buildHTTPConfig()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd.Context())
	},
}

// buildHTTPConfig merges flags, env overrides and the keyring password.
func buildHTTPConfig() utils.HTTPClientConfig {
	if userAgent == "randomize" {
		userAgent = utils.GetRandomUserAgent()
	}
	proxy := proxyURL
	if proxy == "" {
		proxy = state.Overrides.Proxy
	}
	cfg := utils.HTTPClientConfig{
		Timeout:       timeout,
		ProxyURL:      proxy,
		ProxyUsername: proxyUsername,
		UserAgent:     userAgent,
		Headers:       utils.ParseHeaderArgs(headers),
	}
	cfg.SplitProxyAuth()
	if cfg.ProxyUsername != "" && cfg.ProxyPassword == "" {
		password, err := config.ProxyPassword(cfg.ProxyUsername)
		if err != nil {
			log.Warn().Str("op", "cmd/buildHTTPConfig").Err(err).Msg("Could not read proxy password from keyring")
		}
		cfg.ProxyPassword = password
	}
	return cfg
}

func newOrchestrator() *orchestrator.Orchestrator {
	client := clipytdlp.NewClient(clipytdlp.Options{
		Proxy:        globalHTTPConfig.ProxyString(),
		ProbeTimeout: probeTimeout,
	})
	images := clipimage.NewFromConfig(globalHTTPConfig)
	return orchestrator.New(client, images, func(ctx context.Context) error {
		return media.CheckFFmpeg(ctx, ffmpegPath)
	})
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		output.PrintError(err.Error())
		os.Exit(1)
	}
}

func fatal(format string, args ...any) {
	output.PrintError(fmt.Sprintf(format, args...))
	os.Exit(1)
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Directory holding config.json and history.json (default: current directory)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", utils.DefaultTimeout, "HTTP timeout for image links (eg. 30s, 2m)")
	rootCmd.PersistentFlags().DurationVar(&probeTimeout, "probe-timeout", 2*time.Minute, "Timeout for fetching media details")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", clipimage.DefaultUserAgent, "User agent for image links ('randomize' picks one)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username, password is read from the keyring (see proxy-login)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers for image links (like 'Referer: https://example.com'); can be specified multiple times")
	rootCmd.PersistentFlags().StringVar(&ffmpegPath, "ffmpeg", "", "Path to the ffmpeg binary (default: ffmpeg on PATH)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newProxyLoginCmd())
	rootCmd.AddCommand(newInteractiveCmd())
	rootCmd.AddCommand(newCleanCmd())
}
