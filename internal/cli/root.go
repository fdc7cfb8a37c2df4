package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/certportal/internal/cli/ui"
	"github.com/certportal/internal/portal"
	"github.com/certportal/internal/portal/clientconfig"
)

var (
	configPath string
	theme      string

	appConfig *clientconfig.Config
	client    *portal.Client
)

var rootCmd = &cobra.Command{
	Use:   "certctl",
	Short: "certctl - certificate portal client",
	Long: ui.FormatTitle("certctl") + " - Certificate Portal Client\n\n" +
		"Upload recipient lists, place names on templates, run bulk generation\n" +
		"and look up issued certificates from the terminal.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeApp,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(describe(err)))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", clientconfig.DefaultPath(), "path to the client config file")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "auto", "color theme: auto, dark or light")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(placeCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(jobCmd)
	rootCmd.AddCommand(configCmd)
}

func initializeApp(cmd *cobra.Command, args []string) error {
	ui.SetTheme(theme)

	cfg, err := clientconfig.Load(configPath)
	if err != nil {
		return err
	}
	appConfig = cfg

	client = portal.NewClient(cfg.BaseURL, cfg.RequestTimeout())
	client.SetBearer(cfg.Token)
	return nil
}

func getContext() context.Context {
	return context.Background()
}

// describe turns client errors into the text an operator should see.
func describe(err error) string {
	var apiErr *portal.APIError
	var netErr *portal.NetworkError
	var provErr *portal.ProviderError
	switch {
	case errors.As(err, &provErr):
		return portal.ProviderMessage(provErr)
	case errors.As(err, &netErr):
		return "Network error: " + netErr.Err.Error()
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.As(err, &apiErr):
		return fmt.Sprintf("request failed with status %d", apiErr.Status)
	default:
		return err.Error()
	}
}
