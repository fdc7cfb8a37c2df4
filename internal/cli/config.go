package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/certportal/internal/cli/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the client configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *appConfig
		if shown.Token != "" {
			shown.Token = "********"
		}
		data, err := yaml.Marshal(&shown)
		if err != nil {
			return err
		}
		fmt.Println(ui.FormatInfo("Config: " + configPath))
		fmt.Print(string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setConfigValue(args[0], args[1]); err != nil {
			return err
		}
		if err := appConfig.Save(configPath); err != nil {
			return err
		}
		fmt.Println(ui.FormatSuccess(fmt.Sprintf("%s updated", args[0])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func setConfigValue(key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return n, nil
	}

	var err error
	switch key {
	case "base_url":
		appConfig.BaseURL = value
	case "template_mode":
		if value != "predefined" && value != "upload" {
			return fmt.Errorf("template_mode must be predefined or upload")
		}
		appConfig.TemplateMode = value
	case "progress_mode":
		if value != "polled" && value != "simulated" {
			return fmt.Errorf("progress_mode must be polled or simulated")
		}
		appConfig.ProgressMode = value
	case "token":
		appConfig.Token = value
	case "poll_interval_ms":
		appConfig.PollIntervalMS, err = atoi()
	case "request_timeout_s":
		appConfig.RequestTimeoutS, err = atoi()
	case "preview_width":
		appConfig.PreviewWidth, err = atoi()
	case "preview_height":
		appConfig.PreviewHeight, err = atoi()
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return err
}
