package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/certportal/internal/cli/ui"
	"github.com/certportal/internal/portal"
)

var (
	loginToken    string
	loginProvider string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange an identity-provider ID token for a portal session",
	Long: "Signs in with an ID token obtained from the identity provider and stores\n" +
		"the returned portal bearer in the config file. The token can also be\n" +
		"passed through CERTCTL_ID_TOKEN.",
	RunE: func(cmd *cobra.Command, args []string) error {
		token := loginToken
		if token == "" {
			token = os.Getenv("CERTCTL_ID_TOKEN")
		}

		redirect, err := portal.Login(getContext(), client, portal.StaticTokenProvider{Token: token}, loginProvider)
		if err != nil {
			return err
		}

		appConfig.Token = client.Bearer()
		if err := appConfig.Save(configPath); err != nil {
			return err
		}

		fmt.Println(ui.FormatSuccess("Signed in"))
		if redirect != "" {
			fmt.Println(ui.FormatMuted("landing page: " + redirect))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "identity-provider ID token")
	loginCmd.Flags().StringVar(&loginProvider, "provider", "google", "identity provider name")
}
