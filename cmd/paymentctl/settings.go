package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wekeepgrowing/ticket-payment/internal/app"
	"github.com/wekeepgrowing/ticket-payment/internal/domain/entity"
)

type settingsView struct {
	PublicKey          string            `json:"public_key"`
	PredefinedAccount  string            `json:"predefined_account"`
	HasSecretKey       bool              `json:"has_secret_key"`
	PredefinedAccounts map[string]string `json:"predefined_accounts,omitempty"`
}

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the Stripe gateway settings",
	}

	cmd.AddCommand(newSettingsShowCommand(), newSettingsSetCommand())
	return cmd
}

func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored settings without the secret key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				settings, err := c.Settings.Get(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, toSettingsView(settings, c))
			})
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	var secretKey, publicKey, predefinedAccount string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the stored settings",
		Long: `Change the stored settings. Only the given flags are changed. Selecting a
known predefined account clears the stored keys; an unknown account is
stored as no selection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input entity.SettingsInput
			flags := cmd.Flags()
			if flags.Changed("secret-key") {
				input.SecretKey = &secretKey
			}
			if flags.Changed("public-key") {
				input.PublicKey = &publicKey
			}
			if flags.Changed("predefined-account") {
				input.PredefinedAccount = &predefinedAccount
			}
			if input == (entity.SettingsInput{}) {
				return fmt.Errorf("nothing to change, use --secret-key, --public-key or --predefined-account")
			}

			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				settings, err := c.Settings.Save(ctx, input)
				if err != nil {
					return err
				}
				return printJSON(cmd, toSettingsView(settings, c))
			})
		},
	}

	cmd.Flags().StringVar(&secretKey, "secret-key", "", "Stripe secret key")
	cmd.Flags().StringVar(&publicKey, "public-key", "", "Stripe publishable key")
	cmd.Flags().StringVar(&predefinedAccount, "predefined-account", "", "Key of a predefined account, empty to clear")

	return cmd
}

func toSettingsView(settings *entity.GatewaySettings, c *app.Container) settingsView {
	view := settingsView{
		PublicKey:         settings.PublicKey,
		PredefinedAccount: settings.PredefinedAccount,
		HasSecretKey:      settings.SecretKey != "",
	}
	for key, account := range c.Config.Service.Stripe.PredefinedAccounts {
		if view.PredefinedAccounts == nil {
			view.PredefinedAccounts = map[string]string{}
		}
		view.PredefinedAccounts[key] = account.Label
	}
	return view
}
