package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jbonatakis/accomplish/internal/config"
	"github.com/jbonatakis/accomplish/internal/provider"
)

type providerKeyInput struct {
	Provider string
	APIKey   string
	Model    string
}

func (a *app) providersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List providers and whether they are ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			settings := provider.SettingsFromConfig(cfg.Providers)
			w := tabwriter.NewWriter(a.stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tSTATUS\tMODEL")
			for _, info := range provider.Supported() {
				conn := settings.Connected[info.Name]
				status := "not configured"
				if provider.Ready(info.Name, conn) {
					status = "ready"
				}
				name := info.Name
				if name == settings.ActiveProvider {
					name += " (active)"
				}
				model := conn.Model
				if model == "" {
					model = info.DefaultModel
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, status, model)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, name := range cfg.ProviderNames() {
				if _, ok := provider.Lookup(name); !ok {
					fmt.Fprintf(a.stdout, "ignoring unknown provider %q in config\n", name)
				}
			}
			if cfg.E2E {
				fmt.Fprintln(a.stdout, "\ne2e mode: tasks use the scripted provider")
			}
			return nil
		},
	}

	var in providerKeyInput
	setKey := &cobra.Command{
		Use:   "set-key",
		Short: "Store an API key for a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.Path(a.configPath)
			if err != nil {
				return err
			}
			input := in
			if strings.TrimSpace(input.Provider) == "" || strings.TrimSpace(input.APIKey) == "" {
				input, err = a.keyForm(supportedNames())
				if err != nil {
					return err
				}
			}
			if _, ok := provider.Lookup(input.Provider); !ok {
				return UsageError{Message: fmt.Sprintf("unknown provider %q (supported: %s)", input.Provider, strings.Join(supportedNames(), ", "))}
			}
			if _, err := config.UpdateFile(path, func(c *config.Config) error {
				return c.SetProviderKey(input.Provider, input.APIKey, input.Model)
			}); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "saved key for %s in %s\n", strings.ToLower(strings.TrimSpace(input.Provider)), path)
			return nil
		},
	}
	setKey.Flags().StringVar(&in.Provider, "provider", "", "provider name")
	setKey.Flags().StringVar(&in.APIKey, "api-key", "", "API key")
	setKey.Flags().StringVar(&in.Model, "model", "", "model override")

	cmd.AddCommand(setKey)
	return cmd
}

func supportedNames() []string {
	infos := provider.Supported()
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names
}

func providerKeyForm(names []string) (providerKeyInput, error) {
	var in providerKeyInput
	if len(names) == 0 {
		return in, errors.New("no providers available")
	}
	options := make([]huh.Option[string], 0, len(names))
	for _, n := range names {
		options = append(options, huh.NewOption(n, n))
	}
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Provider").
				Options(options...).
				Value(&in.Provider),
			huh.NewInput().
				Title("API key").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("API key is required")
					}
					return nil
				}).
				Value(&in.APIKey),
			huh.NewInput().
				Title("Model").
				Description("Leave empty for the provider default.").
				Value(&in.Model),
		),
	).Run()
	return in, err
}
