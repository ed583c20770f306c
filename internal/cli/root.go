package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aira-hq/hubclient/internal/app"
	"github.com/aira-hq/hubclient/internal/config"
	"github.com/aira-hq/hubclient/internal/logger"
)

const (
	cmdName = "hubctl"
	cmdDesc = `Command line client for the rule-automation hub API.`

	cmdExamples = `  # Store a token, then inspect the account:
  hubctl login --token "$HUB_TOKEN"
  hubctl me

  # Pause a rule:
  hubctl rules pause rule-1

  # Raw request with a JSON body:
  hubctl request POST /rules --data '{"raw_text":"Summarize my inbox"}'`
)

// ConfigLoader returns the runtime configuration.
type ConfigLoader func() (*config.Config, error)

type rootArgs struct {
	load ConfigLoader
	app  *app.App

	BaseURL  string
	LogLevel string
	Storage  string
}

func (ra *rootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&ra.BaseURL, "base-url", "", "Hub API base URL")
	cmd.PersistentFlags().StringVar(&ra.LogLevel, "log-level", "", "Log level, one of: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&ra.Storage, "token-storage", "", "Token storage, one of: bbolt, memory, none")

	err := cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions([]string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

// Execute runs hubctl with args. load is called once, before any subcommand
// runs; the runtime it builds is closed even when the command fails.
func Execute(ctx context.Context, load ConfigLoader, args []string, stdout, stderr io.Writer) error {
	cmd, ra := newRootCmd(load)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, ra.teardown())
}

func newRootCmd(load ConfigLoader) (*cobra.Command, *rootArgs) {
	if load == nil {
		load = config.Load
	}
	ra := &rootArgs{load: load}

	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: ra.setup,
	}
	ra.AddFlags(cmd)

	cmd.AddCommand(
		newLoginCmd(ra),
		newLogoutCmd(ra),
		newMeCmd(ra),
		newRulesCmd(ra),
		newConnectorsCmd(ra),
		newGroupsCmd(ra),
		newRequestCmd(ra),
	)
	return cmd, ra
}

func (ra *rootArgs) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := ra.load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyOverrides(cmd.Flags(), cfg); err != nil {
		return err
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	ra.app = a
	return nil
}

func (ra *rootArgs) teardown() error {
	if ra.app == nil {
		return nil
	}
	defer func() { _ = logger.Close() }()
	err := ra.app.Close()
	ra.app = nil
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLoginCmd(ra *rootArgs) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := ra.app.Login(cmd.Context(), token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "token stored")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token issued by the hub")
	if err := cmd.MarkFlagRequired("token"); err != nil {
		panic(fmt.Errorf("mark token flag: %w", err))
	}
	return cmd
}

func newLogoutCmd(ra *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ra.app.Logout(cmd.Context())
		},
	}
}

func newMeCmd(ra *rootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := ra.app.Hub().Me(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
}

func newConnectorsCmd(ra *rootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connectors",
		Short: "List connectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cs, err := ra.app.Hub().ListConnectors(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cs)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "connect ID",
		Short: "Print the URL that starts a connector's auth flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := ra.app.Hub().ConnectURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	})
	return cmd
}

func newGroupsCmd(ra *rootArgs) *cobra.Command {
	var moderated bool
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List WhatsApp groups and chats rules can target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := ra.app.Hub().ListGroups(cmd.Context(), moderated)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), g.Targets())
		},
	}
	cmd.Flags().BoolVar(&moderated, "moderated", true, "Only chats the hub moderates")
	return cmd
}
