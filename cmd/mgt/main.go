package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cl "magnate/internal/cli"
	"magnate/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL
	savePath := cfg.SavePath

	root := &cobra.Command{
		Use:          "mgt",
		Short:        "Magnate CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newStatusCmd(&apiBase),
		newCatalogCmd(&apiBase),
		newBuyCmd(&apiBase),
		newUpgradeCmd(&apiBase),
		newCostCmd(&apiBase),
		newProjectCmd(&apiBase),
		newDarkCmd(&apiBase),
		newSaveCmd(&apiBase),
		newLoadCmd(&apiBase),
		newWatchCmd(&apiBase),
		newPlayCmd(&savePath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newStatusCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show your empire at a glance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			state, err := newClient(apiBase).State(ctx)
			if err != nil {
				return err
			}
			renderState(state)
			return nil
		},
	}
}

func newCatalogCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List purchasable business templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).Catalog(ctx)
			if err != nil {
				return err
			}
			return renderCatalog(out)
		},
	}
}

func newBuyCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "buy [template-id]",
		Short: "Buy a business from the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Template ID")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			view, err := newClient(apiBase).BuyBusiness(ctx, id)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Purchased %s (#%d).", view.Name, view.TemplateID))
			renderBusiness(view)
			return nil
		},
	}
}

func newUpgradeCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade [template-id] [track]",
		Short: "Buy one level on an upgrade track",
		Long:  "Tracks: productivity, quality, automation, innovation, security.",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Template ID")
			if err != nil {
				return err
			}
			track, err := trackFromArgsOrPrompt(args, 1)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			view, err := newClient(apiBase).Upgrade(ctx, id, track)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("%s: %s is now level %d.", view.Name, track, view.UpgradeLevels[track]))
			renderBusiness(view)
			return nil
		},
	}
}

func newCostCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cost [template-id] [track]",
		Short: "Quote the next upgrade cost for a track",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Template ID")
			if err != nil {
				return err
			}
			track, err := trackFromArgsOrPrompt(args, 1)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := newClient(apiBase).UpgradeCost(ctx, id, track)
			if err != nil {
				return err
			}
			cost, _ := out["cost"].(float64)
			printInfo(fmt.Sprintf("Next %s level costs %s coins.", track, formatCoins(cost)))
			return nil
		},
	}
}

func newProjectCmd(apiBase *string) *cobra.Command {
	project := &cobra.Command{
		Use:   "project",
		Short: "Start or cancel special projects",
	}

	project.AddCommand(&cobra.Command{
		Use:   "start [template-id] [name...]",
		Short: "Start a named project on a business",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Template ID")
			if err != nil {
				return err
			}
			name := strings.TrimSpace(strings.Join(argsAfter(args, 1), " "))
			if name == "" {
				name, err = promptRequired("Project name")
				if err != nil {
					return err
				}
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			view, err := newClient(apiBase).StartProject(ctx, id, name)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Started %q on %s.", view.Project.Name, view.Name))
			return nil
		},
	})

	project.AddCommand(&cobra.Command{
		Use:   "cancel [template-id]",
		Short: "Cancel the running project (no refund)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Template ID")
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			view, err := newClient(apiBase).CancelProject(ctx, id)
			if err != nil {
				return err
			}
			printWarn(fmt.Sprintf("Project cancelled on %s. Spent funds are gone.", view.Name))
			return nil
		},
	})

	return project
}

func newDarkCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dark [template-id]",
		Short: "Take a business to the dark side (irreversible)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Template ID")
			if err != nil {
				return err
			}
			confirm, err := promptChoice("This cannot be undone. Continue", []string{"yes", "no"}, "no")
			if err != nil {
				return err
			}
			if confirm != "yes" {
				printInfo("Aborted.")
				return nil
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			view, err := newClient(apiBase).DarkSide(ctx, id)
			if err != nil {
				return err
			}
			printWarn(fmt.Sprintf("%s has gone dark. Income x1.8, risk %d.", view.Name, view.Risk))
			renderBusiness(view)
			return nil
		},
	}
}

func newSaveCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the session on the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			if _, err := newClient(apiBase).Save(ctx); err != nil {
				return err
			}
			printSuccess("Session saved.")
			return nil
		},
	}
}

func newLoadCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load the last save on the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			state, err := newClient(apiBase).Load(ctx)
			if err != nil {
				return err
			}
			printSuccess("Session loaded.")
			renderState(state)
			return nil
		},
	}
}

func newWatchCmd(apiBase *string) *cobra.Command {
	var every time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard of the running economy",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(apiBase)
			return runDashboard(cmd.Context(), client.State, every)
		},
	}
	cmd.Flags().DurationVar(&every, "every", 2*time.Second, "refresh interval")
	return cmd
}

func idFromArgsOrPrompt(args []string, label string) (int64, error) {
	if len(args) > 0 {
		id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid template id %q", args[0])
		}
		return id, nil
	}
	return promptInt64(label, 1)
}

func trackFromArgsOrPrompt(args []string, idx int) (string, error) {
	tracks := []string{"productivity", "quality", "automation", "innovation", "security"}
	if len(args) > idx {
		track := strings.ToLower(strings.TrimSpace(args[idx]))
		for _, t := range tracks {
			if t == track {
				return track, nil
			}
		}
		return "", fmt.Errorf("unknown track %q", args[idx])
	}
	return promptChoice("Track", tracks, "productivity")
}

func argsAfter(args []string, idx int) []string {
	if len(args) <= idx {
		return nil
	}
	return args[idx:]
}
