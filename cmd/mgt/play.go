package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"magnate/internal/econ"
	"magnate/internal/savefile"

	"github.com/spf13/cobra"
)

// Local play runs the whole economy in-process against the ~/.mgt save file,
// no server required. Each command loads the save, ticks the session up to
// now (accruing the offline span), applies the action and saves again.

func newPlayCmd(savePath *string) *cobra.Command {
	play := &cobra.Command{
		Use:   "play",
		Short: "Play locally without a server",
	}

	play.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the local empire",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalSession(*savePath, func(s *econ.Session) error {
				renderState(s.State(time.Now()))
				return nil
			})
		},
	})

	play.AddCommand(&cobra.Command{
		Use:   "buy [template-id]",
		Short: "Buy a business locally",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Template ID")
			if err != nil {
				return err
			}
			return withLocalSession(*savePath, func(s *econ.Session) error {
				view, err := s.BuyBusiness(id, time.Now())
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Purchased %s (#%d).", view.Name, view.TemplateID))
				renderBusiness(view)
				return nil
			})
		},
	})

	play.AddCommand(&cobra.Command{
		Use:   "upgrade [template-id] [track]",
		Short: "Buy an upgrade level locally",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Template ID")
			if err != nil {
				return err
			}
			trackName, err := trackFromArgsOrPrompt(args, 1)
			if err != nil {
				return err
			}
			track, _ := econ.ParseTrack(trackName)
			return withLocalSession(*savePath, func(s *econ.Session) error {
				view, err := s.Upgrade(id, track, time.Now())
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("%s: %s is now level %d.", view.Name, trackName, view.UpgradeLevels[trackName]))
				renderBusiness(view)
				return nil
			})
		},
	})

	project := &cobra.Command{
		Use:   "project",
		Short: "Start or cancel local projects",
	}
	project.AddCommand(&cobra.Command{
		Use:   "start [template-id] [name...]",
		Short: "Start a named project locally",
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
			return withLocalSession(*savePath, func(s *econ.Session) error {
				view, err := s.StartProject(id, name, time.Now())
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Started %q on %s.", view.Project.Name, view.Name))
				return nil
			})
		},
	})
	project.AddCommand(&cobra.Command{
		Use:   "cancel [template-id]",
		Short: "Cancel the running project locally (no refund)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Template ID")
			if err != nil {
				return err
			}
			return withLocalSession(*savePath, func(s *econ.Session) error {
				view, err := s.CancelProject(id, time.Now())
				if err != nil {
					return err
				}
				printWarn(fmt.Sprintf("Project cancelled on %s. Spent funds are gone.", view.Name))
				return nil
			})
		},
	})
	play.AddCommand(project)

	play.AddCommand(&cobra.Command{
		Use:   "dark [template-id]",
		Short: "Take a local business to the dark side (irreversible)",
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
			return withLocalSession(*savePath, func(s *econ.Session) error {
				view, err := s.ToggleDarkSide(id, time.Now())
				if err != nil {
					return err
				}
				printWarn(fmt.Sprintf("%s has gone dark. Income x1.8, risk %d.", view.Name, view.Risk))
				return nil
			})
		},
	})

	var every time.Duration
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Run the local economy live with a dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocalDashboard(cmd.Context(), *savePath, every)
		},
	}
	watch.Flags().DurationVar(&every, "every", time.Second, "tick and refresh interval")
	play.AddCommand(watch)

	return play
}

func localLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withLocalSession loads the save, catches the session up to now, runs the
// action and persists the result. The catch-up tick is what pays out income
// earned while no process was running.
func withLocalSession(savePath string, fn func(*econ.Session) error) error {
	logger := localLogger()
	session := econ.NewSession(econ.DefaultCatalog(logger), logger)

	snap, found, err := savefile.Load(savePath)
	if err != nil {
		return err
	}
	if found {
		if err := session.Restore(snap); err != nil {
			return err
		}
	}
	session.Tick(time.Now())

	if err := fn(session); err != nil {
		return err
	}
	return savefile.Save(savePath, session.Snapshot(time.Now()))
}

func runLocalDashboard(ctx context.Context, savePath string, every time.Duration) error {
	if every <= 0 {
		every = time.Second
	}
	logger := localLogger()
	session := econ.NewSession(econ.DefaultCatalog(logger), logger)

	snap, found, err := savefile.Load(savePath)
	if err != nil {
		return err
	}
	if found {
		if err := session.Restore(snap); err != nil {
			return err
		}
	}
	session.Tick(time.Now())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go econ.NewClock(session, every, logger).Run(ctx)

	dashErr := runDashboard(ctx, func(context.Context) (econ.StateView, error) {
		return session.State(time.Now()), nil
	}, every)

	if err := savefile.Save(savePath, session.Snapshot(time.Now())); err != nil {
		return err
	}
	return dashErr
}
