package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/toastcenter/internal/center"
	"github.com/nhle/toastcenter/internal/credential"
	"github.com/nhle/toastcenter/internal/model"
	"github.com/nhle/toastcenter/internal/priority"
)

// withEnv opens the database for the duration of fn, logging to stderr.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()
	return fn(ctx, e)
}

// resolveSpace finds a space by id or, case-insensitively, by name.
func resolveSpace(ctx context.Context, svc *center.Service, ref string) (model.Space, error) {
	spaces, err := svc.Spaces(ctx)
	if err != nil {
		return model.Space{}, err
	}
	for _, sp := range spaces {
		if sp.SpaceID == ref {
			return sp, nil
		}
	}
	for _, sp := range spaces {
		if strings.EqualFold(sp.SpaceName, ref) {
			return sp, nil
		}
	}
	return model.Space{}, fmt.Errorf("no space named %q", ref)
}

// --- notifications ---

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"ls"},
	Short:   "List stored notifications, newest first",
	Long: `List stored notifications, newest first.

Examples:
  toastcenter notifications
  toastcenter notifications --app slack --limit 10
  toastcenter notifications --space Work --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _ := cmd.Flags().GetString("app")
		space, _ := cmd.Flags().GetString("space")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		if app != "" && space != "" {
			return fmt.Errorf("--app and --space cannot be combined")
		}

		return withEnv(cmd, func(ctx context.Context, e *env) error {
			var (
				ns  []model.ToastNotification
				err error
			)
			switch {
			case app != "":
				ns, err = e.svc.NotificationsForPackage(ctx, app)
			case space != "":
				var sp model.Space
				sp, err = resolveSpace(ctx, e.svc, space)
				if err == nil {
					ns, err = e.svc.NotificationsInSpace(ctx, sp.SpaceID)
				}
			default:
				ns, err = e.svc.AllNotifications(ctx)
			}
			if err != nil {
				return err
			}
			if limit > 0 && len(ns) > limit {
				ns = ns[:limit]
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ns)
			}
			if len(ns) == 0 {
				printWarning("no notifications")
				return nil
			}
			return printNotifications(ctx, cmd.OutOrStdout(), e.svc, ns)
		})
	},
}

func init() {
	notificationsCmd.Flags().String("app", "", "only notifications of this package id")
	notificationsCmd.Flags().String("space", "", "only notifications of apps in this space (name or id)")
	notificationsCmd.Flags().Int("limit", 0, "show at most this many notifications")
	notificationsCmd.Flags().Bool("json", false, "print JSON")
}

func printNotifications(ctx context.Context, w io.Writer, svc *center.Service, ns []model.ToastNotification) error {
	apps, err := svc.Apps(ctx)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(apps))
	for _, a := range apps {
		names[a.Package.PackageID] = a.Package.Name()
	}

	rows := make([][]string, 0, len(ns))
	for _, n := range ns {
		name := names[n.PackageID]
		if name == "" {
			name = n.PackageID
		}
		rows = append(rows, []string{
			n.CreatedTime.Local().Format(time.DateTime),
			name,
			priorityText(n.Priority),
			n.NotificationID,
			n.NotificationTitle,
		})
	}
	renderTable(w, []string{"Time", "App", "Priority", "ID", "Title"}, rows)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss <package> <notification-id>",
	Short: "Delete a stored notification",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			n := model.ToastNotification{PackageID: args[0], NotificationID: args[1]}
			if err := e.svc.Dismiss(ctx, n); err != nil {
				return err
			}
			printSuccess("Dismissed %s", n.Key())
			return nil
		})
	},
}

// --- apps ---

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List known apps with their notification counts and priorities",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			apps, err := e.svc.Apps(ctx)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), apps)
			}
			rows := make([][]string, 0, len(apps))
			for _, a := range apps {
				prio := priorityText(a.Priority)
				if a.Override {
					prio += " *"
				}
				rows = append(rows, []string{
					a.Package.Name(),
					a.Package.PackageID,
					strconv.Itoa(a.NotificationCount),
					prio,
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"App", "Package", "Count", "Priority"}, rows)
			return nil
		})
	},
}

func init() {
	appsCmd.Flags().Bool("json", false, "print JSON")
}

// --- spaces ---

var spacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Manage spaces",
}

var spacesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List spaces with app and notification counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			spaces, err := e.svc.SpacesWithCounts(ctx)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(spaces))
			for _, s := range spaces {
				name := s.Space.SpaceName
				if s.Space.IsDefaultWorkSpace {
					name += " (default)"
				}
				rows = append(rows, []string{
					name,
					s.Space.SpaceID,
					strconv.Itoa(s.AppCount),
					strconv.Itoa(s.NotificationCount),
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"Space", "ID", "Apps", "Notifications"}, rows)
			return nil
		})
	},
}

var spacesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a space",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			sp, err := e.svc.CreateSpace(ctx, args[0], desc)
			if err != nil {
				return err
			}
			printSuccess("Created space %s (%s)", sp.SpaceName, sp.SpaceID)
			return nil
		})
	},
}

var spacesRenameCmd = &cobra.Command{
	Use:   "rename <space> <new-name>",
	Short: "Rename a space",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			sp, err := resolveSpace(ctx, e.svc, args[0])
			if err != nil {
				return err
			}
			desc := sp.SpaceDescription
			if cmd.Flags().Changed("description") {
				desc, _ = cmd.Flags().GetString("description")
			}
			if err := e.svc.RenameSpace(ctx, sp.SpaceID, args[1], desc); err != nil {
				return err
			}
			printSuccess("Renamed %s to %s", sp.SpaceName, args[1])
			return nil
		})
	},
}

var spacesDeleteCmd = &cobra.Command{
	Use:   "delete <space>",
	Short: "Delete a space; its apps are kept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			sp, err := resolveSpace(ctx, e.svc, args[0])
			if err != nil {
				return err
			}
			if err := e.svc.DeleteSpace(ctx, sp.SpaceID); err != nil {
				return err
			}
			printSuccess("Deleted space %s", sp.SpaceName)
			return nil
		})
	},
}

var spacesAddCmd = &cobra.Command{
	Use:   "add <space> <package>",
	Short: "Add an app to a space",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			sp, err := resolveSpace(ctx, e.svc, args[0])
			if err != nil {
				return err
			}
			pkg := args[1]
			if name == "" {
				profile, err := e.store.GetPackage(ctx, pkg, e.cfg.User.ID)
				if err != nil {
					return err
				}
				name = pkg
				if profile != nil {
					name = profile.Name()
				}
			}
			if err := e.svc.AddToSpace(ctx, sp.SpaceID, pkg, name); err != nil {
				return err
			}
			printSuccess("Added %s to %s", name, sp.SpaceName)
			return nil
		})
	},
}

var spacesRemoveCmd = &cobra.Command{
	Use:   "remove <space> <package>",
	Short: "Remove an app from a space",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			sp, err := resolveSpace(ctx, e.svc, args[0])
			if err != nil {
				return err
			}
			if err := e.svc.RemoveFromSpace(ctx, sp.SpaceID, args[1]); err != nil {
				return err
			}
			printSuccess("Removed %s from %s", args[1], sp.SpaceName)
			return nil
		})
	},
}

func init() {
	spacesCreateCmd.Flags().String("description", "", "space description")
	spacesRenameCmd.Flags().String("description", "", "new space description")
	spacesAddCmd.Flags().String("name", "", "display name for an app not seen yet")

	spacesCmd.AddCommand(spacesListCmd, spacesCreateCmd, spacesRenameCmd, spacesDeleteCmd, spacesAddCmd, spacesRemoveCmd)
}

// --- priority ---

var priorityCmd = &cobra.Command{
	Use:   "priority",
	Short: "Override or inspect app priorities",
}

var prioritySetCmd = &cobra.Command{
	Use:   "set <package> <high|medium|low|none>",
	Short: "Override the priority of an app",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := model.ParsePriority(args[1])
		if err != nil {
			return err
		}
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			stored, err := e.svc.SetPriority(ctx, args[0], p)
			if err != nil {
				return err
			}
			printSuccess("%s is now %s", args[0], stored.Priority.Label())
			return nil
		})
	},
}

var priorityClearCmd = &cobra.Command{
	Use:   "clear <package>",
	Short: "Drop the override so the app is classified again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			if err := e.svc.ClearPriority(ctx, args[0]); err != nil {
				return err
			}
			p, err := e.svc.EffectivePriority(ctx, args[0])
			if err != nil {
				return err
			}
			printSuccess("%s is back to %s", args[0], p.Label())
			return nil
		})
	},
}

var priorityShowCmd = &cobra.Command{
	Use:   "show <package>",
	Short: "Show the priority an app's notifications get",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(cmd, func(ctx context.Context, e *env) error {
			p, err := e.svc.EffectivePriority(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), priorityText(p))
			return nil
		})
	},
}

func init() {
	priorityCmd.AddCommand(prioritySetCmd, priorityClearCmd, priorityShowCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <display-name>",
	Short: "Show the heuristic priority for an app name",
	Long: `Show the heuristic priority for an app name and publisher.

Examples:
  toastcenter classify "Microsoft Teams"
  toastcenter classify Authenticator --publisher "Microsoft Corporation"`,
	Args: cobra.ExactArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Pure computation; no config needed.
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		publisher, _ := cmd.Flags().GetString("publisher")
		fmt.Fprintln(cmd.OutOrStdout(), priorityText(priority.Classify(args[0], publisher)))
		return nil
	},
}

func init() {
	classifyCmd.Flags().String("publisher", "", "app publisher")
}

// --- dnd ---

var dndCmd = &cobra.Command{
	Use:       "dnd [on|off]",
	Short:     "Show or change do-not-disturb",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("threshold") {
			t, _ := cmd.Flags().GetString("threshold")
			p, err := model.ParsePriority(t)
			if err != nil {
				return err
			}
			if p == model.PriorityNone {
				return fmt.Errorf("threshold must be high, medium or low")
			}
			cfg.DND.Threshold = string(p)
		}

		if len(args) == 1 {
			switch args[0] {
			case "on":
				cfg.DND.Enabled = true
			case "off":
				cfg.DND.Enabled = false
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
		}

		if len(args) == 1 || cmd.Flags().Changed("threshold") {
			if err := model.SaveConfig(configPath, cfg); err != nil {
				return err
			}
		}

		d := priority.NewDND(cfg.DND.Enabled, cfg.DND.Threshold)
		if d.Enabled {
			printSuccess("Do-not-disturb is on: %s and above break through", d.Threshold.Label())
		} else {
			printSuccess("Do-not-disturb is off")
		}
		return nil
	},
}

func init() {
	dndCmd.Flags().String("threshold", "", "lowest priority that breaks through (high, medium, low)")
}

// --- mail ---

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Manage the IMAP listener account",
}

var mailSetPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the IMAP password in the system keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := mailUsername(cmd)
		if err != nil {
			return err
		}

		var password string
		err = huh.NewInput().
			Title("IMAP password for " + username).
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("password is required")
				}
				return nil
			}).
			Run()
		if err != nil {
			return err
		}

		vault, err := credential.Open()
		if err != nil {
			return err
		}
		if err := vault.Set(credential.MailKey(username), password); err != nil {
			return err
		}
		printSuccess("Password for %s stored", username)
		return nil
	},
}

var mailForgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove the stored IMAP password",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := mailUsername(cmd)
		if err != nil {
			return err
		}
		vault, err := credential.Open()
		if err != nil {
			return err
		}
		if err := vault.Delete(credential.MailKey(username)); err != nil {
			return err
		}
		printSuccess("Password for %s removed", username)
		return nil
	},
}

func mailUsername(cmd *cobra.Command) (string, error) {
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		username = cfg.Mail.Username
	}
	if username == "" {
		return "", fmt.Errorf("no username: set mail.username in %s or pass --username", configPath)
	}
	return username, nil
}

func init() {
	for _, c := range []*cobra.Command{mailSetPasswordCmd, mailForgetCmd} {
		c.Flags().String("username", "", "account name (defaults to mail.username)")
	}
	mailCmd.AddCommand(mailSetPasswordCmd, mailForgetCmd)
}
