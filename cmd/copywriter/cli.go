package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cusc/copywriter/internal/auth"
	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/catalog"
	"github.com/cusc/copywriter/internal/clipboard"
	"github.com/cusc/copywriter/internal/config"
	"github.com/cusc/copywriter/internal/errors"
	"github.com/cusc/copywriter/internal/mcp"
	"github.com/cusc/copywriter/internal/ops"
	"github.com/cusc/copywriter/internal/snapshot"
	"github.com/cusc/copywriter/internal/web"
)

// appEnv holds what commands need once the data directory is open.
type appEnv struct {
	store   *snapshot.Store
	gate    *auth.Gate
	cfg     *config.Config
	baseDir string
	logger  *slog.Logger
}

// stdout is where command output goes; tests swap it.
var stdout io.Writer = os.Stdout

// newCLIApp creates the CLI application with all commands.
// env may be nil when only help or version output is needed.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "copywriter",
		Usage:   "Compose marketing prompts for CUSC courses and events",
		Version: Version,
		Commands: []*cli.Command{
			courseCmd(env),
			eventCmd(env),
			catalogCmd(env),
			savedCmd(env),
			loginCmd(env),
			logoutCmd(env),
			whoamiCmd(env),
			serveCmd(env),
			mcpCmd(env),
		},
		// List values may contain commas ("Hands-on, project based").
		DisableSliceFlagSeparator: true,
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// requireLogin wraps an action behind the login gate.
func requireLogin(env *appEnv, action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) error {
		if _, err := env.gate.Require(); err != nil {
			return outputError(err)
		}
		return action(c)
	}
}

func optionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "channel", Aliases: []string{"c"}, Usage: "Channel id (see copywriter catalog)"},
		&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "Template id (see copywriter catalog)"},
		&cli.StringFlag{Name: "length", Value: string(campaign.LengthMedium), Usage: "Content length: short|medium|detailed"},
		&cli.BoolFlag{Name: "no-emojis", Usage: "Ask for copy without emojis"},
		&cli.BoolFlag{Name: "urgent", Usage: "Ask for an urgency call to action"},
		&cli.BoolFlag{Name: "copy", Usage: "Copy the prompt to the clipboard"},
		&cli.BoolFlag{Name: "save", Usage: "Save the form as a snapshot"},
		&cli.BoolFlag{Name: "json", Usage: "Print the full result as JSON"},
	}
}

func optionsFrom(c *cli.Context) campaign.ExtraOptions {
	return campaign.ExtraOptions{
		ContentLength: campaign.ContentLength(c.String("length")),
		WithEmojis:    !c.Bool("no-emojis"),
		UrgencyToggle: c.Bool("urgent"),
	}
}

// courseCmd creates the course command.
func courseCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "course",
		Usage: "Compose a prompt for a course",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Course name"},
			&cli.StringFlag{Name: "start-date", Usage: "Start date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Duration (e.g. \"3 months\")"},
			&cli.StringFlag{Name: "mode", Value: string(campaign.ModeOnline), Usage: "Learning mode: online|offline|hybrid"},
			&cli.StringSliceFlag{Name: "highlight", Usage: "Key highlight (repeatable)"},
			&cli.StringFlag{Name: "link", Usage: "Registration link"},
			&cli.StringSliceFlag{Name: "hashtag", Usage: "Related hashtag (repeatable)"},
		}, optionFlags()...),
		Action: requireLogin(env, func(c *cli.Context) error {
			output, err := ops.GenerateCourse(env.store, ops.GenerateCourseInput{
				CourseInfo: campaign.CourseInfo{
					CourseName:       c.String("name"),
					StartDate:        c.String("start-date"),
					Duration:         c.String("duration"),
					LearningMode:     campaign.LearningMode(c.String("mode")),
					KeyHighlights:    c.StringSlice("highlight"),
					RegistrationLink: c.String("link"),
					RelatedHashtags:  c.StringSlice("hashtag"),
				},
				ChannelID:  c.String("channel"),
				TemplateID: c.String("template"),
				Options:    optionsFrom(c),
				Save:       c.Bool("save"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputPrompt(c, env, output)
		}),
	}
}

// eventCmd creates the event command.
func eventCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "event",
		Usage: "Compose a prompt for an event",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Event name"},
			&cli.StringFlag{Name: "time", Usage: "When the event takes place"},
			&cli.StringFlag{Name: "location", Aliases: []string{"l"}, Usage: "Where the event takes place"},
			&cli.StringFlag{Name: "audience", Aliases: []string{"a"}, Usage: "Who the event is for"},
			&cli.StringSliceFlag{Name: "highlight", Usage: "Event highlight (repeatable)"},
			&cli.StringSliceFlag{Name: "offer", Usage: "Special offer (repeatable)"},
			&cli.StringFlag{Name: "link", Usage: "Registration link (optional)"},
		}, optionFlags()...),
		Action: requireLogin(env, func(c *cli.Context) error {
			output, err := ops.GenerateEvent(env.store, ops.GenerateEventInput{
				EventInfo: campaign.EventInfo{
					Name:             c.String("name"),
					Time:             c.String("time"),
					Location:         c.String("location"),
					Highlights:       c.StringSlice("highlight"),
					Audience:         c.String("audience"),
					Offers:           c.StringSlice("offer"),
					RegistrationLink: c.String("link"),
				},
				ChannelID:  c.String("channel"),
				TemplateID: c.String("template"),
				Options:    optionsFrom(c),
				Save:       c.Bool("save"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputPrompt(c, env, output)
		}),
	}
}

// outputPrompt prints the prompt (or the full result with --json) and
// copies it when --copy is set. A clipboard failure is reported, not fatal.
func outputPrompt(c *cli.Context, env *appEnv, output *ops.GenerateOutput) error {
	if c.Bool("copy") {
		if err := clipboard.Copy(output.Prompt); err != nil {
			env.logger.Warn("could not copy prompt", "error", errors.Summary(err))
		} else {
			fmt.Fprintln(os.Stderr, "prompt copied to clipboard")
		}
	}
	if output.Saved != nil {
		env.logger.Info("snapshot saved", "id", output.Saved.ID, "title", output.Saved.Title)
	}
	if c.Bool("json") {
		return outputJSON(output)
	}
	_, err := io.WriteString(stdout, output.Prompt)
	return err
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginTop(1)
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// catalogCmd creates the catalog command.
func catalogCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "List channels and writing templates",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "section", Aliases: []string{"s"}, Usage: "Only one section: channels|course|event"},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "Fuzzy filter for channels"},
			&cli.BoolFlag{Name: "json", Usage: "Print as JSON"},
		},
		Action: requireLogin(env, func(c *cli.Context) error {
			cat := catalog.Default()
			section := c.String("section")
			if section != "" && section != "channels" && section != "course" && section != "event" {
				return outputError(errors.NewInvalidRequest("section must be one of: channels, course, event"))
			}

			out := map[string]any{}
			var b strings.Builder
			if section == "" || section == "channels" {
				channels := cat.SearchChannels(c.String("search"))
				out["channels"] = channels
				b.WriteString(headingStyle.Render("Channels") + "\n")
				for _, ch := range channels {
					fmt.Fprintf(&b, "  %s  %s\n    %s\n", idStyle.Render(ch.ID), nameStyle.Render(ch.Name), dimStyle.Render(ch.Description))
				}
			}
			if section == "" || section == "course" {
				templates := cat.AllCourseTemplates()
				out["course_templates"] = templates
				writeTemplates(&b, "Course templates", templates)
			}
			if section == "" || section == "event" {
				templates := cat.AllEventTemplates()
				out["event_templates"] = templates
				writeTemplates(&b, "Event templates", templates)
			}

			if c.Bool("json") {
				return outputJSON(out)
			}
			_, err := io.WriteString(stdout, b.String())
			return err
		}),
	}
}

func writeTemplates(b *strings.Builder, title string, templates []catalog.TemplateStyle) {
	b.WriteString(headingStyle.Render(title) + "\n")
	for _, t := range templates {
		fmt.Fprintf(b, "  %s  %s\n    %s\n", idStyle.Render(t.ID), nameStyle.Render(t.Name), dimStyle.Render(t.Description))
	}
}

func addressFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "type", Usage: "Snapshot type: course|event (with --title)"},
		&cli.StringFlag{Name: "title", Usage: "Snapshot title (with --type)"},
	}
}

// savedCmd creates the saved command and its subcommands.
func savedCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Manage saved course and event forms",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List snapshots, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "Filter by type: course|event"},
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Fuzzy match on title"},
					&cli.IntFlag{Name: "limit", Value: ops.DefaultListLimit, Usage: "Max items"},
					&cli.IntFlag{Name: "offset", Usage: "Pagination offset"},
				},
				Action: requireLogin(env, func(c *cli.Context) error {
					output, err := ops.List(env.store, ops.ListInput{
						Type:   c.String("type"),
						Query:  c.String("query"),
						Limit:  c.Int("limit"),
						Offset: c.Int("offset"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				}),
			},
			{
				Name:      "show",
				Usage:     "Show a snapshot with its decoded form",
				ArgsUsage: "[id]",
				Flags:     addressFlags(),
				Action: requireLogin(env, func(c *cli.Context) error {
					output, err := ops.Fetch(env.store, ops.FetchInput{
						ID:    c.Args().First(),
						Type:  c.String("type"),
						Title: c.String("title"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				}),
			},
			{
				Name:      "rename",
				Usage:     "Rename a snapshot (new title via --to or as the last argument)",
				ArgsUsage: "[id] [new title]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "to", Usage: "New title"},
				}, addressFlags()...),
				Action: requireLogin(env, func(c *cli.Context) error {
					args, newTitle := trailingFlag(c.Args().Slice(), "to")
					if c.IsSet("to") {
						newTitle = c.String("to")
					}
					var id string
					if !c.IsSet("title") && len(args) > 0 {
						id, args = args[0], args[1:]
					}
					if newTitle == "" && len(args) > 0 {
						newTitle = args[0]
					}
					if strings.TrimSpace(newTitle) == "" {
						return outputError(errors.NewInvalidRequest("new title is required (--to or last argument)"))
					}
					output, err := ops.Rename(env.store, ops.RenameInput{
						ID:       id,
						Type:     c.String("type"),
						Title:    c.String("title"),
						NewTitle: newTitle,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a snapshot",
				ArgsUsage: "[id]",
				Flags:     addressFlags(),
				Action: requireLogin(env, func(c *cli.Context) error {
					output, err := ops.Delete(env.store, ops.DeleteInput{
						ID:    c.Args().First(),
						Type:  c.String("type"),
						Title: c.String("title"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				}),
			},
			{
				Name:  "export",
				Usage: "Write all snapshots to a JSON backup file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: <data dir>/exports/marketing-generator-backup-<date>.json)"},
				},
				Action: requireLogin(env, func(c *cli.Context) error {
					output, err := ops.Export(env.store, env.cfg, env.baseDir, ops.ExportInput{Path: c.String("path")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				}),
			},
			{
				Name:  "import",
				Usage: "Replace all snapshots with a JSON backup file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Backup file path"},
				},
				Action: requireLogin(env, func(c *cli.Context) error {
					output, err := ops.Import(env.store, env.cfg, env.baseDir, ops.ImportInput{Path: c.String("path")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				}),
			},
			{
				Name:  "clear",
				Usage: "Remove every snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm removal"},
				},
				Action: requireLogin(env, func(c *cli.Context) error {
					if !c.Bool("yes") {
						return outputError(errors.NewInvalidRequest("refusing to clear snapshots without --yes"))
					}
					return outputJSON(ops.Clear(c.Context, env.store))
				}),
			},
		},
	}
}

// loginCmd creates the login command.
func loginCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in with a staff account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Usage: "Username"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"COPYWRITER_PASSWORD"}, Usage: "Password (or pipe it via stdin)"},
		},
		Action: func(c *cli.Context) error {
			password := c.String("password")
			if password == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				password = text
			}
			user, err := env.gate.Login(c.Context, strings.TrimSpace(c.String("username")), password)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"username": user.Username, "authenticated": true})
		},
	}
}

// logoutCmd creates the logout command.
func logoutCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored login",
		Action: func(c *cli.Context) error {
			env.gate.Logout(c.Context)
			return outputJSON(map[string]any{"authenticated": false})
		},
	}
}

// whoamiCmd creates the whoami command.
func whoamiCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the logged-in user",
		Action: func(c *cli.Context) error {
			user, ok := env.gate.Current()
			if !ok {
				return outputJSON(map[string]any{"authenticated": false})
			}
			return outputJSON(map[string]any{"username": user.Username, "authenticated": true})
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := env.cfg.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := env.cfg.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv, err := web.NewServer(web.Deps{
				Store:   env.store,
				Gate:    env.gate,
				Config:  env.cfg,
				BaseDir: env.baseDir,
				Logger:  env.logger,
				Version: Version,
			}, bind, port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return env.store.Run(gctx) })
			g.Go(func() error { return web.Run(gctx, srv, env.logger) })
			if err := g.Wait(); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP tools over stdio",
		Action: requireLogin(env, func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return env.store.Run(gctx) })
			g.Go(func() error {
				defer cancel()
				return mcp.Run(env.store, env.cfg, Version)
			})
			if err := g.Wait(); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		}),
	}
}

// Helper functions

// trailingFlag pulls a string flag written after a positional argument out of
// args, since flag parsing stops at the first positional. Both --name=value
// and --name value forms are recognized.
func trailingFlag(args []string, name string) (rest []string, value string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--"+name || arg == "-"+name:
			if i+1 < len(args) {
				value = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "--"+name+"="):
			value = strings.TrimPrefix(arg, "--"+name+"=")
		case strings.HasPrefix(arg, "-"+name+"="):
			value = strings.TrimPrefix(arg, "-"+name+"=")
		default:
			rest = append(rest, arg)
		}
	}
	return rest, value
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	appErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, 1<<20))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
