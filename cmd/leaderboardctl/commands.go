package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dom/leaderboard-dashboard/internal/bulkedit"
	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/ingest"
	"github.com/dom/leaderboard-dashboard/internal/leaderboard"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and remember the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", EnvVars: []string{"LEADERBOARD_PASSWORD"}},
		},
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			password := c.String("password")
			if password == "" {
				var err error
				if password, err = readPassword(c.App.Reader, c.App.Writer); err != nil {
					return err
				}
			}

			auth, err := e.api.Login(c.Context, c.String("user"), password)
			if err != nil {
				return err
			}
			e.sessions.SignIn(auth.Identity())
			if err := e.sessions.Save(e.sessionPath); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Signed in as %s (%s)\n", auth.User.DisplayName, auth.User.Role)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the saved session",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			e.sessions.SignOut()
			return e.sessions.Save(e.sessionPath)
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "show the ranked leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}},
			&cli.StringFlag{Name: "sort", Value: string(leaderboard.DefaultSort.Field)},
			&cli.StringFlag{Name: "direction", Value: string(leaderboard.DefaultSort.Direction)},
			&cli.IntFlag{Name: "top", Usage: "show only the first N rows"},
		},
		Action: func(c *cli.Context) error {
			sort, err := leaderboard.ParseSort(c.String("sort"), c.String("direction"))
			if err != nil {
				return err
			}

			board, err := envFrom(c).api.Leaderboard(c.Context, c.String("search"), sort)
			if err != nil {
				return err
			}

			rows := board.Entries
			if n := c.Int("top"); n > 0 && n < len(rows) {
				rows = rows[:n]
			}
			printBoard(c.App.Writer, rows)
			return nil
		},
	}
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "show headline statistics",
		Action: func(c *cli.Context) error {
			s, err := envFrom(c).api.Summary(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Models:        %d\nOrganizations: %d\nAvg ARC-AGI-1: %.1f%%\n",
				s.TotalModels, s.Organizations, s.AverageARCAGI1)
			return nil
		},
	}
}

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "upload a .json, .csv or .xlsx file of entries",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			if err := requireSignIn(e); err != nil {
				return err
			}
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("a file is required")
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			// Parsing happens locally so a bad file never reaches the server.
			result, err := ingest.NewController(e.api, nil).Ingest(c.Context, path, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Inserted %d entries\n", result.Inserted)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "download every entry as JSON or XLSX",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "json"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output path, defaults to the server's file name"},
		},
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			if err := requireSignIn(e); err != nil {
				return err
			}
			data, name, err := e.api.Export(c.Context, c.String("format"))
			if err != nil {
				return err
			}
			out := c.String("out")
			if out == "" {
				out = name
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
}

func entriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "entries",
		Usage: "admin entry management",
		Before: func(c *cli.Context) error {
			return requireSignIn(envFrom(c))
		},
		Subcommands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "list entries newest first",
				Flags: []cli.Flag{&cli.IntFlag{Name: "page", Value: 1}},
				Action: func(c *cli.Context) error {
					page, err := envFrom(c).api.RecentEntries(c.Context, c.Int("page"))
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tSYSTEM\tORGANIZATION\tCREATED")
					for _, entry := range page.Entries {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", entry.ID, entry.AISystem, entry.Organization, entry.CreatedAt.Format("2006-01-02 15:04"))
					}
					w.Flush()
					fmt.Fprintf(c.App.Writer, "Page %d of %d (%d entries)\n", page.Page, page.TotalPages, page.Total)
					return nil
				},
			},
			{
				Name:      "edit",
				Usage:     "change fields of one entry",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "set", Usage: "field=value, repeatable", Required: true},
				},
				Action: editEntry,
			},
			{
				Name:      "delete",
				Usage:     "delete entries",
				ArgsUsage: "ID...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"},
				},
				Action: deleteEntries,
			},
		},
	}
}

// editor loads the full board into a bulk edit controller.
func editor(c *cli.Context) (*bulkedit.Controller, []*domain.Entry, error) {
	board, err := envFrom(c).api.Leaderboard(c.Context, "", leaderboard.Sort{})
	if err != nil {
		return nil, nil, err
	}
	entries := make([]*domain.Entry, len(board.Entries))
	for i, r := range board.Entries {
		entries[i] = r.Entry
	}
	controller := bulkedit.New(envFrom(c).api, nil)
	controller.SetVisible(entries)
	return controller, entries, nil
}

func editEntry(c *cli.Context) error {
	id, err := uuid.Parse(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid entry id %q", c.Args().First())
	}

	controller, entries, err := editor(c)
	if err != nil {
		return err
	}
	var target *domain.Entry
	for _, e := range entries {
		if e.ID == id {
			target = e
			break
		}
	}
	if target == nil {
		return domain.ErrEntryNotFound
	}

	controller.BeginEdit(target)
	for _, assignment := range c.StringSlice("set") {
		name, value, ok := strings.Cut(assignment, "=")
		if !ok {
			return fmt.Errorf("expected field=value, got %q", assignment)
		}
		if err := controller.SetField(strings.TrimSpace(name), value); err != nil {
			return err
		}
	}
	if err := controller.CommitEdit(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Updated %s\n", id)
	return nil
}

func deleteEntries(c *cli.Context) error {
	if c.NArg() == 0 {
		return bulkedit.ErrNothingSelected
	}
	controller, _, err := editor(c)
	if err != nil {
		return err
	}

	for _, raw := range c.Args().Slice() {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", raw)
		}
		if !controller.Select(id) {
			return fmt.Errorf("%s: %w", raw, domain.ErrEntryNotFound)
		}
	}

	confirmed := c.Bool("yes")
	if !confirmed {
		confirmed = confirm(c.App.Reader, c.App.Writer,
			fmt.Sprintf("Delete %d entries? This cannot be undone. [y/N] ", len(controller.Selected())))
	}
	n, err := controller.CommitBulkDelete(c.Context, confirmed)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted %d entries\n", n)
	return nil
}

func printBoard(out io.Writer, rows []leaderboard.Ranked) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tSYSTEM\tORGANIZATION\tTYPE\tARC-AGI-1\tARC-AGI-2\tCOST/TASK")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Rank, r.AISystem, r.Organization, r.SystemType,
			percent(r.ARCAGI1), percent(r.ARCAGI2), cost(r.CostPerTask))
	}
	w.Flush()
}

func percent(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64) + "%"
}

func cost(v *float64) string {
	if v == nil {
		return "-"
	}
	return "$" + strconv.FormatFloat(*v, 'f', 2, 64)
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// readPassword reads one line from stdin. Prefer LEADERBOARD_PASSWORD when
// scripting.
func readPassword(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
