package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dom/leaderboard-dashboard/internal/client"
	"github.com/dom/leaderboard-dashboard/internal/logging"
	"github.com/dom/leaderboard-dashboard/internal/session"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "leaderboardctl",
		Usage: "browse and manage the benchmark leaderboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "server base URL",
				Value:   "http://localhost:8080",
				EnvVars: []string{"LEADERBOARD_API_URL"},
			},
			&cli.StringFlag{
				Name:    "session",
				Usage:   "file holding the signed-in identity",
				Value:   defaultSessionPath(),
				EnvVars: []string{"LEADERBOARD_SESSION"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			listCommand(),
			summaryCommand(),
			ingestCommand(),
			exportCommand(),
			entriesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type env struct {
	sessionPath string
	sessions    *session.Store
	api         *client.Client
}

// setup restores the saved session and builds the API client every command uses.
func setup(c *cli.Context) error {
	store := session.NewStore()
	path := c.String("session")
	if err := store.Load(path); err != nil {
		return err
	}

	logger := logging.NewWithWriter(os.Stderr, c.String("log-level"))
	c.App.Metadata = map[string]interface{}{
		"env": &env{
			sessionPath: path,
			sessions:    store,
			api:         client.New(c.String("api"), client.WithSession(store), client.WithLogger(logger)),
		},
	}
	return nil
}

func envFrom(c *cli.Context) *env {
	return c.App.Metadata["env"].(*env)
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".leaderboardctl-session.yaml"
	}
	return filepath.Join(dir, "leaderboardctl", "session.yaml")
}

func requireSignIn(e *env) error {
	identity, ok := e.sessions.CurrentUser()
	if !ok {
		return fmt.Errorf("not signed in; run leaderboardctl login")
	}
	if !identity.IsAdmin() {
		return fmt.Errorf("%s is not an admin", identity.DisplayName)
	}
	return nil
}
