package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"todonest/internal/client"
	"todonest/internal/tui"
)

func main() {
	configPath := flag.String("config", client.DefaultConfigPath(), "path to the config file")
	register := flag.Bool("register", false, "create a new account instead of logging in")
	flag.Parse()

	cfg, err := client.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	c := client.NewClient(cfg.ServerURL)
	ctx := context.Background()

	// Reuse the saved token when it still resolves to a user.
	authenticated := false
	if cfg.Token != "" && !*register {
		c.SetToken(cfg.Token)
		if _, err := c.Profile(ctx); err == nil {
			authenticated = true
		} else {
			c.SetToken("")
		}
	}

	if !authenticated {
		if err := authenticate(ctx, c, *register); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.Token = c.Token()
		if err := client.SaveConfig(*configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
		}
	}

	store := client.NewStore(c)
	app := tui.NewModel(store)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// authenticate prompts for credentials on stdin. Environment variables
// TODONEST_EMAIL and TODONEST_PASSWORD skip the prompts for scripted use.
func authenticate(ctx context.Context, c *client.Client, register bool) error {
	reader := bufio.NewReader(os.Stdin)

	email := os.Getenv("TODONEST_EMAIL")
	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		email = strings.TrimSpace(line)
	}

	password := os.Getenv("TODONEST_PASSWORD")
	if password == "" {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		password = strings.TrimSpace(line)
	}

	if register {
		fmt.Print("Name: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		_, err = c.Register(ctx, email, password, strings.TrimSpace(line))
		return err
	}

	_, err := c.Login(ctx, email, password)
	return err
}
