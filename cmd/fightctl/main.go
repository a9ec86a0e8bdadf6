package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fight-manager-api/packages/client"
)

type app struct {
	configFile string
	server     string
	color      bool

	cfg    cliConfig
	client *client.Client
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "fightctl",
		Short: "Run a fight card from the terminal",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Path to config file (default: ~/"+defaultConfigName+")")
	rootCmd.PersistentFlags().StringVar(&a.server, "server", "", "API base URL, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&a.color, "color", false, "Colour clubs and fight types")

	var username, password string
	loginCmd := &cobra.Command{
		Use:          "login",
		Short:        "Sign in as an admin",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLogin(cmd.Context(), username, password)
		},
	}
	loginCmd.Flags().StringVarP(&username, "username", "u", "admin", "Username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")

	logoutCmd := &cobra.Command{
		Use:          "logout",
		Short:        "Revoke the refresh token and forget the session",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("✓ Signed out")
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:          "list",
		Short:        "Show the card with ongoing, ready and next markers",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd.Context())
		},
	}

	rootCmd.AddCommand(loginCmd, logoutCmd, listCmd)
	rootCmd.AddCommand(
		a.fightCommand("start", "Start a fight", (*client.Board).Start),
		a.fightCommand("end", "End the ongoing fight", (*client.Board).End),
		a.fightCommand("cancel", "Cancel a fight", (*client.Board).Cancel),
		a.fightCommand("reset", "Reset a fight to not started", (*client.Board).Reset),
		a.fightCommand("delete", "Delete a fight", (*client.Board).Delete),
	)

	renumberCmd := &cobra.Command{
		Use:          "renumber <id> <number>",
		Short:        "Move a fight to another position",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid fight number %q", args[1])
			}
			return a.withBoard(cmd.Context(), func(b *client.Board) error {
				return b.Renumber(cmd.Context(), args[0], number)
			})
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:          "clear",
		Short:        "Delete every fight",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm("Delete every fight on the card?") {
				return nil
			}
			msg, err := a.client.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println("✓ " + msg)
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	importCmd := &cobra.Command{
		Use:          "import <file.csv>",
		Short:        "Replace the not started fights with a CSV card",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd.Context(), args[0])
		},
	}

	startTimeCmd := &cobra.Command{
		Use:          "start-time <HH:MM>",
		Short:        "Set the start time of the remaining card",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client.SetStartTime(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println("✓ " + msg)
			return nil
		},
	}

	var outputFile string
	exportCmd := &cobra.Command{
		Use:          "export",
		Short:        "Download the schedule as an Excel workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd.Context(), outputFile)
		},
	}
	exportCmd.Flags().StringVarP(&outputFile, "output", "o", "fights.xlsx", "Output Excel file path")

	var interval time.Duration
	watchCmd := &cobra.Command{
		Use:          "watch",
		Short:        "Follow the public board until interrupted",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval == 0 {
				interval = a.cfg.PollInterval
			} else if err := checkPollInterval("--interval", interval); err != nil {
				return err
			}
			return a.runWatch(cmd.Context(), interval)
		},
	}
	watchCmd.Flags().DurationVar(&interval, "interval", 0, "Refresh period (default: poll_interval from the config file)")

	rootCmd.AddCommand(renumberCmd, clearCmd, importCmd, startTimeCmd, exportCmd, watchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := a.configFile
	if path == "" {
		path = filepath.Join(home, defaultConfigName)
	}
	cfg, err := loadConfig(path, home)
	if err != nil {
		return err
	}
	if a.server != "" {
		cfg.Server = a.server
	}
	a.cfg = cfg

	session, err := client.NewSession(client.NewFileStore(cfg.SessionFile))
	if err != nil {
		return err
	}
	a.client = client.New(cfg.Server, session, nil)
	return nil
}

// fightCommand builds the single-fight actions, which all take an id and
// print the card afterwards.
func (a *app) fightCommand(name, short string, action func(*client.Board, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:          name + " <id>",
		Short:        short,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBoard(cmd.Context(), func(b *client.Board) error {
				return action(b, cmd.Context(), args[0])
			})
		},
	}
}

// withBoard loads the card, runs fn and prints the refreshed card.
func (a *app) withBoard(ctx context.Context, fn func(*client.Board) error) error {
	if !a.client.Session().Valid() {
		return fmt.Errorf("not signed in or session expired, run fightctl login")
	}
	board := client.NewBoard(a.client)
	if err := board.Refresh(ctx); err != nil {
		return err
	}
	if err := fn(board); err != nil {
		return err
	}
	return newRenderer(a.color).printCard(os.Stdout, board.Snapshot(time.Now()), true)
}

func (a *app) runLogin(ctx context.Context, username, password string) error {
	if password == "" {
		fmt.Print("Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	tokens, err := a.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Signed in as %s until %s\n", username, tokens.ExpiresAt.Local().Format("Mon 15:04"))
	return nil
}

func (a *app) runList(ctx context.Context) error {
	board, err := a.client.Status(ctx)
	if err != nil {
		return err
	}
	if len(board.Fights) == 0 {
		fmt.Println("No fights on the card.")
		return nil
	}
	return newRenderer(a.color).printCard(os.Stdout, *board, true)
}

func (a *app) runImport(ctx context.Context, path string) error {
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		return fmt.Errorf("%s is not a .csv file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.client.Import(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d fights, skipped %d\n", result.Imported, result.Skipped)
	for _, rowErr := range result.Errors {
		fmt.Printf("  row %d: %s\n", rowErr.Row, rowErr.Message)
	}
	return nil
}

func (a *app) runExport(ctx context.Context, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	if err := a.client.Export(ctx, f); err != nil {
		f.Close()
		os.Remove(outputPath)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("✓ Schedule written to %s\n", outputPath)
	return nil
}

// runWatch redraws the public board on every poll. A signed-in operator is
// logged out as soon as the token expires.
func (a *app) runWatch(ctx context.Context, interval time.Duration) error {
	r := newRenderer(a.color)
	poller := client.NewPoller(interval, func(ctx context.Context) error {
		board, err := a.client.PublicBoard(ctx)
		if err != nil {
			return err
		}
		fmt.Print("\x1b[H\x1b[2J")
		fmt.Printf("Fight card, updated %s (every %s, Ctrl-C to stop)\n\n", time.Now().Format("15:04:05"), interval)
		return r.printCard(os.Stdout, *board, false)
	})
	poller.OnError(func(err error) {
		fmt.Fprintf(os.Stderr, "refresh failed: %v\n", err)
	})

	expiry := a.client.Session().Watch(time.Minute, func() {
		fmt.Fprintln(os.Stderr, "Session expired, signed out.")
	})

	if err := poller.Start(ctx); err != nil {
		return err
	}
	if err := expiry.Start(ctx); err != nil {
		poller.Stop()
		return err
	}
	<-ctx.Done()
	expiry.Stop()
	poller.Stop()
	return nil
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
