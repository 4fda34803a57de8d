package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"personal-library/internal/config"
	"personal-library/internal/logger"
	"personal-library/library"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        *logger.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:          "personal-library",
		Short:        "Personal library catalog",
		Long:         "Register, log in and manage a personal book catalog stored in flat binary files.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMenu()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (yaml, json or toml)")
	flags.String("users", "users.bin", "Path to the users file")
	flags.String("books", "books.bin", "Path to the books file")
	flags.String("log-level", "error", "Log level (debug, info, warn, error)")
	flags.Bool("monotonic-ids", false, "Give new books max(id)+1 instead of count+1")
	flags.Bool("non-interactive", false, "Skip screen clearing and key waits")

	_ = a.v.BindPFlag("storage.users_file", flags.Lookup("users"))
	_ = a.v.BindPFlag("storage.books_file", flags.Lookup("books"))
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("catalog.monotonic_ids", flags.Lookup("monotonic-ids"))

	root.AddCommand(newExportCommand(a), newSearchCommand(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if nonInteractive, _ := cmd.Flags().GetBool("non-interactive"); nonInteractive {
		a.v.Set("console.interactive", false)
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) runMenu() error {
	sessionLog := a.log.WithSession(uuid.NewString())
	sessionLog.Infow("Session started",
		"users_file", a.cfg.Storage.UsersFile,
		"books_file", a.cfg.Storage.BooksFile,
		"interactive", a.cfg.Console.Interactive,
	)

	fmt.Println("Librarysystem Application Running..")

	console := library.NewConsole(os.Stdin, os.Stdout, a.cfg.Console.Interactive)
	mgr := library.NewLibraryManager(console,
		library.WithLogger(sessionLog),
		library.WithMonotonicIDs(a.cfg.Catalog.MonotonicIDs),
	)

	err := mgr.MainMenu(a.cfg.Storage.UsersFile, a.cfg.Storage.BooksFile)
	if library.IsInputClosed(err) {
		sessionLog.Infow("Input closed, ending session")
		return nil
	}
	if err != nil {
		sessionLog.WithError(err).Errorw("Session aborted")
		return err
	}
	sessionLog.Infow("Session ended")
	return nil
}
