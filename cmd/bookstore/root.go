package main

import (
	"context"
	"fmt"
	"os"

	"devdesk/internal/config"
	"devdesk/internal/logger"
	"devdesk/internal/models"
	"devdesk/internal/repository"
	"devdesk/internal/repository/pg"
	"devdesk/internal/service"

	"github.com/spf13/cobra"
)

// bookStore is what the commands need from service.BookService.
type bookStore interface {
	Add(ctx context.Context, b models.Book) (int64, error)
	List(ctx context.Context) ([]models.Book, error)
	Search(ctx context.Context, keyword string) ([]models.Book, error)
	Update(ctx context.Context, id int64, p models.BookPatch) error
	Delete(ctx context.Context, id int64) error
}

// app holds the state shared by every command. Tests preset store.
type app struct {
	cfgFile      string
	dsn          string
	outputFormat string

	store   bookStore
	closeFn func() error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bookstore",
		Short: "Manage the book inventory",
		Long: `bookstore keeps the book inventory in PostgreSQL.

Examples:
  bookstore list
  bookstore search herbert
  bookstore add --title Dune --author "Frank Herbert" --isbn 9780441013593
  bookstore edit 3 --quantity 5
  bookstore delete 3`,
		SilenceUsage:      true,
		PersistentPreRunE: a.connect,
	}

	root.PersistentFlags().StringVar(
		&a.cfgFile, "config", "", "config file (default: ./configs/config.yml)",
	)
	root.PersistentFlags().StringVar(
		&a.dsn, "dsn", "", "PostgreSQL DSN, overrides books.dsn",
	)
	root.PersistentFlags().StringVarP(
		&a.outputFormat, "output", "o", formatTable, "output format: table, json or yaml",
	)

	root.AddCommand(
		newListCmd(a),
		newSearchCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
	)
	return root
}

// connect validates global flags and opens the book store unless one is preset.
func (a *app) connect(cmd *cobra.Command, args []string) error {
	if err := validateFormat(a.outputFormat); err != nil {
		return err
	}
	if a.store != nil || cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	cfgs, err := config.NewManager(a.cfgFile)
	if err != nil {
		return err
	}
	cfg := cfgs.Get()
	log := logger.New(cfg.Log.Level, os.Stderr)

	dsn := cfg.Books.DSN
	if a.dsn != "" {
		dsn = a.dsn
	}

	conn, err := pg.Open(cmd.Context(), dsn, pg.Options{
		PingAttempts: cfg.Books.PingAttempts,
		PingDelay:    cfg.Books.PingDelay,
	})
	if err != nil {
		log.Errorw("books_db_open_failed", "err", err)
		return fmt.Errorf("connect to book database: %w", err)
	}
	log.Debugw("books_db_ready")

	a.store = service.NewBookService(repository.NewBookPostgres(conn))
	a.closeFn = conn.Close
	return nil
}

// execute runs root and closes the book store whether or not the command failed.
func (a *app) execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && err == nil {
		err = fmt.Errorf("close book database: %w", cerr)
	}
	return err
}

func (a *app) close() error {
	if a.closeFn == nil {
		return nil
	}
	err := a.closeFn()
	a.closeFn = nil
	return err
}
