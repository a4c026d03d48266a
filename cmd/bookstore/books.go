package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"devdesk/internal/models"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeBooks(cmd.OutOrStdout(), a.outputFormat, books)
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search [keyword]",
		Short: "Find books by title, author or ISBN",
		Long:  "Search matches the keyword anywhere in the title, author or ISBN. A missing keyword lists every book.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := a.store.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeBooks(cmd.OutOrStdout(), a.outputFormat, books)
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var (
		title, author, isbn, published string
		quantity                       int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := models.Book{
				Title:    title,
				Author:   author,
				Quantity: quantity,
			}
			if isbn != "" {
				b.ISBN = &isbn
			}
			if published != "" {
				d, err := parseDate(published)
				if err != nil {
					return err
				}
				b.PublishDate = &d
			}

			id, err := a.store.Add(cmd.Context(), b)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), a.outputFormat, "added", id)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN, must be unique")
	cmd.Flags().StringVar(&published, "publish-date", "", "publication date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&quantity, "quantity", models.DefaultQuantity, "copies in stock")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		title, author, isbn, published string
		clearPublished                 bool
		quantity                       int
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change some fields of a book",
		Long:  "Edit updates only the fields whose flags are given. An unknown id changes nothing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var p models.BookPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("author") {
				p.Author = &author
			}
			if flags.Changed("isbn") {
				p.ISBN = &isbn
			}
			if flags.Changed("publish-date") {
				d, err := parseDate(published)
				if err != nil {
					return err
				}
				p.PublishDate = &d
			}
			p.ClearPublishDate = clearPublished
			if flags.Changed("quantity") {
				p.Quantity = &quantity
			}

			if p.IsEmpty() {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing to update")
				return nil
			}
			if err := a.store.Update(cmd.Context(), id, p); err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), a.outputFormat, "updated", id)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&author, "author", "", "new author")
	cmd.Flags().StringVar(&isbn, "isbn", "", "new ISBN, empty clears it")
	cmd.Flags().StringVar(&published, "publish-date", "", "new publication date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearPublished, "clear-publish-date", false, "remove the publication date")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "new stock count")
	cmd.MarkFlagsMutuallyExclusive("publish-date", "clear-publish-date")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.store.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), a.outputFormat, "deleted", id)
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id %q", s)
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid publish date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}
