package cli

import (
	"strconv"
	"time"

	"github.com/book-catalog/backend/internal/models"
	"github.com/book-catalog/backend/internal/repositories"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the book and activity tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer database.Close()

			out := newOutput(rootOpts, cmd)
			if out.json() {
				return out.writeJSON(map[string]bool{"migrated": true})
			}
			out.printf("schema is up to date\n")
			return nil
		},
	}
}

func NewBooksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List stored books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer database.Close()

			books, err := repositories.NewBookRepo(database.Gorm).FindAll(cmd.Context())
			if err != nil {
				return err
			}

			out := newOutput(rootOpts, cmd)
			if out.json() {
				return out.writeJSON(books)
			}
			if len(books) == 0 {
				out.printf("no books\n")
				return nil
			}
			for _, b := range books {
				out.printf("%d\t%s\t%s\n", b.ID, b.Name, b.Description)
			}
			return nil
		},
	}
}

func NewActivitiesCommand(rootOpts *RootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Show the most recent activity log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDatabase(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer database.Close()

			repo := repositories.NewActivityRepo(database.Gorm)
			var acts []models.Activity
			if userID != "" {
				acts, err = repo.ListByUser(cmd.Context(), userID)
			} else {
				acts, err = repo.ListAll(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := newOutput(rootOpts, cmd)
			if out.json() {
				return out.writeJSON(acts)
			}
			if len(acts) == 0 {
				out.printf("no activity\n")
				return nil
			}
			for _, a := range acts {
				entity := "-"
				if a.EntityID != nil {
					entity = strconv.FormatInt(*a.EntityID, 10)
				}
				out.printf("%s\t%s\t%s:%s\t%s\n", a.Timestamp.Format(time.RFC3339), a.Action, a.EntityType, entity, a.UserEmail)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "only show entries recorded for this user id")
	return cmd
}
