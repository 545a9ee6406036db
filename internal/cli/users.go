package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/database/users"
	"github.com/mrlokans/bookstore/internal/entrypoint"
)

func newCreateUserCommand(a *app) *cobra.Command {
	var in auth.NewUser

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		Example: `  bookstore create-user --username alice --password 's3cret-pass'
  bookstore create-user --username admin --password 's3cret-pass' --staff`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			user, err := auth.NewService(db.DB, a.cfg.Auth, a.logger).CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}

			role := "user"
			if user.IsStaff {
				role = "staff user"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %q (id %d)\n", role, user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	cmd.Flags().BoolVar(&in.IsStaff, "staff", false, "Allow the user to modify every book")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newDeleteUserCommand(a *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "delete-user",
		Short: "Delete a user, keeping their books without an owner",
		Long: `Delete a user account. Books the user owns stay in the catalog without an
owner, the user's likes, bookmarks and rates are removed, and the ratings of
the books they rated are recomputed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			repo := users.NewRepository(db.DB)
			user, err := repo.GetUserByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("user %q: %w", username, err)
			}

			ratedBooks, err := repo.DeleteUser(ctx, user.ID)
			if err != nil {
				return err
			}

			ratings := entrypoint.NewCatalog(db, a.logger).Ratings()
			var errs []error
			for _, bookID := range ratedBooks {
				if _, err := ratings.Recompute(ctx, bookID); err != nil {
					errs = append(errs, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %q, recomputed %d book ratings\n", username, len(ratedBooks)-len(errs))
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username of the account to delete (required)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newListUsersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			all, err := users.NewRepository(db.DB).ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tSTAFF")
			for _, u := range all {
				fmt.Fprintf(w, "%d\t%s\t%s %s\t%t\n", u.ID, u.Username, u.FirstName, u.LastName, u.IsStaff)
			}
			return w.Flush()
		},
	}
}
