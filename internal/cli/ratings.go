package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookstore/internal/entrypoint"
)

func newRecomputeRatingsCommand(a *app) *cobra.Command {
	var bookID uint

	cmd := &cobra.Command{
		Use:   "recompute-ratings",
		Short: "Recompute stored book ratings from the current rates",
		Example: `  bookstore recompute-ratings
  bookstore recompute-ratings --book-id 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			ratings := entrypoint.NewCatalog(db, a.logger).Ratings()
			out := cmd.OutOrStdout()

			if bookID != 0 {
				rating, err := ratings.Recompute(cmd.Context(), bookID)
				if err != nil {
					return err
				}
				if rating.Valid {
					fmt.Fprintf(out, "Book %d rating: %s\n", bookID, rating.Decimal.StringFixed(2))
				} else {
					fmt.Fprintf(out, "Book %d rating: none\n", bookID)
				}
				return nil
			}

			n, err := ratings.RecomputeAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("stopped after %d books: %w", n, err)
			}
			fmt.Fprintf(out, "Recomputed ratings of %d books\n", n)
			return nil
		},
	}

	cmd.Flags().UintVar(&bookID, "book-id", 0, "Recompute only this book")
	return cmd
}
