// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
// The catalog service never touches gorm directly. It depends on narrow
// interfaces declared in internal/catalog/stores.go:
//
//   - BookStore: Book CRUD and filtered listing
//   - RelationStore: Per-user book relations (like, bookmark, rate)
//   - LikeCounter: Like counts grouped by book, used by the like annotator
//   - RateSource: Non-null rates of a book, read by the rating aggregator
//   - RatingWriter: Stores the aggregated rating on the book row
//
// ## Rating Maintenance Interfaces
//
//   - RatingRecomputer: Rating recompute performed by the task queue (internal/tasks/recompute_ratings.go)
//   - Reconciler: Full recompute run by the cron scheduler (internal/scheduler/rating_reconcile.go)
//
// Both are satisfied by catalog.RatingAggregator.
//
// ## Infrastructure Interfaces
//
//   - Pinger: Database and task store reachability for the health endpoint (internal/http/health.go)
//   - RatingTaskQueue: Enqueue and inspect rating recomputes (internal/http/tasks.go)
//
// # Adding a New Storage Backend
//
// To back the catalog with something other than gorm:
//
//  1. Create a package with a Repository type
//
//     type Repository struct { db *sql.DB }
//
//     func NewRepository(db *sql.DB) *Repository
//
//  2. Implement the store interfaces it is meant to serve
//
//     func (r *Repository) CountLikes(ctx context.Context, bookIDs []uint) (map[uint]int64, error)
//
//  3. Pass it in catalog.Stores from entrypoint.NewCatalog
//
//  4. Add compile-time checks to checks.go:
//
//     var _ catalog.LikeCounter = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
