package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/database"
	"github.com/mrlokans/bookstore/internal/database/books"
	"github.com/mrlokans/bookstore/internal/database/relations"
	"github.com/mrlokans/bookstore/internal/http"
	"github.com/mrlokans/bookstore/internal/scheduler"
	"github.com/mrlokans/bookstore/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Book storage
var _ catalog.BookStore = (*books.Repository)(nil)
var _ catalog.RatingWriter = (*books.Repository)(nil)

// Relation storage
var _ catalog.RelationStore = (*relations.Repository)(nil)
var _ catalog.LikeCounter = (*relations.Repository)(nil)
var _ catalog.RateSource = (*relations.Repository)(nil)

// Health checks
var _ http.Pinger = (*database.Database)(nil)
var _ http.Pinger = (*tasks.Client)(nil)

// =============================================================================
// Rating Maintenance
// =============================================================================

// Queued recompute tasks
var _ tasks.RatingRecomputer = (*catalog.RatingAggregator)(nil)
var _ http.RatingTaskQueue = (*tasks.Client)(nil)

// Scheduled reconciliation
var _ scheduler.Reconciler = (*catalog.RatingAggregator)(nil)
var _ http.RatingReconciler = (*scheduler.RatingReconcileScheduler)(nil)
