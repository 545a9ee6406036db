// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres) and migrations
//	├── books/           # Book CRUD, filtered listing, stored ratings
//	├── relations/       # User-book relations, like counts, rates
//	└── users/           # User lookup and deletion
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase(cfg.Database, logger)
//
//	// Create domain-specific repositories
//	booksRepo := books.NewRepository(db.DB)
//	relationsRepo := relations.NewRepository(db.DB)
//
//	// Use repositories
//	book, err := booksRepo.GetBook(ctx, 123)
//	likes, err := relationsRepo.CountLikes(ctx, []uint{123})
//
// # Interface Implementations
//
// The repositories implement the store interfaces of internal/catalog:
//
//   - books.Repository: implements catalog.BookStore and catalog.RatingWriter
//   - relations.Repository: implements catalog.RelationStore, catalog.LikeCounter and catalog.RateSource
//
// The checks live in internal/interfaces/checks.go.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
