package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookstore.db"

	// DefaultReconcileSchedule recomputes every book rating once a day
	DefaultReconcileSchedule = "0 3 * * *"
)
