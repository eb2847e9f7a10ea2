package config

const (
	// DefaultDatabasePath is the default path for the application database.
	DefaultDatabasePath = "./libtrary.db"

	// DefaultDueDays is the default rental period in days.
	DefaultDueDays = 30

	// DefaultMaxUploadBytes caps bulk catalog uploads at 10 MiB.
	DefaultMaxUploadBytes = 10 << 20
)
