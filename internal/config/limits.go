package config

const (
	// MaxTitleLength is the maximum length for portfolio titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and keep slugs short.
	MaxTitleLength = 255

	// MaxDescriptionLength is the maximum length for portfolio descriptions.
	MaxDescriptionLength = 2000

	// MaxSections is the maximum number of sections in one portfolio.
	MaxSections = 50

	// MaxSectionTitleLength is the maximum length for section titles.
	MaxSectionTitleLength = 255

	// MaxBackups is the number of prior versions retained per portfolio.
	// Older backups are evicted first.
	MaxBackups = 10

	// DefaultSlugMaxAttempts caps the numeric suffixes tried for one slug base.
	DefaultSlugMaxAttempts = 1000

	// DefaultMaxConflictRetries caps re-read/re-apply cycles after a version conflict.
	DefaultMaxConflictRetries = 3
)
