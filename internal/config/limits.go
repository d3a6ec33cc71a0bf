package config

import "time"

const (
	// MaxTitleLength is the maximum length for item titles.
	MaxTitleLength = 200

	// MaxDescriptionLength is the maximum length for item descriptions.
	// Descriptions keep their newlines, so this is counted in runes.
	MaxDescriptionLength = 5000

	// MaxCommentLength is the maximum length for comment text.
	MaxCommentLength = 2000

	// MaxUploadBytes caps a single photo upload (10 MiB).
	MaxUploadBytes = 10 << 20

	// DefaultRemoteTimeout bounds every call into the store or image host.
	DefaultRemoteTimeout = 15 * time.Second

	// DefaultMaxWriteRetries bounds re-reads after a revision conflict.
	DefaultMaxWriteRetries = 3
)
