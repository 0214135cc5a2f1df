// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package auth

import "time"

// # Authentication Constraints

const (
	// IdentityCacheTTL bounds how long a sanitized identity stays in the
	// cache before the middleware falls back to the database. Kept short so
	// that profile mutations propagate quickly even if an invalidation is lost.
	IdentityCacheTTL = 5 * time.Minute

	// MaxUploadBytes caps the multipart body size for registration and
	// image-update requests (avatar + cover image).
	MaxUploadBytes = 10 << 20 // 10 MiB
)
