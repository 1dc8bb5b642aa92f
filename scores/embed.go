// Package scores embeds the built-in score definitions.
package scores

import "embed"

// FS holds every definition below this directory, one specialty per folder.
//
//go:embed */*.yaml
var FS embed.FS
