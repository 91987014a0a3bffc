// Package schemas embeds the JSON Schema documents shipped with benchsight.
package schemas

import _ "embed"

// ReviewSchemaJSON is the JSON Schema for one analyst review payload, as it
// appears inside a fenced JSON block of a score document or a run log.
//
//go:embed review.schema.json
var ReviewSchemaJSON string
