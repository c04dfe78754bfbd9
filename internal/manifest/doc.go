// Package manifest holds the fixed variant ladder and renders HLS playlist
// text for it. The ladder and segment duration are process-wide constants;
// changing them is a redeploy, not a data migration.
package manifest
