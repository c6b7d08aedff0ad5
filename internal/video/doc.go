// Package video holds the item model shared by the listing client, the
// orchestrator, the acquisition pipeline, and the run report.
package video
