// Package preflight provides readiness checks for the filesystem paths,
// credentials and external binaries a sync run depends on.
//
// These checks run in two contexts:
//   - `bget sync` calls RunAll before listing anything. A failed check aborts
//     the run before any network traffic.
//   - `bget status` uses the individual checks (including the online session
//     check) to display health.
package preflight
