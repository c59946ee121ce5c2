// Package cache provides the in-memory TTL cell that backs the dashboard
// summary query.
//
// A Cell holds at most one entry: the most recent successful value and the
// instant it was captured. An entry is valid while its age is strictly below
// the TTL; at exactly TTL it is already stale. Cells are not safe for
// concurrent use on their own; the owner serializes access.
package cache
