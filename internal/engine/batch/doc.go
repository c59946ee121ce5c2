// Package batch runs a fixed set of independent tasks concurrently and waits
// for every one of them to settle.
//
// Unlike a fail-fast group, a failing task never cancels its siblings. The
// caller gets the per-task errors, the first failure in completion order and
// a combined error listing every failure. Progress callbacks fire after each
// task settles so a UI can render partial results.
package batch
