// Package jobqueue implements the managed job queue consumed by the worker
// loop: at-most-one in-flight message per receive, a server-side visibility
// timeout during which no other consumer sees the message, and explicit
// deletion by receipt token. Persistence is SQLite so a single-node
// deployment needs no external broker; the Gateway contract matches what a
// hosted queue service would offer.
package jobqueue
