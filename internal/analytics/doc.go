// Package analytics records completed searches off the request path. A
// bounded channel feeds one consumer goroutine that flushes batches to a
// sink by size or by time; when the channel is full, events are dropped and
// counted rather than blocking the caller.
package analytics
