// Package memory implements store.Store in process memory.
//
// It is used by tests and by one-shot imports configured with the "memory" database
// driver. Contents are lost when the process exits.
package memory
