// Package store defines the persistence interfaces for the application's
// entities, the shared error taxonomy for storage failures, and the
// transaction helper used to make multi-statement mutations atomic.
package store
