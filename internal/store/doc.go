// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Every collection store reports missing records with an error wrapping
// ErrNotFound, and the schedule store guards updates with an optimistic
// version check reported as ErrStaleWrite.
package store
