// Package mocks provides centralized mock implementations for testing.
//
// Each mock has one function field per interface method. A nil function
// falls back to the mock's Err field, so a zero-value mock succeeds with
// zero results. Calls are counted for verification.
//
// Usage:
//
//	schedules := &mocks.MockScheduleStore{
//	    UpdateFn: func(ctx context.Context, s *domain.CardSchedule) error {
//	        return store.ErrStaleWrite
//	    },
//	}
//	stores := store.Stores{Schedules: schedules}
//	tx := &mocks.MockTransactor{Stores: stores}
package mocks
