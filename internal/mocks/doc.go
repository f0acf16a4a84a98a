// Package mocks provides function-field mock implementations of the store,
// generation, auth and service interfaces for tests.
//
// Each mock has one Fn field per interface method. A nil Fn falls back to a
// simple default (usually zero values, or the in-memory behavior noted on
// the mock), so a test only sets the methods it cares about:
//
//	users := mocks.NewMockUserStore()
//	users.GetByEmailFn = func(ctx context.Context, email string) (*domain.User, error) {
//	    return nil, store.ErrUserNotFound
//	}
package mocks
