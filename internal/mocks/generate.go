// Package mocks provides mock implementations for testing the studiodesk role system.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockDir := mocks.NewMockDirectory(ctrl)
//	mockDir.EXPECT().CallerRole(gomock.Any(), gomock.Any()).Return(role, nil)
package mocks

// Generate mock for Directory interface from internal/ports package.
// This creates MockDirectory with methods for all Directory interface methods:
// RequestRole, AssignRole, CallerRole, IsCallerAdmin, CallerProfile, SaveCallerProfile
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=directory_mock.go github.com/danicastudios/studiodesk/internal/ports Directory

// Generate mock for CacheRepository interface from internal/ports package.
// This creates MockCacheRepository with methods for all CacheRepository interface methods:
// Set, Get, Delete, Health
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=cache_repository_mock.go github.com/danicastudios/studiodesk/internal/ports CacheRepository
