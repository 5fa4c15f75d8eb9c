// Package mocks provides mock implementations for testing the deliverable
// pipeline.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core port interfaces. To regenerate after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	repo := mocks.NewMockJobRepository(ctrl)
//	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Mock for the job repository port.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_repository_mock.go github.com/coursedeck/deliverables-api/internal/core JobRepository

// Mock for the artifact repository port.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=artifact_repository_mock.go github.com/coursedeck/deliverables-api/internal/core ArtifactRepository

// Mocks for the pipeline stage ports.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=stage_mocks.go github.com/coursedeck/deliverables-api/internal/core MaterialFetcher,MaterialCache,ContentGenerator,Renderer,Validator
