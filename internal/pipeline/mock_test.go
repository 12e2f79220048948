package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/leadgen-cli/pkg/emailfinder"
	"github.com/sells-group/leadgen-cli/pkg/notifier"
	"github.com/sells-group/leadgen-cli/pkg/registry"
)

// --- Registry Mock ---

type mockRegistryClient struct {
	mock.Mock
}

func (m *mockRegistryClient) Search(ctx context.Context, query string, itemsPerPage, startIndex int) (*registry.SearchPage, error) {
	args := m.Called(ctx, query, itemsPerPage, startIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.SearchPage), args.Error(1)
}

func (m *mockRegistryClient) Profile(ctx context.Context, companyNumber string) (*registry.CompanyProfile, error) {
	args := m.Called(ctx, companyNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.CompanyProfile), args.Error(1)
}

func (m *mockRegistryClient) Officers(ctx context.Context, companyNumber string) (*registry.OfficerList, error) {
	args := m.Called(ctx, companyNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.OfficerList), args.Error(1)
}

// --- Email Finder Mock ---

type mockEmailClient struct {
	mock.Mock
}

func (m *mockEmailClient) Find(ctx context.Context, req emailfinder.FindRequest) (*emailfinder.FindResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*emailfinder.FindResult), args.Error(1)
}

// --- Notifier Mock ---

type mockNotifierClient struct {
	mock.Mock
}

func (m *mockNotifierClient) Send(ctx context.Context, to, body string) (*notifier.Message, error) {
	args := m.Called(ctx, to, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notifier.Message), args.Error(1)
}

// --- Ensure interface compliance ---
var (
	_ registry.Client    = (*mockRegistryClient)(nil)
	_ emailfinder.Client = (*mockEmailClient)(nil)
	_ notifier.Client    = (*mockNotifierClient)(nil)
)
