package mocks

import (
	"context"

	"regionalgeo/internal/model"
	"regionalgeo/internal/resolver"
	"regionalgeo/internal/status"
)

type MockResolver struct {
	ResolveFunc func(ctx context.Context, ip string) (*resolver.Outcome, error)
}

func (m *MockResolver) Resolve(ctx context.Context, ip string) (*resolver.Outcome, error) {
	return m.ResolveFunc(ctx, ip)
}

type MockStore struct {
	GetFunc    func(ctx context.Context, ip string) ([]byte, error)
	SetFunc    func(ctx context.Context, ip string, data []byte) error
	DeleteFunc func(ctx context.Context, ip string) error
}

func (m *MockStore) Get(ctx context.Context, ip string) ([]byte, error) {
	return m.GetFunc(ctx, ip)
}

func (m *MockStore) Set(ctx context.Context, ip string, data []byte) error {
	return m.SetFunc(ctx, ip, data)
}

func (m *MockStore) Delete(ctx context.Context, ip string) error {
	return m.DeleteFunc(ctx, ip)
}

type MockGeoService struct {
	LookupFunc        func(ctx context.Context, ip string) (*model.Envelope, error)
	ClearCacheFunc    func(ctx context.Context, ip string) error
	RejectFunc        func(ip string, c status.Code) *model.Envelope
	StatusesFunc      func() map[status.Code]string
	StatusMessageFunc func(code string) (string, bool)
}

func (m *MockGeoService) Lookup(ctx context.Context, ip string) (*model.Envelope, error) {
	return m.LookupFunc(ctx, ip)
}

func (m *MockGeoService) ClearCache(ctx context.Context, ip string) error {
	return m.ClearCacheFunc(ctx, ip)
}

func (m *MockGeoService) Reject(ip string, c status.Code) *model.Envelope {
	return m.RejectFunc(ip, c)
}

func (m *MockGeoService) Statuses() map[status.Code]string {
	return m.StatusesFunc()
}

func (m *MockGeoService) StatusMessage(code string) (string, bool) {
	return m.StatusMessageFunc(code)
}

type MockRegionStore struct {
	ByCountryCodeFunc func(ctx context.Context, code string) (*model.Region, error)
	ListFunc          func(ctx context.Context) ([]model.Region, error)
	SaveFunc          func(ctx context.Context, region model.Region) error
	DeleteFunc        func(ctx context.Context, code string) (bool, error)
}

func (m *MockRegionStore) ByCountryCode(ctx context.Context, code string) (*model.Region, error) {
	return m.ByCountryCodeFunc(ctx, code)
}

func (m *MockRegionStore) List(ctx context.Context) ([]model.Region, error) {
	return m.ListFunc(ctx)
}

func (m *MockRegionStore) Save(ctx context.Context, region model.Region) error {
	return m.SaveFunc(ctx, region)
}

func (m *MockRegionStore) Delete(ctx context.Context, code string) (bool, error) {
	return m.DeleteFunc(ctx, code)
}
