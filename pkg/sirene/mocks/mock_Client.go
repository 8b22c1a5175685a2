// Package mocks provides test doubles for the sirene client.
package mocks

import (
	"context"

	model "github.com/sells-group/siren-cli/internal/model"
	sirene "github.com/sells-group/siren-cli/pkg/sirene"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// FetchEstablishment provides a mock function with given fields: ctx, siret
func (_m *MockClient) FetchEstablishment(ctx context.Context, siret string) (*model.EstablishmentRecord, error) {
	ret := _m.Called(ctx, siret)

	if len(ret) == 0 {
		panic("no return value specified for FetchEstablishment")
	}

	var r0 *model.EstablishmentRecord
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.EstablishmentRecord, error)); ok {
		return rf(ctx, siret)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.EstablishmentRecord); ok {
		r0 = rf(ctx, siret)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.EstablishmentRecord)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, siret)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// FetchLegalEntity provides a mock function with given fields: ctx, siren
func (_m *MockClient) FetchLegalEntity(ctx context.Context, siren string) (*model.LegalEntityRecord, error) {
	ret := _m.Called(ctx, siren)

	if len(ret) == 0 {
		panic("no return value specified for FetchLegalEntity")
	}

	var r0 *model.LegalEntityRecord
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.LegalEntityRecord, error)); ok {
		return rf(ctx, siren)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.LegalEntityRecord); ok {
		r0 = rf(ctx, siren)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.LegalEntityRecord)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, siren)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// TestConnection provides a mock function with given fields: ctx, sampleSIRET
func (_m *MockClient) TestConnection(ctx context.Context, sampleSIRET string) *sirene.ConnectionResult {
	ret := _m.Called(ctx, sampleSIRET)

	if len(ret) == 0 {
		panic("no return value specified for TestConnection")
	}

	var r0 *sirene.ConnectionResult
	if rf, ok := ret.Get(0).(func(context.Context, string) *sirene.ConnectionResult); ok {
		r0 = rf(ctx, sampleSIRET)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*sirene.ConnectionResult)
		}
	}

	return r0
}

// NewMockClient creates a new instance of MockClient. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
