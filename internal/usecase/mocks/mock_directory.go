//	mockgen -source=directory.go -destination=mocks/mock_directory.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockUserDirectory is a mock of UserDirectory interface.
type MockUserDirectory struct {
	ctrl     *gomock.Controller
	recorder *MockUserDirectoryMockRecorder
	isgomock struct{}
}

// MockUserDirectoryMockRecorder is the mock recorder for MockUserDirectory.
type MockUserDirectoryMockRecorder struct {
	mock *MockUserDirectory
}

// NewMockUserDirectory creates a new mock instance.
func NewMockUserDirectory(ctrl *gomock.Controller) *MockUserDirectory {
	mock := &MockUserDirectory{ctrl: ctrl}
	mock.recorder = &MockUserDirectoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockUserDirectory) EXPECT() *MockUserDirectoryMockRecorder {
	return m.recorder
}

// Exists mocks base method.
func (m *MockUserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Exists", ctx, userID)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Exists indicates an expected call of Exists.
func (mr *MockUserDirectoryMockRecorder) Exists(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Exists", reflect.TypeOf((*MockUserDirectory)(nil).Exists), ctx, userID)
}
