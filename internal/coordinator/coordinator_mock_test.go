package coordinator

import (
	"context"
	"sync"

	"github.com/heartmarshall/lexilens/internal/domain"
	"github.com/heartmarshall/lexilens/internal/protocol"
)

var _ Surface = &surfaceMock{}

type surfaceMock struct {
	DeliverFunc func(ctx context.Context, msg protocol.SelectionAccepted) error

	calls struct {
		Deliver []struct {
			Msg protocol.SelectionAccepted
		}
	}
	lockDeliver sync.RWMutex
}

func (mock *surfaceMock) Deliver(ctx context.Context, msg protocol.SelectionAccepted) error {
	if mock.DeliverFunc == nil {
		panic("surfaceMock.DeliverFunc: method is nil but Surface.Deliver was just called")
	}
	callInfo := struct {
		Msg protocol.SelectionAccepted
	}{Msg: msg}
	mock.lockDeliver.Lock()
	mock.calls.Deliver = append(mock.calls.Deliver, callInfo)
	mock.lockDeliver.Unlock()
	return mock.DeliverFunc(ctx, msg)
}

func (mock *surfaceMock) DeliverCalls() []struct {
	Msg protocol.SelectionAccepted
} {
	mock.lockDeliver.RLock()
	calls := mock.calls.Deliver
	mock.lockDeliver.RUnlock()
	return calls
}

var _ Opener = &openerMock{}

type openerMock struct {
	OpenSurfaceFunc func(ctx context.Context, tab domain.TabID) error

	calls struct {
		OpenSurface []struct {
			Tab domain.TabID
		}
	}
	lockOpenSurface sync.RWMutex
}

func (mock *openerMock) OpenSurface(ctx context.Context, tab domain.TabID) error {
	if mock.OpenSurfaceFunc == nil {
		panic("openerMock.OpenSurfaceFunc: method is nil but Opener.OpenSurface was just called")
	}
	callInfo := struct {
		Tab domain.TabID
	}{Tab: tab}
	mock.lockOpenSurface.Lock()
	mock.calls.OpenSurface = append(mock.calls.OpenSurface, callInfo)
	mock.lockOpenSurface.Unlock()
	return mock.OpenSurfaceFunc(ctx, tab)
}

func (mock *openerMock) OpenSurfaceCalls() []struct {
	Tab domain.TabID
} {
	mock.lockOpenSurface.RLock()
	calls := mock.calls.OpenSurface
	mock.lockOpenSurface.RUnlock()
	return calls
}
