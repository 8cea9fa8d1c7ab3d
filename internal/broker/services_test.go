package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/z3phyrl/zeitop/internal/wire"
)

func TestServiceMapInsertAndGet(t *testing.T) {
	m := NewServiceMap()
	svc, err := m.Insert("sysinfo", wire.ServiceKindRequest, nil)
	assert.NoError(t, err)
	assert.Equal(t, "sysinfo", svc.Name)

	got, ok := m.Get("sysinfo")
	assert.True(t, ok)
	assert.Same(t, svc, got)
}

func TestServiceMapRejectsDuplicateAndKeepsOriginal(t *testing.T) {
	m := NewServiceMap()
	first, err := m.Insert("sysinfo", wire.ServiceKindRequest, nil)
	assert.NoError(t, err)

	_, err = m.Insert("sysinfo", wire.ServiceKindBroadcast, nil)
	assert.ErrorIs(t, err, ErrServiceAlreadyRegistered)

	got, ok := m.Get("sysinfo")
	assert.True(t, ok)
	assert.Same(t, first, got, "original registration must survive a duplicate attempt")
	assert.Equal(t, wire.ServiceKindRequest, got.Kind, "kind must not change after insertion")
}

func TestServiceMapRemoveIsIdempotent(t *testing.T) {
	m := NewServiceMap()
	m.Remove("never-registered")

	_, err := m.Insert("sysinfo", wire.ServiceKindRequest, nil)
	assert.NoError(t, err)
	m.Remove("sysinfo")
	m.Remove("sysinfo")

	_, ok := m.Get("sysinfo")
	assert.False(t, ok)
}

func TestServicePendingRequestRoundTrip(t *testing.T) {
	svc := newService("sysinfo", wire.ServiceKindRequest, nil)
	svc.trackRequest("dev42", 1, "q7", "uptime")

	got, ok := svc.takeRequest("dev42", 1, "q7")
	assert.True(t, ok)
	assert.Equal(t, "uptime", got)

	_, ok = svc.takeRequest("dev42", 1, "q7")
	assert.False(t, ok, "a reply must be matched to at most one request")
}

func TestServicePendingRequestDistinguishesTags(t *testing.T) {
	svc := newService("sysinfo", wire.ServiceKindRequest, nil)
	svc.trackRequest("dev42", 1, "", "uptime")
	svc.trackRequest("dev42", 1, "q7", "host")

	got, ok := svc.takeRequest("dev42", 1, "q7")
	assert.True(t, ok)
	assert.Equal(t, "host", got)

	got, ok = svc.takeRequest("dev42", 1, "")
	assert.True(t, ok)
	assert.Equal(t, "uptime", got)
}
