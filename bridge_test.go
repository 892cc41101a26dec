package omsbridge

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend answers the few operations the tests call and records
// which kind served them. Other methods panic through the nil embedded
// interface.
type recordingBackend struct {
	Backend
	kind BackendKind

	mu    sync.Mutex
	calls []string
}

func (r *recordingBackend) Kind() BackendKind { return r.kind }

func (r *recordingBackend) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
}

func (r *recordingBackend) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordingBackend) GetProfile(context.Context) (*User, error) {
	r.record("GetProfile")
	return &User{UserID: r.kind.String()}, nil
}

func (r *recordingBackend) SetUserLocale(_ context.Context, _, locale string) error {
	r.record("SetUserLocale:" + locale)
	return nil
}

func (r *recordingBackend) GetProductIdentificationPref(_ context.Context, storeID string) (ProductIdentificationPref, error) {
	r.record("GetProductIdentificationPref:" + storeID)
	return DefaultProductIdentificationPref(), nil
}

func newRecordingBridge(kind BackendKind) (*OMSBridge, *recordingBackend, *recordingBackend) {
	legacy := &recordingBackend{kind: LegacyBackend}
	modern := &recordingBackend{kind: ModernBackend}
	b := NewOMSBridge(kind)
	b.RegisterBackend(LegacyBackend, legacy)
	b.RegisterBackend(ModernBackend, modern)
	return b, legacy, modern
}

func TestOMSBridge_DispatchesToConfiguredKind(t *testing.T) {
	ctx := context.Background()
	for _, kind := range []BackendKind{LegacyBackend, ModernBackend} {
		t.Run(kind.String(), func(t *testing.T) {
			b, legacy, modern := newRecordingBridge(kind)
			assert.Equal(t, kind, b.Kind())

			user, err := b.GetProfile(ctx)
			require.NoError(t, err)
			assert.Equal(t, kind.String(), user.UserID)
			require.NoError(t, b.SetUserLocale(ctx, "u", "en-US"))
			_, err = b.GetProductIdentificationPref(ctx, "STORE")
			require.NoError(t, err)

			want := []string{"GetProfile", "SetUserLocale:en-US", "GetProductIdentificationPref:STORE"}
			served, idle := legacy, modern
			if kind == ModernBackend {
				served, idle = modern, legacy
			}
			assert.Equal(t, want, served.Calls())
			assert.Empty(t, idle.Calls())
		})
	}
}

func TestOMSBridge_UnregisteredBackend(t *testing.T) {
	ctx := context.Background()
	b := NewOMSBridge(ModernBackend)
	b.RegisterBackend(LegacyBackend, &recordingBackend{kind: LegacyBackend})

	_, err := b.GetProfile(ctx)
	assert.ErrorIs(t, err, ErrBackendNotRegistered)
	assert.Contains(t, err.Error(), "MOQUI")

	assert.ErrorIs(t, b.Logout(ctx), ErrBackendNotRegistered)
	assert.ErrorIs(t, b.SubscribeTopic(ctx, "t", "app"), ErrBackendNotRegistered)

	pref, err := b.GetProductIdentificationPref(ctx, "STORE")
	assert.ErrorIs(t, err, ErrBackendNotRegistered)
	assert.Zero(t, pref)
}

func TestOMSBridge_ConcurrentBridgesStayApart(t *testing.T) {
	ctx := context.Background()
	legacyBridge, l1, m1 := newRecordingBridge(LegacyBackend)
	modernBridge, l2, m2 := newRecordingBridge(ModernBackend)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = legacyBridge.GetProfile(ctx)
		}()
		go func() {
			defer wg.Done()
			_, _ = modernBridge.GetProfile(ctx)
		}()
	}
	wg.Wait()

	assert.Len(t, l1.Calls(), 50)
	assert.Empty(t, m1.Calls())
	assert.Empty(t, l2.Calls())
	assert.Len(t, m2.Calls(), 50)
}
