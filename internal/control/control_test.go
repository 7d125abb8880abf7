package control

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bnema/seatctl/internal/compositor"
	"github.com/bnema/seatctl/internal/gateway"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder forwards to an in-memory compositor and records every request
type recorder struct {
	*compositor.State

	mu     sync.Mutex
	events []string
	syncs  int
}

func (r *recorder) Sync(ctx context.Context) (gateway.Snapshot, error) {
	r.mu.Lock()
	r.syncs++
	r.mu.Unlock()
	return r.State.Sync(ctx)
}

func (r *recorder) NotifyAcceptanceChange(seatName string, id surface.ID, accepted bool) error {
	r.record(fmt.Sprintf("acceptance %s %d %v", seatName, id, accepted))
	return r.State.NotifyAcceptanceChange(seatName, id, accepted)
}

func (r *recorder) NotifyFocusChange(id surface.ID, mask seat.Capability, set bool) error {
	r.record(fmt.Sprintf("focus %d %s %v", id, mask, set))
	return r.State.NotifyFocusChange(id, mask, set)
}

func (r *recorder) NotifyFocusAtomic(dst, src []surface.ID, mask seat.Capability) error {
	r.record(fmt.Sprintf("atomic %v %v %s", dst, src, mask))
	return r.State.NotifyFocusAtomic(dst, src, mask)
}

func (r *recorder) record(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// take returns and clears the recorded events
func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev := r.events
	r.events = nil
	return ev
}

// newFixture builds the scenario: seat0 = pointer|keyboard, seat1 = touch,
// surfaces 7, 8 and 9 with no accepted seats and no focus
func newFixture(t *testing.T) (*Controller, *recorder) {
	t.Helper()

	state := compositor.NewState()
	state.AddSeat(seat.Seat{Name: "seat0", Capabilities: seat.Pointer | seat.Keyboard})
	state.AddSeat(seat.Seat{Name: "seat1", Capabilities: seat.Touch})
	for _, id := range []surface.ID{7, 8, 9} {
		require.NoError(t, state.AddSurface(id))
	}

	rec := &recorder{State: state}
	gw := gateway.New(rec, gateway.WithAcquireTimeout(time.Second))
	return New(gw), rec
}

func TestDiffAcceptance(t *testing.T) {
	tests := []struct {
		name       string
		current    []string
		desired    []string
		wantAccept []string
		wantRevoke []string
	}{
		{"empty to two", nil, []string{"a", "b"}, []string{"a", "b"}, nil},
		{"unchanged", []string{"a", "b"}, []string{"b", "a"}, nil, nil},
		{"shrink", []string{"a", "b"}, []string{"b"}, nil, []string{"a"}},
		{"clear", []string{"a", "b"}, nil, nil, []string{"a", "b"}},
		{"swap", []string{"a"}, []string{"b"}, []string{"b"}, []string{"a"}},
		{"duplicates collapse", nil, []string{"a", "a"}, []string{"a"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DiffAcceptance(tt.current, tt.desired)
			assert.Equal(t, tt.wantAccept, d.Accept)
			assert.Equal(t, tt.wantRevoke, d.Revoke)
			assert.Equal(t, len(tt.wantAccept)+len(tt.wantRevoke) == 0, d.Empty())
		})
	}
}

func TestAcceptanceScenario(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	require.NoError(t, ctl.SetAcceptance(ctx, 7, []string{"seat0", "seat1"}))
	assert.Equal(t, []string{"acceptance seat0 7 true", "acceptance seat1 7 true"}, rec.take())

	got, err := ctl.Acceptance(ctx, 7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"seat0", "seat1"}, got)

	require.NoError(t, ctl.SetAcceptance(ctx, 7, []string{"seat1"}))
	assert.Equal(t, []string{"acceptance seat0 7 false"}, rec.take())

	got, err = ctl.Acceptance(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"seat1"}, got)
}

func TestSetAcceptanceRoundTrip(t *testing.T) {
	sets := [][]string{
		{},
		{"seat0"},
		{"seat1"},
		{"seat0", "seat1"},
		{"seat1", "seat0"},
	}

	for _, desired := range sets {
		t.Run(fmt.Sprint(desired), func(t *testing.T) {
			ctl, _ := newFixture(t)
			ctx := context.Background()

			require.NoError(t, ctl.SetAcceptance(ctx, 8, []string{"seat0"}))
			require.NoError(t, ctl.SetAcceptance(ctx, 8, desired))

			got, err := ctl.Acceptance(ctx, 8)
			require.NoError(t, err)
			assert.ElementsMatch(t, desired, got)
		})
	}
}

func TestSetAcceptanceIsIdempotent(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	require.NoError(t, ctl.SetAcceptance(ctx, 7, []string{"seat0", "seat1"}))
	assert.Len(t, rec.take(), 2)

	require.NoError(t, ctl.SetAcceptance(ctx, 7, []string{"seat1", "seat0"}))
	assert.Empty(t, rec.take())
}

func TestSetAcceptanceEmptyClears(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	require.NoError(t, ctl.SetAcceptance(ctx, 7, []string{"seat0", "seat1"}))
	rec.take()

	require.NoError(t, ctl.SetAcceptance(ctx, 7, nil))
	assert.Len(t, rec.take(), 2)

	got, err := ctl.Acceptance(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetAcceptanceUnknownSeatIsAllOrNothing(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	require.NoError(t, ctl.SetAcceptance(ctx, 7, []string{"seat0"}))
	rec.take()

	err := ctl.SetAcceptance(ctx, 7, []string{"seat1", "ghost"})
	assert.ErrorIs(t, err, ErrUnknownSeat)
	assert.Contains(t, err.Error(), "ghost")
	assert.Empty(t, rec.take())

	got, err := ctl.Acceptance(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"seat0"}, got)
}

func TestSetAcceptanceUnknownSurface(t *testing.T) {
	ctl, rec := newFixture(t)

	err := ctl.SetAcceptance(context.Background(), 404, []string{"seat0"})
	assert.ErrorIs(t, err, ErrUnknownSurface)
	assert.Empty(t, rec.take())

	_, err = ctl.Acceptance(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUnknownSurface)
}

func TestAcceptanceReturnsCallerOwnedSlice(t *testing.T) {
	ctl, _ := newFixture(t)
	ctx := context.Background()
	require.NoError(t, ctl.SetAcceptance(ctx, 7, []string{"seat0"}))

	got, err := ctl.Acceptance(ctx, 7)
	require.NoError(t, err)
	got[0] = "mutated"

	again, err := ctl.Acceptance(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"seat0"}, again)
}

func TestInputDevices(t *testing.T) {
	ctl, _ := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		mask seat.Capability
		want []string
	}{
		{"all", seat.All, []string{"seat0", "seat1"}},
		{"pointer", seat.Pointer, []string{"seat0"}},
		{"touch", seat.Touch, []string{"seat1"}},
		{"pointer or touch", seat.Pointer | seat.Touch, []string{"seat0", "seat1"}},
		{"none", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ctl.InputDevices(ctx, tt.mask)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	seats, err := ctl.Seats(ctx, seat.Keyboard)
	require.NoError(t, err)
	require.Len(t, seats, 1)
	assert.Equal(t, seat.Pointer|seat.Keyboard, seats[0].Capabilities)
}

func TestDeviceCapabilities(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	caps, err := ctl.DeviceCapabilities(ctx, "seat0")
	require.NoError(t, err)
	assert.Equal(t, seat.Pointer|seat.Keyboard, caps)

	_, err = ctl.DeviceCapabilities(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUnknownSeat)

	syncs := rec.syncs
	_, err = ctl.DeviceCapabilities(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, syncs, rec.syncs, "invalid argument must not acquire the context")
}

func TestSetFocus(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	require.NoError(t, ctl.SetFocus(ctx, []surface.ID{7}, seat.Pointer, true))
	assert.Equal(t, []string{"focus 7 pointer true"}, rec.take())

	require.NoError(t, ctl.SetFocus(ctx, []surface.ID{8, 9}, seat.Keyboard, true))
	assert.Equal(t, []string{"focus 8 keyboard true", "focus 9 keyboard true"}, rec.take())

	// Clearing pointer focus on several surfaces is allowed
	require.NoError(t, ctl.SetFocus(ctx, []surface.ID{7, 8}, seat.Pointer, false))
	assert.Len(t, rec.take(), 2)

	entries, err := ctl.Focus(ctx)
	require.NoError(t, err)
	assert.Equal(t, []FocusEntry{
		{Surface: 7, Focus: 0},
		{Surface: 8, Focus: seat.Keyboard},
		{Surface: 9, Focus: seat.Keyboard},
	}, entries)
}

func TestSetFocusExclusivity(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	for _, mask := range []seat.Capability{seat.Pointer, seat.Touch, seat.Pointer | seat.Keyboard, seat.All} {
		syncs := rec.syncs
		err := ctl.SetFocus(ctx, []surface.ID{7, 8}, mask, true)
		assert.ErrorIs(t, err, ErrExclusivityViolation, "mask %s", mask)
		assert.Equal(t, syncs, rec.syncs, "rejected before acquiring")
	}
	assert.Empty(t, rec.take())
}

func TestSetFocusValidation(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, ctl.SetFocus(ctx, nil, seat.Keyboard, true), ErrInvalidArgument)

	// One unknown id fails the whole batch
	err := ctl.SetFocus(ctx, []surface.ID{8, 404, 9}, seat.Keyboard, true)
	assert.ErrorIs(t, err, ErrUnknownSurface)
	assert.Empty(t, rec.take())

	entries, err := ctl.Focus(ctx)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, seat.Capability(0), e.Focus)
	}
}

func TestSetFocusAtomic(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	require.NoError(t, ctl.SetFocus(ctx, []surface.ID{8}, seat.Pointer, true))
	rec.take()

	require.NoError(t, ctl.SetFocusAtomic(ctx, []surface.ID{7}, []surface.ID{8}, seat.Pointer))
	assert.Equal(t, []string{"atomic [7] [8] pointer"}, rec.take())

	entries, err := ctl.Focus(ctx)
	require.NoError(t, err)
	assert.Equal(t, seat.Pointer, entries[0].Focus)
	assert.Equal(t, seat.Capability(0), entries[1].Focus)
}

func TestSetFocusAtomicFiltersUnknown(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	require.NoError(t, ctl.SetFocusAtomic(ctx, []surface.ID{404, 9}, []surface.ID{405}, seat.Keyboard))
	assert.Equal(t, []string{"atomic [9] [] keyboard"}, rec.take())

	err := ctl.SetFocusAtomic(ctx, []surface.ID{404}, []surface.ID{405}, seat.Pointer)
	assert.ErrorIs(t, err, ErrNoOp)
	assert.Empty(t, rec.take())
}

func TestSetFocusAtomicValidation(t *testing.T) {
	ctl, rec := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, ctl.SetFocusAtomic(ctx, nil, nil, seat.Pointer), ErrInvalidArgument)
	assert.ErrorIs(t, ctl.SetFocusAtomic(ctx, []surface.ID{7, 8}, nil, seat.Touch), ErrExclusivityViolation)

	// Several sources are fine, and keyboard may go to several destinations
	assert.NoError(t, ctl.SetFocusAtomic(ctx, []surface.ID{7}, []surface.ID{8, 9}, seat.Pointer))
	assert.NoError(t, ctl.SetFocusAtomic(ctx, []surface.ID{8, 9}, []surface.ID{7}, seat.Keyboard))
	assert.Len(t, rec.take(), 2)
}

func TestOperationsReleaseContext(t *testing.T) {
	ctl, _ := newFixture(t)
	ctx := context.Background()

	// Each failure below must release, otherwise the next call times out
	_ = ctl.SetAcceptance(ctx, 404, nil)
	_ = ctl.SetAcceptance(ctx, 7, []string{"ghost"})
	_, _ = ctl.Acceptance(ctx, 404)
	_, _ = ctl.DeviceCapabilities(ctx, "ghost")
	_ = ctl.SetFocus(ctx, []surface.ID{404}, seat.Pointer, true)
	_ = ctl.SetFocusAtomic(ctx, []surface.ID{404}, nil, seat.Pointer)

	_, err := ctl.Focus(ctx)
	assert.NoError(t, err)
}

func TestConcurrentOperations(t *testing.T) {
	ctl, _ := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seats := []string{"seat0"}
			if i%2 == 0 {
				seats = []string{"seat1"}
			}
			assert.NoError(t, ctl.SetAcceptance(ctx, 9, seats))
		}(i)
	}
	wg.Wait()

	got, err := ctl.Acceptance(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
