// Package wire encodes the control protocol spoken between seatctl and the
// compositor's control socket.
//
// Every message is a protobuf Struct carrying a "kind" field plus kind-specific
// fields, written as a 4-byte big-endian length followed by the marshalled bytes.
// Requests are processed in order per connection, so the snapshot answering a
// sync request reflects every request sent before it.
package wire

import (
	"fmt"

	"github.com/bnema/seatctl/internal/gateway"
	"github.com/bnema/seatctl/internal/seat"
	"github.com/bnema/seatctl/internal/surface"
	"google.golang.org/protobuf/types/known/structpb"
)

// Kind identifies a message type
type Kind string

const (
	KindSync        Kind = "sync"
	KindSnapshot    Kind = "snapshot"
	KindAcceptance  Kind = "acceptance"
	KindFocus       Kind = "focus"
	KindFocusAtomic Kind = "focus_atomic"
	KindError       Kind = "error"
)

// Message is the decoded form of every protocol message. Only the fields
// relevant to Kind are set.
type Message struct {
	Kind Kind

	// acceptance
	Seat     string
	Accepted bool

	// acceptance, focus
	Surface surface.ID

	// focus, focus_atomic
	Mask seat.Capability
	Set  bool
	Dst  []surface.ID
	Src  []surface.ID

	// snapshot
	Snapshot *gateway.Snapshot

	// error
	Error string
}

// NewSyncMessage creates a round-trip request
func NewSyncMessage() *Message {
	return &Message{Kind: KindSync}
}

// NewSnapshotMessage creates a sync reply
func NewSnapshotMessage(snap gateway.Snapshot) *Message {
	return &Message{Kind: KindSnapshot, Snapshot: &snap}
}

// NewAcceptanceMessage creates an acceptance change request
func NewAcceptanceMessage(seatName string, id surface.ID, accepted bool) *Message {
	return &Message{Kind: KindAcceptance, Seat: seatName, Surface: id, Accepted: accepted}
}

// NewFocusMessage creates a single-surface focus change request
func NewFocusMessage(id surface.ID, mask seat.Capability, set bool) *Message {
	return &Message{Kind: KindFocus, Surface: id, Mask: mask, Set: set}
}

// NewFocusAtomicMessage creates an atomic focus transfer request
func NewFocusAtomicMessage(dst, src []surface.ID, mask seat.Capability) *Message {
	return &Message{Kind: KindFocusAtomic, Dst: dst, Src: src, Mask: mask}
}

// NewErrorMessage creates an error reply
func NewErrorMessage(errMsg string) *Message {
	return &Message{Kind: KindError, Error: errMsg}
}

// Encode converts a message to its protobuf form
func Encode(m *Message) (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"kind": string(m.Kind),
	}

	switch m.Kind {
	case KindSync:
	case KindSnapshot:
		if m.Snapshot == nil {
			return nil, fmt.Errorf("snapshot message without snapshot")
		}
		fields["seats"], fields["surfaces"] = encodeSnapshot(*m.Snapshot)
	case KindAcceptance:
		fields["seat"] = m.Seat
		fields["surface"] = uint32(m.Surface)
		fields["accepted"] = m.Accepted
	case KindFocus:
		fields["surface"] = uint32(m.Surface)
		fields["mask"] = uint32(m.Mask)
		fields["set"] = m.Set
	case KindFocusAtomic:
		fields["dst"] = idList(m.Dst)
		fields["src"] = idList(m.Src)
		fields["mask"] = uint32(m.Mask)
	case KindError:
		fields["error"] = m.Error
	default:
		return nil, fmt.Errorf("unknown message kind %q", m.Kind)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.Kind, err)
	}
	return s, nil
}

func encodeSnapshot(snap gateway.Snapshot) ([]interface{}, []interface{}) {
	seats := make([]interface{}, len(snap.Seats))
	for i, s := range snap.Seats {
		seats[i] = map[string]interface{}{
			"name":         s.Name,
			"capabilities": uint32(s.Capabilities),
		}
	}

	surfaces := make([]interface{}, len(snap.Surfaces))
	for i, s := range snap.Surfaces {
		accepted := make([]interface{}, len(s.AcceptedSeats))
		for j, name := range s.AcceptedSeats {
			accepted[j] = name
		}
		surfaces[i] = map[string]interface{}{
			"id":             uint32(s.ID),
			"accepted_seats": accepted,
			"focus":          uint32(s.Focus),
		}
	}
	return seats, surfaces
}

func idList(ids []surface.ID) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

// Decode converts the protobuf form back into a message
func Decode(s *structpb.Struct) (*Message, error) {
	f := s.GetFields()
	m := &Message{Kind: Kind(f["kind"].GetStringValue())}

	var err error
	switch m.Kind {
	case KindSync:
	case KindSnapshot:
		m.Snapshot, err = decodeSnapshot(f)
	case KindAcceptance:
		m.Seat = f["seat"].GetStringValue()
		m.Accepted = f["accepted"].GetBoolValue()
		m.Surface, err = decodeID(f["surface"])
	case KindFocus:
		m.Set = f["set"].GetBoolValue()
		if m.Surface, err = decodeID(f["surface"]); err == nil {
			m.Mask, err = decodeMask(f["mask"])
		}
	case KindFocusAtomic:
		if m.Dst, err = decodeIDList(f["dst"]); err != nil {
			break
		}
		if m.Src, err = decodeIDList(f["src"]); err != nil {
			break
		}
		m.Mask, err = decodeMask(f["mask"])
	case KindError:
		m.Error = f["error"].GetStringValue()
	default:
		return nil, fmt.Errorf("unknown message kind %q", m.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("malformed %s message: %w", m.Kind, err)
	}
	return m, nil
}

func decodeSnapshot(f map[string]*structpb.Value) (*gateway.Snapshot, error) {
	snap := &gateway.Snapshot{}

	for _, v := range f["seats"].GetListValue().GetValues() {
		sf := v.GetStructValue().GetFields()
		caps, err := decodeMask(sf["capabilities"])
		if err != nil {
			return nil, fmt.Errorf("seat capabilities: %w", err)
		}
		snap.Seats = append(snap.Seats, seat.Seat{
			Name:         sf["name"].GetStringValue(),
			Capabilities: caps,
		})
	}

	for _, v := range f["surfaces"].GetListValue().GetValues() {
		sf := v.GetStructValue().GetFields()
		id, err := decodeID(sf["id"])
		if err != nil {
			return nil, fmt.Errorf("surface id: %w", err)
		}
		focus, err := decodeMask(sf["focus"])
		if err != nil {
			return nil, fmt.Errorf("surface %d focus: %w", id, err)
		}
		var accepted []string
		for _, name := range sf["accepted_seats"].GetListValue().GetValues() {
			accepted = append(accepted, name.GetStringValue())
		}
		snap.Surfaces = append(snap.Surfaces, surface.Surface{
			ID:            id,
			AcceptedSeats: accepted,
			Focus:         focus,
		})
	}
	return snap, nil
}

func decodeUint32(v *structpb.Value) (uint32, error) {
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return 0, fmt.Errorf("expected number")
	}
	n := v.GetNumberValue()
	if n < 0 || n > 0xFFFFFFFF || n != float64(uint32(n)) {
		return 0, fmt.Errorf("value %v out of range", n)
	}
	return uint32(n), nil
}

func decodeID(v *structpb.Value) (surface.ID, error) {
	n, err := decodeUint32(v)
	return surface.ID(n), err
}

func decodeMask(v *structpb.Value) (seat.Capability, error) {
	n, err := decodeUint32(v)
	return seat.Capability(n), err
}

func decodeIDList(v *structpb.Value) ([]surface.ID, error) {
	var out []surface.ID
	for _, item := range v.GetListValue().GetValues() {
		id, err := decodeID(item)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
