package transport

import (
	"encoding/json"
	"errors"

	"github.com/MayankMankar1/ShadowSignal/game"
)

// Stateless pass-through for peer-to-peer audio negotiation. The server
// relays three opaque payload kinds between two clients by id and keeps
// nothing.

var (
	errMissingSignal     = errors.New("missing signal payload")
	errUnknownSignalKind = errors.New("unknown signal kind")
	errUnknownTarget     = errors.New("unknown signal target")
)

type SignalPayload struct {
	Kind string          `json:"kind"` // offer, answer or candidate
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// SignalRelay is what the target receives; Data passes through untouched.
type SignalRelay struct {
	From string          `json:"from"`
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func (h *Handler) relaySignal(from *Client, sig *SignalPayload) error {
	if sig == nil {
		return errMissingSignal
	}
	switch sig.Kind {
	case "offer", "answer", "candidate":
	default:
		return errUnknownSignalKind
	}
	if _, ok := h.hub.client(sig.To); !ok {
		return errUnknownTarget
	}

	h.hub.Send(sig.To, game.Envelope{
		Type: "signal",
		Data: SignalRelay{From: from.ID, Kind: sig.Kind, Data: sig.Data},
	})
	return nil
}
