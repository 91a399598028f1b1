package events

import (
	"encoding/json"
	"sort"
	"strings"

	rpctypes "github.com/cometbft/cometbft/rpc/jsonrpc/types"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/tx"
)

// rpcResult is the result payload of an event subscription response frame.
type rpcResult struct {
	Query string `json:"query"`
	Data  struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	} `json:"data"`
	// Events is the node's flattened composite-key index of the frame's
	// events, e.g. "tx.hash" -> [<hash>].
	Events map[string][]string `json:"events"`
}

// txResultValue is the data value of a Tx event frame.
type txResultValue struct {
	TxResult struct {
		Height json.Number `json:"height"`
		Tx     []byte      `json:"tx"`
		Result struct {
			Events []abciEvent `json:"events"`
		} `json:"result"`
	} `json:"TxResult"`
}

type abciEvent struct {
	Type       string               `json:"type"`
	Attributes []abciEventAttribute `json:"attributes"`
}

type abciEventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParseEvents unmarshals a raw subscription frame into the chain events it
// carries. Frames which carry no events, such as the node's subscription
// acknowledgement, return ErrEventsUnmarshalEvent so callers can skip them.
func ParseEvents(frameBz []byte) ([]client.ChainEvent, error) {
	var rpcResponse rpctypes.RPCResponse
	if err := json.Unmarshal(frameBz, &rpcResponse); err != nil {
		return nil, ErrEventsUnmarshalEvent.Wrapf("%s", err)
	}
	if rpcResponse.Error != nil {
		return nil, ErrEventsSubscribe.Wrapf(
			"code %d: %s: %s",
			rpcResponse.Error.Code, rpcResponse.Error.Message, rpcResponse.Error.Data,
		)
	}

	var result rpcResult
	if err := json.Unmarshal(rpcResponse.Result, &result); err != nil {
		return nil, ErrEventsUnmarshalEvent.Wrapf("%s", err)
	}

	// Subscription acknowledgements carry an empty result.
	if result.Data.Type == "" {
		return nil, ErrEventsUnmarshalEvent.Wrap("frame carries no event data")
	}

	if strings.HasSuffix(result.Data.Type, "/Tx") {
		return parseTxEvents(&result)
	}

	return parseGenericEvent(&result), nil
}

// parseTxEvents extracts the per-transaction events of a Tx frame, stamping
// each with the block height and transaction hash it originated from.
func parseTxEvents(result *rpcResult) ([]client.ChainEvent, error) {
	var value txResultValue
	if err := json.Unmarshal(result.Data.Value, &value); err != nil {
		return nil, ErrEventsUnmarshalEvent.Wrapf("tx result: %s", err)
	}

	height, err := value.TxResult.Height.Int64()
	if err != nil {
		return nil, ErrEventsUnmarshalEvent.Wrapf("tx result height: %s", err)
	}

	txHash := ""
	if hashes, ok := result.Events["tx.hash"]; ok && len(hashes) > 0 {
		txHash = hashes[0]
	} else if len(value.TxResult.Tx) > 0 {
		txHash = tx.TxHash(value.TxResult.Tx)
	}

	chainEvents := make([]client.ChainEvent, 0, len(value.TxResult.Result.Events))
	for _, abciEvt := range value.TxResult.Result.Events {
		attrs := make([]client.EventAttribute, len(abciEvt.Attributes))
		for i, attr := range abciEvt.Attributes {
			attrs[i] = client.EventAttribute{Key: attr.Key, Value: attr.Value}
		}
		chainEvents = append(chainEvents, client.ChainEvent{
			Type:       abciEvt.Type,
			Attributes: attrs,
			Height:     height,
			TxHash:     txHash,
		})
	}

	return chainEvents, nil
}

// parseGenericEvent maps a non-Tx frame, e.g. NewBlock, onto a single event
// typed by the frame's data type, with the node's flattened event index as
// its attributes in sorted key order.
func parseGenericEvent(result *rpcResult) []client.ChainEvent {
	keys := make([]string, 0, len(result.Events))
	for key := range result.Events {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var attrs []client.EventAttribute
	for _, key := range keys {
		for _, value := range result.Events[key] {
			attrs = append(attrs, client.EventAttribute{Key: key, Value: value})
		}
	}

	return []client.ChainEvent{{
		Type:       result.Data.Type,
		Attributes: attrs,
	}}
}
