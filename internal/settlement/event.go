package settlement

import (
	"encoding/base64"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/hathordice/hathor-dice/pkg/types"
)

// decodeSettlementEvent decodes the first settlement event attached to a
// confirmed history entry. The payload is base64-encoded JSON emitted by the
// contract.
func decodeSettlementEvent(entry *types.HistoryEntry) (*types.SettlementEvent, error) {
	if len(entry.Events) == 0 {
		return nil, types.NewWalletError(types.ErrDecodeFailure, "",
			"confirmed entry carries no settlement event")
	}

	payload, err := base64.StdEncoding.DecodeString(entry.Events[0].Data)
	if err != nil {
		return nil, types.NewWalletError(types.ErrDecodeFailure, "",
			fmt.Sprintf("settlement event is not base64: %v", err))
	}

	var event types.SettlementEvent

	err = json.Unmarshal(payload, &event)
	if err != nil {
		return nil, types.NewWalletError(types.ErrDecodeFailure, "",
			fmt.Sprintf("settlement event payload unparsable: %v", err))
	}

	return &event, nil
}
