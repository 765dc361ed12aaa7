package contract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bitfsorg/fairburn-go/settle"
)

// InstantiateMsg creates the configuration record.
type InstantiateMsg struct {
	FeeBps uint64 `json:"fee_bps"`
}

// ExecuteMsg is the public execute envelope. Exactly one field is set.
type ExecuteMsg struct {
	FairBurn *SettleMsg `json:"fair_burn,omitempty"`
}

// SettleMsg settles the attached funds. A nil or empty Recipient routes
// remainders to the protocol pool.
type SettleMsg struct {
	Recipient *string `json:"recipient,omitempty"`
}

// SudoMsg is the privileged envelope. Exactly one field is set.
type SudoMsg struct {
	UpdateConfig *UpdateFeeRateMsg `json:"update_config,omitempty"`
}

// UpdateFeeRateMsg replaces the fee rate when FeeBps is non-nil.
type UpdateFeeRateMsg struct {
	FeeBps *uint64 `json:"fair_burn_bps,omitempty"`
}

// ConfigResponse answers a config query.
type ConfigResponse struct {
	FeePercent string `json:"fee_percent"`
	FeeBps     uint64 `json:"fee_bps"`
}

// Response carries the instructions for the host to execute and the
// events disclosing them.
type Response struct {
	Instructions []settle.Instruction `json:"instructions"`
	Events       []settle.Event       `json:"events"`
}

// ParseInstantiateMsg decodes an InstantiateMsg.
func ParseInstantiateMsg(data []byte) (*InstantiateMsg, error) {
	var msg InstantiateMsg
	if err := decodeStrict(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ParseExecuteMsg decodes an ExecuteMsg such as {"fair_burn":{"recipient":"..."}}.
func ParseExecuteMsg(data []byte) (*ExecuteMsg, error) {
	var msg ExecuteMsg
	if err := decodeStrict(data, &msg); err != nil {
		return nil, err
	}
	if msg.FairBurn == nil {
		return nil, fmt.Errorf("%w: no execute variant", ErrInvalidMsg)
	}
	return &msg, nil
}

// ParseSudoMsg decodes a SudoMsg such as {"update_config":{"fair_burn_bps":50}}.
func ParseSudoMsg(data []byte) (*SudoMsg, error) {
	var msg SudoMsg
	if err := decodeStrict(data, &msg); err != nil {
		return nil, err
	}
	if msg.UpdateConfig == nil {
		return nil, fmt.Errorf("%w: no sudo variant", ErrInvalidMsg)
	}
	return &msg, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMsg, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrInvalidMsg)
	}
	return nil
}
