package contract

import (
	"slices"

	"github.com/bitfsorg/fairburn-go/coin"
)

// AppendSettle settles funds and appends the result to resp, so a caller
// can route its own fee through the engine within a larger response.
// resp itself is never modified.
func (c *Contract) AppendSettle(resp *Response, funds coin.Coins, recipient string) (*Response, error) {
	out, err := c.Settle(funds, SettleMsg{Recipient: &recipient})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return out, nil
	}
	return &Response{
		Instructions: slices.Concat(resp.Instructions, out.Instructions),
		Events:       slices.Concat(resp.Events, out.Events),
	}, nil
}
