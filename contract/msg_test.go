package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExecuteMsg(t *testing.T) {
	msg, err := ParseExecuteMsg([]byte(`{"fair_burn":{}}`))
	require.NoError(t, err)
	require.NotNil(t, msg.FairBurn)
	assert.Nil(t, msg.FairBurn.Recipient)

	msg, err = ParseExecuteMsg([]byte(`{"fair_burn":{"recipient":"abc"}}`))
	require.NoError(t, err)
	require.NotNil(t, msg.FairBurn.Recipient)
	assert.Equal(t, "abc", *msg.FairBurn.Recipient)
}

func TestParseExecuteMsg_Invalid(t *testing.T) {
	for _, in := range []string{
		``,
		`{}`,
		`{"burn":{}}`,
		`{"fair_burn":{"to":"x"}}`,
		`{"fair_burn":{}} {}`,
		`[1,2]`,
	} {
		_, err := ParseExecuteMsg([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidMsg, "input %q", in)
	}
}

func TestParseSudoMsg(t *testing.T) {
	msg, err := ParseSudoMsg([]byte(`{"update_config":{"fair_burn_bps":50}}`))
	require.NoError(t, err)
	require.NotNil(t, msg.UpdateConfig.FeeBps)
	assert.Equal(t, uint64(50), *msg.UpdateConfig.FeeBps)

	msg, err = ParseSudoMsg([]byte(`{"update_config":{}}`))
	require.NoError(t, err)
	assert.Nil(t, msg.UpdateConfig.FeeBps)

	_, err = ParseSudoMsg([]byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidMsg)
	_, err = ParseSudoMsg([]byte(`{"update_config":{"fair_burn_bps":-1}}`))
	assert.ErrorIs(t, err, ErrInvalidMsg)
}

func TestParseInstantiateMsg(t *testing.T) {
	msg, err := ParseInstantiateMsg([]byte(`{"fee_bps":5000}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), msg.FeeBps)

	_, err = ParseInstantiateMsg([]byte(`{"fee":1}`))
	assert.ErrorIs(t, err, ErrInvalidMsg)
}
