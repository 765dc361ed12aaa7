package tx

import (
	"fmt"

	"github.com/bitfsorg/fairburn-go/coin"
	"github.com/bitfsorg/fairburn-go/settle"
	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

// Output kinds recorded in PayoutOutput.Kind besides instruction kinds.
const KindChange = "change"

// PayoutParams configures how a settlement is rendered as a transaction.
type PayoutParams struct {
	// NativeDenom is the only denomination the chain can pay out (satoshis).
	NativeDenom string
	// PoolAddress receives fund-pool instructions.
	PoolAddress string
	// FeeInputs fund the transaction. With none, an unfunded transaction
	// with outputs only is returned for the host to fund and sign.
	FeeInputs []*UTXO
	// ChangeAddress receives leftover funds; defaults to PoolAddress.
	ChangeAddress string
	// FeeRate in sat/KB; zero means DefaultFeeRate.
	FeeRate uint64
}

// BuildPayout renders a settlement result as a transaction.
//
// Outputs follow instruction order:
//
//	burn      -> OP_FALSE OP_RETURN "fairburn" <digest> carrying the burned satoshis
//	fund-pool -> P2PKH to PoolAddress
//	transfer  -> P2PKH to the instruction's address
//	change    -> P2PKH to ChangeAddress (funded transactions only)
func BuildPayout(result *settle.Result, params PayoutParams) (*Payout, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: result", ErrNilParam)
	}
	if len(result.Instructions) == 0 {
		return nil, fmt.Errorf("%w: no instructions", ErrInvalidParams)
	}
	if params.NativeDenom == "" {
		return nil, fmt.Errorf("%w: native denom", ErrInvalidParams)
	}
	if err := ValidateAddress(params.PoolAddress); err != nil {
		return nil, fmt.Errorf("pool address: %w", err)
	}
	for i, fi := range params.FeeInputs {
		if fi == nil {
			return nil, fmt.Errorf("%w: feeInput[%d]", ErrNilParam, i)
		}
	}

	digest := result.Digest()
	burnScript, err := BuildBurnScript(digest[:])
	if err != nil {
		return nil, err
	}

	sdkTx := transaction.NewTransaction()
	payout := &Payout{}
	var totalOut uint64
	numBurns, numP2PKH := 0, 0

	for i, in := range result.Instructions {
		sats, err := nativeTotal(in.Coins, params.NativeDenom)
		if err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, in.Kind, err)
		}

		out := PayoutOutput{Vout: uint32(len(sdkTx.Outputs)), Kind: in.Kind.String(), Satoshis: sats}
		switch in.Kind {
		case settle.InstructionBurn:
			sdkTx.Outputs = append(sdkTx.Outputs, &transaction.TransactionOutput{
				Satoshis:      sats,
				LockingScript: burnScript,
			})
			numBurns++
		case settle.InstructionFundPool, settle.InstructionTransfer:
			out.Address = params.PoolAddress
			if in.Kind == settle.InstructionTransfer {
				out.Address = in.To
			}
			o, err := BuildP2PKHOutput(out.Address, sats)
			if err != nil {
				return nil, fmt.Errorf("instruction %d (%s): %w", i, in.Kind, err)
			}
			sdkTx.Outputs = append(sdkTx.Outputs, o)
			numP2PKH++
		default:
			return nil, fmt.Errorf("%w: instruction %d has unknown kind %d", ErrInvalidParams, i, in.Kind)
		}

		if totalOut+sats < totalOut {
			return nil, fmt.Errorf("%w: output total", ErrAmountTooLarge)
		}
		totalOut += sats
		payout.Outputs = append(payout.Outputs, out)
	}

	if len(params.FeeInputs) > 0 {
		if err := fund(sdkTx, payout, params, totalOut, numP2PKH, numBurns); err != nil {
			return nil, err
		}
	}

	payout.RawTx = sdkTx.Bytes()
	payout.Hex = sdkTx.Hex()
	payout.TxID = sdkTx.TxID().String()
	return payout, nil
}

// fund adds the fee inputs and, when worthwhile, a change output.
func fund(sdkTx *transaction.Transaction, payout *Payout, params PayoutParams, totalOut uint64, numP2PKH, numBurns int) error {
	var totalIn uint64
	for _, fi := range params.FeeInputs {
		if len(fi.TxID) != TxIDLen {
			return fmt.Errorf("%w: fee UTXO TxID must be %d bytes", ErrInvalidParams, TxIDLen)
		}
		hash, err := chainhash.NewHash(fi.TxID)
		if err != nil {
			return fmt.Errorf("%w: invalid fee UTXO TxID: %w", ErrScriptBuild, err)
		}
		sdkTx.AddInput(&transaction.TransactionInput{
			SourceTXID:       hash,
			SourceTxOutIndex: fi.Vout,
			SequenceNumber:   transaction.DefaultSequenceNumber,
		})
		totalIn += fi.Amount
	}
	payout.Inputs = params.FeeInputs

	// assume a change output when estimating
	size := EstimatePayoutSize(len(params.FeeInputs), numP2PKH+1, numBurns)
	fee := EstimateFee(size, params.FeeRate)
	if totalIn < totalOut+fee {
		return fmt.Errorf("%w: need %d sat, have %d sat", ErrInsufficientFunds, totalOut+fee, totalIn)
	}

	payout.Fee = fee
	change := totalIn - totalOut - fee
	if change < DustLimit {
		payout.Fee += change
		return nil
	}

	changeAddr := params.ChangeAddress
	if changeAddr == "" {
		changeAddr = params.PoolAddress
	}
	o, err := BuildP2PKHOutput(changeAddr, change)
	if err != nil {
		return fmt.Errorf("change address: %w", err)
	}
	payout.Outputs = append(payout.Outputs, PayoutOutput{
		Vout:     uint32(len(sdkTx.Outputs)),
		Kind:     KindChange,
		Address:  changeAddr,
		Satoshis: change,
	})
	sdkTx.Outputs = append(sdkTx.Outputs, o)
	return nil
}

// nativeTotal sums coins that must all be in the native denomination.
func nativeTotal(coins coin.Coins, native string) (uint64, error) {
	var total uint64
	for _, c := range coins {
		if c.Denom != native {
			return 0, fmt.Errorf("%w: %s", ErrUnsupportedDenom, c.Denom)
		}
		if c.Amount == nil {
			continue
		}
		if !c.Amount.IsUint64() {
			return 0, fmt.Errorf("%w: %s", ErrAmountTooLarge, c)
		}
		v := c.Amount.Uint64()
		if total+v < total {
			return 0, fmt.Errorf("%w: %s", ErrAmountTooLarge, c)
		}
		total += v
	}
	return total, nil
}
