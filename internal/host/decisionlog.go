package host

import (
	"fmt"
	"io"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/sawpanic/admission-core/internal/gates"
	"github.com/sawpanic/admission-core/internal/model"
)

// DecisionRecord is one append-only decision-log entry: a compact
// projection of a PipelineResult alongside the portfolio delta the host
// persisted for it.
type DecisionRecord struct {
	DecisionID   string                    `msgpack:"decision_id"`
	Symbol       string                    `msgpack:"symbol"`
	NowMs        int64                     `msgpack:"now_ms"`
	EntryAllowed bool                      `msgpack:"entry_allowed"`
	BlockReason  string                    `msgpack:"block_reason"`
	Delta        model.PortfolioStateDelta `msgpack:"delta"`
}

// DecisionLog appends msgpack-encoded DecisionRecords to an underlying
// writer, the way aristath-sentinel's bridge uses msgpack for its wire
// protocol, applied here to an append-only audit trail alongside the
// canonical JSON contracts (spec §6's market_state/portfolio_state/etc.
// remain JSON; this is a host-side convenience encoding, not a spec
// contract).
type DecisionLog struct {
	mu  sync.Mutex
	enc *msgpack.Encoder
}

// NewDecisionLog wraps w in a msgpack encoder for sequential record
// appends.
func NewDecisionLog(w io.Writer) *DecisionLog {
	return &DecisionLog{enc: msgpack.NewEncoder(w)}
}

// Append encodes one bar's decision as a DecisionRecord.
func (l *DecisionLog) Append(symbol string, nowMs int64, result gates.PipelineResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := DecisionRecord{
		DecisionID:   result.DecisionID.String(),
		Symbol:       symbol,
		NowMs:        nowMs,
		EntryAllowed: result.EntryAllowed,
		BlockReason:  result.BlockReason,
		Delta:        model.DeltaFrom(result.NewPortfolio),
	}
	if err := l.enc.Encode(rec); err != nil {
		return fmt.Errorf("host: decision log append: %w", err)
	}
	return nil
}
