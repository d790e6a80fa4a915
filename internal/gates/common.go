// Package gates implements the ordered admission pipeline, Gate 0 through
// Gate 10. Each gate is an immutable record produced from the previous
// gate's result plus its own inputs. Run (pipeline.go) assembles the chain
// and keeps every gate's result as its own field, so it never hides which
// gate produced which field (spec §9 design note).
package gates

import "fmt"

// BaseResult is embedded in every GateNResult. EntryAllowed/BlockReason form
// the stable propagation contract described in spec §7.
type BaseResult struct {
	GateName     string
	EntryAllowed bool
	BlockReason  string
	Details      string
}

// propagateBlock builds the "gate<N>_blocked: <upstream_reason>" wrapper
// spec §7 requires when a gate receives an already-blocked predecessor.
func propagateBlock(gateName string, upstreamReason string) BaseResult {
	return BaseResult{
		GateName:     gateName,
		EntryAllowed: false,
		BlockReason:  fmt.Sprintf("%s_blocked: %s", gateName, upstreamReason),
		Details:      "upstream gate blocked",
	}
}

func pass(gateName, details string) BaseResult {
	return BaseResult{GateName: gateName, EntryAllowed: true, Details: details}
}

func block(gateName, reason, details string) BaseResult {
	return BaseResult{GateName: gateName, EntryAllowed: false, BlockReason: reason, Details: details}
}
