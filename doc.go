// Package taxlot computes tax-relevant outcomes from an immutable ledger of
// asset transactions: realized capital gains and losses, ordinary income
// events, wash-sale disallowances, and annual loss carryovers.
//
// The core functionalities include:
//   - Lot Tracking: every acquisition opens a lot carrying its date, quantity
//     and USD cost basis, tracked per (asset, source) pair.
//   - Disposal Matching: taxable outflows consume lots under a configured
//     policy (FIFO or HIFO), splitting a disposal into per-lot fragments with
//     pro-rata proceeds, fees, and exact decimal gain/loss.
//   - Wash-Sale Evaluation: losses with a replacement acquisition inside the
//     61-day window are disallowed and relocated onto the replacement lot's
//     basis, with configurable asset equivalence sets.
//   - Holding-Period Classification: fragments are labeled short or long term
//     by exact calendar-day difference.
//   - Loss Limiting and Carryover: year-close netting by category, a capped
//     deduction against ordinary income, and an explicit carryover record
//     consumed exactly once by the following year.
//   - Reconciliation: engine-derived balances are audited, read-only, against
//     externally observed balances.
//
// All engine state is explicit and owned by a single run over one ledger
// snapshot; repeated runs over an unchanged snapshot reproduce identical
// results, identifiers included. This package serves as the foundational
// logic for the `tlc` command-line tool.
package taxlot
