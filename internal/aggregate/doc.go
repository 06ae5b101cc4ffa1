// Package aggregate builds every keyed accumulator of the analytics
// core in a single pass over normalized transaction records.
//
// One Engine consumes records additively: per-dimension revenue/volume
// accumulators (global plus store-only and web-only variants), the
// per-card customer ledger grouped into tickets, per-ticket family
// sets for cross-sell counting, loyalty splits and web channel stats.
// Updates commute across distinct keys, so a batch may be partitioned
// across engines and merged; first-seen metadata then follows
// partition order.
//
// The finalized Result is read-only: cohort, RFM, ABC and trend
// analysis all consume it without mutating it.
package aggregate
