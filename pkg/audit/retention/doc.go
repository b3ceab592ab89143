// Package retention prunes the execution record history on a schedule.
// Pruning is the only deletion path for audit records: age-based via a
// retention window and count-based via a max record cap, both optional.
package retention
