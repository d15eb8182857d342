// Package indices keeps the monthly series of Brazilian economic indices (IGPM, IPCA, CDI,
// INCC, fixed interest rates, savings yields, regional construction costs) and derives their
// compounded values.
//
// Every index is a ledger of monthly records, strictly ordered and contiguous, that starts with
// a manually seeded anchor record. The core functionalities are:
//   - Roll-forward: an Engine extends a series by exactly one month, or recomputes a month
//     already in it, from the previous record and a raw value fetched from a Source.
//   - Calculation rules: each index variant is a Rule, a pure function from the previous
//     record and the raw values to the new record's fields. Rules are grouped in a Catalog.
//   - Persistence: ledgers are read and written whole, as JSON files that keep the order of
//     fields, or through any other Ledger implementation.
//
// Numbers are kept at full precision while chaining months, and rounded only when a record is
// serialized.
//
// This package serves as the foundation of the `idx` command-line tool.
package indices
