// Package pgstore is the PostgreSQL region repository.
//
// Inserts run under a transaction-scoped advisory lock so the overlap
// probe sees every committed box. A GiST exclusion constraint on the
// three inclusive coordinate ranges backs the probe for writers that
// bypass this package; its violations surface as region.ErrOverlap.
package pgstore
