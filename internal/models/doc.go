// Package models defines the core domain models for Rachadinha.
//
// # Models
//
//   - Session: one bill-splitting instance (a "rachadinha") with its
//     participants, items and service-charge percentage
//   - Participant: a person sharing the bill
//   - Item: a priced line item shared by a subset of participants
//   - AppSettings: application-wide values such as the flat per-participant fee
//   - User: the account that owns sessions
//
// A Session loaded from storage is a snapshot. The calculator reads it and never
// mutates it; any change goes through storage and produces a new snapshot.
//
// # Design Principles
//
// 1. **Snapshots, not live objects**: relationships are ID strings, not pointers
// 2. **Item membership is a set**: an item's MemberIDs never repeat an ID and only
// reference participants of the same session (storage cascades deletions)
// 3. **Money is float64 until display**: rounding happens only when formatting
package models
