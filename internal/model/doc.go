// Package model defines the shared data types used across couscous.
//
// The types here are intentionally plain data structures with no behavior
// beyond small helpers. Business logic lives in the packages that operate
// on them (database, crawler, report).
package model
