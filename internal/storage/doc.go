// Package storage persists vehicles and their maintenance schedules.
//
// The engine itself never touches storage; only the application shell and
// the sweep service do. Two drivers:
//   - "file": dependency-free JSON snapshot per vehicle + jsonl service log
//   - "sqlite": SQLite database file (build with -tags sqlite)
package storage
