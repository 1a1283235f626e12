// Package turn defines the data model for a single conversational turn:
// the State record threaded through every orchestration node, the closed
// classification enums that drive routing, and the course/roadmap/quiz
// value types produced along the way.
//
// A State is exclusively owned by the turn processing it. Nodes receive it
// by value, extend it, and return the extended copy; nothing mutates a State
// concurrently. Fan-out workers only ever see read-only snapshots of the
// fields they need.
package turn
