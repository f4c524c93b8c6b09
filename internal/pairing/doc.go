// Package pairing is the pure in-memory core of the companions engine: it
// validates locked groups, partitions an eligible pool into pairs or
// triplets, and maps groups to meeting rooms. It performs no I/O; callers
// own eligibility lookup, persistence and notification.
package pairing
