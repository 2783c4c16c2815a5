// Package spawn holds the software-task ready queues: one fixed-capacity
// bucket per software priority level, each ordering its dispatch events
// strictly first in, first out.
//
// A bucket owns a fixed slot table and a ring of slot indices sized to the
// same capacity. A slot is held from spawn until the invocation completes or
// is cancelled; the ring never holds a slot twice, so it can never overflow.
package spawn
