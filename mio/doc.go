// Package mio (short for memory input/output) implements the stream toolkit
// of safeio. The subpackages each implement one decorator:
//
// - pool     - Registry of reusable byte buffers.
// - bounded  - Readers/Writers with a byte ceiling.
// - counter  - Byte counting Readers/Writers with shareable counters.
// - blockio  - Random access reader on top of lazily fetched blocks.
// - compress - Block wise compression with exchangeable algorithms.
// - throttle - Rate limited Readers/Writers.
//
// This package itself contains the pooled copy and fill helpers that
// everything else uses for bulk transfers, plus a few small decorators
// (fan out, muting, counting sink).
package mio
