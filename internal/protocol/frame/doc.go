// Package frame owns the shared wire framing for both device-to-device
// links.
//
// Ownership boundary:
// - start-marker frame layout and the 250-byte payload budget
// - CRC-8/CCITT checksum
// - the resumable byte-stream decode state machine
//
// The host report channel does not use this framing; see internal/report.
package frame
