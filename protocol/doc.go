// Package protocol owns the rocket sync tracker wire contract.
//
// Ownership boundary:
// - opcodes and fixed frame lengths
// - the incremental, non-blocking frame decoder
// - command encoding
// - greeting handshake (client and server side)
//
// Frames are one opcode byte followed by a body whose length is implied by the
// opcode. Integers are big-endian, floats are IEEE-754 bit patterns.
package protocol
