// Package wire implements the hashd framing primitives.
//
// Every integer on the wire is an unsigned 32-bit little-endian value. A
// frame is a 4-byte length followed by exactly that many payload bytes:
//
//	[4 bytes: length N][N bytes: payload]
//
// Payload reads are issued in bounded chunks (see [DefaultChunkSize]) so a
// single read call never requests more than a fixed amount of memory, and a
// peer that closes mid-payload is reported as [ErrConnectionClosed] instead
// of being retried.
//
// # Reading
//
//   - [ReadUint32] reads a bare length or count
//   - [ReadFrame] reads a small length-prefixed frame into memory
//   - [CopyPayload] streams a payload of known size into an io.Writer
//
// # Writing
//
//   - [WriteUint32] and [WriteFrame] are the encoder side used by clients
//   - [WritePayload] streams a payload of known size from an io.Reader
package wire
