// Package frame implements the RESP wire format used by rKV. A frame is one
// self-delimited unit of the protocol: a type tag byte, a payload and a CRLF
// terminator.
//
// The package focuses on:
//   - A closed set of frame variants (Simple, Error, Integer, Bulk, Null, Array)
//   - Incremental decoding over partially received buffers
//   - Encoding into buffered writers without intermediate allocations
//
// Key Components:
//
//   - Frame: The interface implemented by every variant. The set of variants is
//     closed, other packages cannot add new ones.
//
//   - Check: Determines whether a complete frame starts at the beginning of a
//     buffer without modifying it. It returns ErrIncomplete as soon as it would
//     have to look past the end of the buffer, which lets callers read more data
//     from the network and try again.
//
//   - Parse: Decodes a frame that Check proved to be complete and reports how
//     many bytes it consumed.
//
//   - Encode: Writes the wire representation of a frame. Arrays are encoded
//     recursively as a count line followed by their elements.
//
// Wire Format:
//
//	+<text>\r\n            Simple
//	-<text>\r\n            Error
//	:<digits>\r\n          Integer (unsigned 64 bit)
//	$<len>\r\n<bytes>\r\n  Bulk ($-1\r\n is Null)
//	*<count>\r\n<frames>   Array (*-1\r\n is Null)
//
// Error Handling:
//
//	ErrIncomplete is not an error in the protocol sense, it only signals that
//	more bytes are needed. Everything else (bad tags, invalid UTF-8 in text
//	frames, malformed numbers, missing terminators, exceeded limits) is reported
//	as a *ProtocolError that matches ErrProtocol with errors.Is. Protocol errors
//	are never retried since the stream can not be resynchronized.
package frame
