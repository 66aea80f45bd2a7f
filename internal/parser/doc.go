// Package parser reconstructs per-epoch navigation summaries from a raw GNSS
// receiver recording.
//
// A recording may freely interleave three framings:
// - NMEA 0183 sentences ("$" ... CR/LF)
// - u-blox UBX frames (0xB5 0x62)
// - Septentrio SBF blocks ("$@")
//
// A single forward cursor routes each position to the matching decoder and
// resynchronizes byte by byte on anything it cannot frame. Decoded fields are
// merged into one epoch draft owned by the Accumulator and committed whenever
// an epoch boundary (a new NMEA GGA time or a new SBF time-of-week) is seen.
package parser
