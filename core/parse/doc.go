// Package parse converts raw LLM text into Go values. JSON payloads are
// recovered in layers (plain decoding, automatic repair with jsonrepair,
// removal of schema-style {"type", "value"} envelopes) before giving up with
// an error.
//
// The main entry point is the generic [ParseStringAs]; [DecodeValue] applies
// the same rules to values that were already decoded, such as the fields of
// an extracted document.
package parse
