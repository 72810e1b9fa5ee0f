// Package extract recovers structured data from free-form LLM responses.
//
// The building blocks are small and composable:
//
//   - [SplitSections] splits a response on "##" headings.
//   - [FindFence], [Parser.ExtractCode] and [Parser.ExtractSectionCode] pull
//     code out of triple-backtick fences. When there is no fence,
//     ExtractCode returns "" and ExtractSectionCode returns the text itself.
//   - [ExtractStructure] finds a list or mapping literal in prose and parses
//     it with [ParseLiteral], a literal-only evaluator.
//   - [Parser.Coerce] turns a section body into the value a [FieldSpec]
//     declares.
//   - [Unwrap] returns the text between [TAG] and [/TAG] markers.
//
// [Parser.ParseDocument] chains them for a whole response and returns a
// [Document]. Failures that only affect one field are logged through the
// parser's observability provider and recorded in the Document; only
// contract violations are returned as errors. A Parser holds no mutable
// state and can be shared between goroutines.
package extract
