package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names so every extractor reports
// failures with the same keys.

// --- Extraction Attributes ---

const (
	// AttrComponent is the extractor reporting the event (e.g. "fence", "literal")
	AttrComponent = "extract.component"

	// AttrField is the section title or declared field name being extracted
	AttrField = "extract.field"

	// AttrReason is the failure category (not_found, parse_error, type_mismatch, invalid_input)
	AttrReason = "extract.reason"

	// AttrKind is the declared field kind or requested structure kind
	AttrKind = "extract.kind"

	// AttrLanguage is the code fence language tag requested
	AttrLanguage = "extract.language"

	// AttrTag is the sentinel tag name used by tagged content extraction
	AttrTag = "extract.tag"

	// AttrExcerpt is a truncated copy of the input that failed
	AttrExcerpt = "extract.excerpt"

	// AttrFallback names the fallback that was applied after a failure
	AttrFallback = "extract.fallback"
)

// --- Document Attributes ---

const (
	// AttrParseID is the identifier of one parse pass over a response
	AttrParseID = "document.parse_id"

	// AttrSectionsCount is the number of sections recovered from a response
	AttrSectionsCount = "document.sections_count"

	// AttrFailuresCount is the number of fields that failed extraction
	AttrFailuresCount = "document.failures_count"

	// AttrPayloadFormat is the payload convention detected ("sections" or "json")
	AttrPayloadFormat = "document.payload_format"
)

// --- Batch Attributes ---

const (
	// AttrBatchFiles is the number of responses in a batch
	AttrBatchFiles = "batch.files"

	// AttrBatchFailed is the number of responses in a batch that could not be parsed
	AttrBatchFailed = "batch.failed"

	// AttrBatchWorkers is the number of responses parsed at once
	AttrBatchWorkers = "batch.workers"
)

// --- CLI Attributes ---

const (
	// AttrCommand is the outparse subcommand that produced the record
	AttrCommand = "cli.command"
)

// --- General Attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrDuration is the operation duration
	AttrDuration = "duration"
)

// --- Metric Names ---

const (
	// MetricExtractFailures counts non-fatal extraction failures
	MetricExtractFailures = "outparse.extract.failures"

	// MetricDocumentsParsed counts completed parse passes
	MetricDocumentsParsed = "outparse.documents.parsed"

	// MetricParseDuration records parse pass duration in milliseconds
	MetricParseDuration = "outparse.parse.duration"
)
