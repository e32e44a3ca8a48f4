package apiclient

// Test-only exports for internal functions.
var (
	LookupHeader = lookupHeader
	FirstHeader  = firstHeader
)

// DecoderFor returns the media type of the decoder a default registry picks
// for contentType.
func DecoderFor(contentType string) string {
	return newCodecRegistry(nil, false).decoderFor(contentType).ContentType()
}

// NoContent exposes the 204 result for T.
func NoContent[T any]() *T {
	return noContent[T]()
}
