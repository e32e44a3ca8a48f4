// Package apiclient is the response layer of an HTTP API client. It turns a
// finished transport response into a typed value while keeping the status
// code and headers around for callers that need them.
//
// A transport hands over a ConnectorResponse, either adapted from net/http
// or recorded as a Capture:
//
//	cr := apiclient.FromHTTP(resp)
//
// ParseBody constructs a new value. A 204 No Content response is never read;
// slice targets get an empty slice and everything else gets nil:
//
//	repos, err := apiclient.ParseBody[[]Repo](nil, cr)
//
// UpdateBody decodes onto an existing value so that every holder of the
// pointer sees the refreshed fields:
//
//	_, err := apiclient.UpdateBody(parser, cr, repo)
//
// Parse and Update do the same and wrap the result in a Response:
//
//	res, err := apiclient.Parse[Repo](parser, cr)
//	etag, _ := res.Header("ETag")
//
// The decoder is chosen from the Content-Type header (JSON, XML, YAML, or any
// Decoder registered with WithDecoder) and falls back to JSON. Decoded types
// that implement ResponseInjector receive the originating response after
// decoding, for example to resolve relative links.
//
// Bodies that fail to decode are logged with their raw text at debug level
// and returned as *DecodeError. Read failures are returned as *ReadError.
package apiclient
