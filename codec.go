package apiclient

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decoder decodes response bodies from a wire format.
type Decoder interface {
	ContentType() string
	Decode(r io.Reader, v any) error
}

// errEmptyBody is the cause reported when a non-204 response has no body.
var errEmptyBody = fmt.Errorf("empty body: %w", io.ErrUnexpectedEOF)

// jsonCodec decodes JSON. Strict mode rejects unknown object keys.
type jsonCodec struct {
	strict bool
}

func (jsonCodec) ContentType() string { return "application/json" }

func (c jsonCodec) Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if c.strict {
		dec.DisallowUnknownFields()
	}
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// xmlCodec decodes XML.
type xmlCodec struct{}

func (xmlCodec) ContentType() string { return "application/xml" }

func (xmlCodec) Decode(r io.Reader, v any) error {
	err := xml.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// yamlCodec decodes YAML.
type yamlCodec struct{}

func (yamlCodec) ContentType() string { return "application/yaml" }

func (yamlCodec) Decode(r io.Reader, v any) error {
	err := yaml.NewDecoder(r).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// codecRegistry holds the decoders a Parser chooses from. User decoders come
// first so they can replace a built-in for the same media type.
type codecRegistry struct {
	decoders []Decoder
	fallback Decoder
}

func newCodecRegistry(userDecoders []Decoder, strictJSON bool) *codecRegistry {
	js := jsonCodec{strict: strictJSON}
	cr := &codecRegistry{
		decoders: make([]Decoder, 0, 3+len(userDecoders)),
	}
	cr.decoders = append(cr.decoders, userDecoders...)
	cr.decoders = append(cr.decoders, js, xmlCodec{}, yamlCodec{})
	cr.fallback = cr.byMediaType("application/json")
	return cr
}

// decoderFor returns the decoder for a Content-Type value. Exact media types
// win over structured syntax suffixes ("application/vnd.api+json"). Empty,
// malformed and unknown types fall back to JSON.
func (cr *codecRegistry) decoderFor(contentType string) Decoder {
	if contentType == "" {
		return cr.fallback
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return cr.fallback
	}

	if dec := cr.byMediaType(mediaType); dec != nil {
		return dec
	}

	if i := strings.LastIndexByte(mediaType, '+'); i >= 0 {
		switch mediaType[i+1:] {
		case "json":
			return cr.byMediaType("application/json")
		case "xml":
			return cr.byMediaType("application/xml")
		case "yaml":
			return cr.byMediaType("application/yaml")
		}
	}

	switch mediaType {
	case "text/xml":
		return cr.byMediaType("application/xml")
	case "application/x-yaml", "text/yaml":
		return cr.byMediaType("application/yaml")
	}

	return cr.fallback
}

func (cr *codecRegistry) byMediaType(mediaType string) Decoder {
	for _, dec := range cr.decoders {
		if dec.ContentType() == mediaType {
			return dec
		}
	}
	return nil
}

// contentTypes returns the media types of all registered decoders.
func (cr *codecRegistry) contentTypes() []string {
	cts := make([]string, len(cr.decoders))
	for i, dec := range cr.decoders {
		cts[i] = dec.ContentType()
	}
	return cts
}
