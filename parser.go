package apiclient

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Parser decodes connector responses. A Parser is safe for concurrent use.
// A nil *Parser behaves like NewParser().
type Parser struct {
	codecs *codecRegistry
	diag   *diagnostics
}

// ParserOption configures a Parser.
type ParserOption func(*parserConfig)

type parserConfig struct {
	logger     *slog.Logger
	decoders   []Decoder
	strictJSON bool
	limit      rate.Limit
	burst      int
}

// WithLogger sets the logger for decode diagnostics. The default is
// slog.Default() at the time of logging.
func WithLogger(logger *slog.Logger) ParserOption {
	return func(c *parserConfig) {
		c.logger = logger
	}
}

// WithDecoder registers an additional body decoder. It takes precedence over
// the built-in decoder for the same media type.
func WithDecoder(dec Decoder) ParserOption {
	return func(c *parserConfig) {
		c.decoders = append(c.decoders, dec)
	}
}

// WithStrictJSON makes the JSON decoder reject object keys that have no
// matching field.
func WithStrictJSON() ParserOption {
	return func(c *parserConfig) {
		c.strictJSON = true
	}
}

// WithDiagnosticLimit caps decode failure records at limit per second with
// the given burst. Dropped records are counted on the next one logged.
func WithDiagnosticLimit(limit rate.Limit, burst int) ParserOption {
	return func(c *parserConfig) {
		c.limit = limit
		c.burst = burst
	}
}

// NewParser builds a Parser. JSON, XML and YAML decoders are always present.
func NewParser(opts ...ParserOption) *Parser {
	var cfg parserConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	diag := &diagnostics{logger: cfg.logger}
	if cfg.limit > 0 {
		diag.limiter = rate.NewLimiter(cfg.limit, max(cfg.burst, 1))
	}

	return &Parser{
		codecs: newCodecRegistry(cfg.decoders, cfg.strictJSON),
		diag:   diag,
	}
}

var defaultParser = NewParser()

func (p *Parser) orDefault() *Parser {
	if p == nil {
		return defaultParser
	}
	return p
}

// ContentTypes lists the media types the parser can decode, in lookup order.
func (p *Parser) ContentTypes() []string {
	return p.orDefault().codecs.contentTypes()
}

// decode runs the structural decoder for cr's content type over data into v,
// then hands cr to any ResponseInjector inside v.
func (p *Parser) decode(cr ConnectorResponse, data string, v any) error {
	dec := p.codecs.decoderFor(firstHeader(cr.AllHeaders(), "Content-Type"))

	if err := dec.Decode(strings.NewReader(data), v); err != nil {
		derr := &DecodeError{
			ID:          uuid.NewString(),
			ContentType: dec.ContentType(),
			Body:        data,
			Cause:       err,
		}
		p.diag.decodeFailure(cr.StatusCode(), derr)
		return derr
	}

	Injectables{Response: cr}.Inject(v)
	return nil
}

// ParseBody decodes the body of cr into a new T.
//
// A 204 No Content response is never read: a slice T yields a pointer to an
// empty, non-nil slice and any other T yields nil. Decode failures are logged
// with the raw body at debug level and returned as *DecodeError.
func ParseBody[T any](p *Parser, cr ConnectorResponse) (*T, error) {
	if cr == nil {
		return nil, ErrNilResponse
	}
	p = p.orDefault()

	if cr.StatusCode() == http.StatusNoContent {
		return noContent[T](), nil
	}

	data, err := BodyString(cr)
	if err != nil {
		return nil, err
	}

	v := new(T)
	if err := p.decode(cr, data, v); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateBody decodes the body of cr onto instance and returns instance.
// Fields absent from the body keep their values. There is no 204 handling;
// callers use it when a body is expected.
func UpdateBody[T any](p *Parser, cr ConnectorResponse, instance *T) (*T, error) {
	if cr == nil {
		return nil, ErrNilResponse
	}
	if instance == nil {
		return nil, ErrNilInstance
	}
	p = p.orDefault()

	data, err := BodyString(cr)
	if err != nil {
		return nil, err
	}

	if err := p.decode(cr, data, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// Parse is ParseBody plus the response metadata.
func Parse[T any](p *Parser, cr ConnectorResponse) (*Response[T], error) {
	body, err := ParseBody[T](p, cr)
	if err != nil {
		return nil, err
	}
	return NewResponse(cr, body), nil
}

// Update is UpdateBody plus the response metadata.
func Update[T any](p *Parser, cr ConnectorResponse, instance *T) (*Response[T], error) {
	body, err := UpdateBody(p, cr, instance)
	if err != nil {
		return nil, err
	}
	return NewResponse(cr, body), nil
}

func noContent[T any]() *T {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Slice {
		return nil
	}
	v := reflect.New(t)
	v.Elem().Set(reflect.MakeSlice(t, 0, 0))
	return v.Interface().(*T) //nolint:forcetypeassert // reflect.New(T) is *T
}
