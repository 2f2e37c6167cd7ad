// Package repository implements the request-handling engine: verb
// dispatch, argument validation, cursor resolution, backend querying,
// cursor advancement, and total mapping of failures onto the protocol
// error taxonomy.
//
// The engine is stateless across requests: all pagination state lives in
// the client-held resumption token, so any number of requests may run
// concurrently with no cross-request locking.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/gustavofonseca/oai-pmh/internal/datastore"
	"github.com/gustavofonseca/oai-pmh/internal/formats"
	"github.com/gustavofonseca/oai-pmh/internal/oai"
	"github.com/gustavofonseca/oai-pmh/internal/serializer"
	"github.com/gustavofonseca/oai-pmh/internal/sets"
	"github.com/gustavofonseca/oai-pmh/internal/token"
)

// DefaultPageLength is the number of items per listing page when the
// configuration does not say otherwise.
const DefaultPageLength = 1000

// dayGranularity validates day-precision datestamps (YYYY-MM-DD).
var dayGranularity = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type handlerFunc func(context.Context, oai.Request) ([]byte, error)

// Repository orchestrates one protocol request end to end. All
// dependencies are injected at construction and read-only afterwards.
type Repository struct {
	meta    oai.RepositoryMeta
	ds      datastore.DataStore
	sets    sets.Registry
	formats *formats.Registry

	pageLen        int
	validDatestamp func(string) bool
	now            func() time.Time

	ser      *serializer.Serializer
	logger   *slog.Logger
	handlers map[string]handlerFunc
}

// Option configures a Repository.
type Option func(*Repository)

// WithPageLength sets the listing page length. Resumption tokens minted
// under a different length are rejected as malformed.
func WithPageLength(n int) Option {
	return func(r *Repository) { r.pageLen = n }
}

// WithClock overrides the wall clock used for response dates and the
// default upper date bound. Tests use a fixed clock for determinism.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger for per-request entries.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

// New creates a Repository over the given collaborators.
func New(meta oai.RepositoryMeta, ds datastore.DataStore, setsReg sets.Registry,
	formatsReg *formats.Registry, opts ...Option) *Repository {

	r := &Repository{
		meta:           meta,
		ds:             ds,
		sets:           setsReg,
		formats:        formatsReg,
		pageLen:        DefaultPageLength,
		validDatestamp: dayGranularity.MatchString,
		now:            time.Now,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ser = serializer.New(serializer.Clock(r.now))

	r.handlers = map[string]handlerFunc{
		oai.VerbIdentify:            r.identify,
		oai.VerbGetRecord:           r.getRecord,
		oai.VerbListRecords:         r.listRecords,
		oai.VerbListIdentifiers:     r.listIdentifiers,
		oai.VerbListMetadataFormats: r.listMetadataFormats,
		oai.VerbListSets:            r.listSets,
	}
	return r
}

// HandleRequest processes one query-string-encoded request and always
// returns a rendered response document. Recoverable failures become
// protocol error responses; an unclassified failure (or a panicking
// handler) aborts only this request and renders a generic internal
// error.
func (r *Repository) HandleRequest(ctx context.Context, rawQuery string) (out []byte) {
	req := oai.Request{}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("request handler panicked", "verb", req.Verb, "panic", rec)
			out = r.respondError(req, oai.CodeInternal, "")
		}
	}()

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		r.logRequest(req, oai.CodeBadArgument)
		return r.respondError(req, oai.CodeBadArgument, "")
	}
	req = oai.RequestFromQuery(values)

	body, err := r.dispatch(ctx, values, req)
	if err != nil {
		code, classified := oai.CodeOf(err)
		if !classified {
			r.logger.Error("request failed", "verb", req.Verb, "error", err)
		}
		r.logRequest(req, code)
		return r.respondError(req, code, protocolMessage(err))
	}
	r.logRequest(req, "")
	return body
}

// dispatch runs the per-request pipeline: global syntax check, verb
// lookup, per-verb argument validation, then the verb handler.
func (r *Repository) dispatch(ctx context.Context, values url.Values, req oai.Request) ([]byte, error) {
	if err := checkQuerySyntax(values); err != nil {
		return nil, err
	}

	handler, known := r.handlers[req.Verb]
	if !known {
		return nil, oai.NewError(oai.CodeBadVerb, "")
	}

	if !argCheckers[req.Verb](req.ArgNames()) {
		return nil, oai.NewError(oai.CodeBadArgument,
			"illegal argument combination for verb %s", req.Verb)
	}

	return handler(ctx, req)
}

// checkQuerySyntax rejects unknown and repeated argument names before any
// verb-specific processing.
func checkQuerySyntax(values url.Values) error {
	for name, given := range values {
		if !slices.Contains(oai.LegalArgNames, name) {
			return oai.NewError(oai.CodeBadArgument, "unknown argument %q", name)
		}
		if len(given) > 1 {
			return oai.NewError(oai.CodeBadArgument, "repeated argument %q", name)
		}
	}
	return nil
}

func (r *Repository) identify(_ context.Context, req oai.Request) ([]byte, error) {
	return r.ser.Identify(serializer.Document{Repo: r.meta, Request: req})
}

func (r *Repository) getRecord(ctx context.Context, req oai.Request) ([]byte, error) {
	entry, ok := r.formats.Get(req.MetadataPrefix)
	if !ok {
		return nil, oai.NewError(oai.CodeCannotDisseminateFormat,
			"format %q is not registered", req.MetadataPrefix)
	}

	res, err := r.ds.Get(ctx, req.Identifier)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, oai.NewError(oai.CodeIDDoesNotExist, "")
	}
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", req.Identifier, err)
	}

	return r.ser.GetRecord(serializer.Document{
		Repo:      r.meta,
		Request:   req,
		Resources: []oai.Resource{entry.Augment(res)},
	}, entry.Format)
}

func (r *Repository) listRecords(ctx context.Context, req oai.Request) ([]byte, error) {
	tok, entry, err := r.resolveRecordScan(req)
	if err != nil {
		return nil, err
	}

	page, next, err := r.scanResources(ctx, tok)
	if err != nil {
		return nil, err
	}

	for i, res := range page {
		page[i] = entry.Augment(res)
	}

	return r.ser.ListRecords(serializer.Document{
		Repo:            r.meta,
		Request:         req,
		Resources:       page,
		ResumptionToken: next,
	}, entry.Format)
}

func (r *Repository) listIdentifiers(ctx context.Context, req oai.Request) ([]byte, error) {
	tok, _, err := r.resolveRecordScan(req)
	if err != nil {
		return nil, err
	}

	page, next, err := r.scanResources(ctx, tok)
	if err != nil {
		return nil, err
	}

	return r.ser.ListIdentifiers(serializer.Document{
		Repo:            r.meta,
		Request:         req,
		Resources:       page,
		ResumptionToken: next,
	})
}

func (r *Repository) listMetadataFormats(ctx context.Context, req oai.Request) ([]byte, error) {
	if req.Identifier != "" {
		if _, err := r.ds.Get(ctx, req.Identifier); err != nil {
			if errors.Is(err, datastore.ErrNotFound) {
				return nil, oai.NewError(oai.CodeIDDoesNotExist, "")
			}
			return nil, fmt.Errorf("get record %q: %w", req.Identifier, err)
		}
	}
	return r.ser.ListMetadataFormats(serializer.Document{
		Repo:    r.meta,
		Request: req,
		Formats: r.formats.All(),
	})
}

func (r *Repository) listSets(ctx context.Context, req oai.Request) ([]byte, error) {
	tok, err := r.resolveToken(req)
	if err != nil {
		return nil, err
	}

	page, err := r.sets.List(ctx, tok.QueryOffset(), r.pageLen)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	if len(page) == 0 && tok.IsFirstPage() {
		return nil, oai.NewError(oai.CodeNoRecordsMatch, "")
	}

	// Set listings are not date scoped, so year rollover never applies:
	// a short page is terminal.
	var next string
	if nextTok, more := tok.NextPage(len(page)); more {
		next = nextTok.Encode()
	}

	return r.ser.ListSets(serializer.Document{
		Repo:            r.meta,
		Request:         req,
		Sets:            page,
		ResumptionToken: next,
	})
}

// resolveRecordScan performs the shared front half of ListRecords and
// ListIdentifiers: cursor resolution plus metadata-format lookup.
func (r *Repository) resolveRecordScan(req oai.Request) (token.Token, formats.Entry, error) {
	tok, err := r.resolveToken(req)
	if err != nil {
		return token.Token{}, formats.Entry{}, err
	}

	entry, ok := r.formats.Get(tok.MetadataPrefix)
	if !ok {
		return token.Token{}, formats.Entry{}, oai.NewError(oai.CodeCannotDisseminateFormat,
			"format %q is not registered", tok.MetadataPrefix)
	}
	return tok, entry, nil
}

// resolveToken validates date bounds on fresh requests, then derives the
// cursor: decoded and checked when the client supplied a token, minted
// first-page otherwise.
func (r *Repository) resolveToken(req oai.Request) (token.Token, error) {
	if req.ResumptionToken == "" {
		if err := r.validateDateBounds(req); err != nil {
			return token.Token{}, err
		}
	}

	tok, err := token.FromRequest(req, r.pageLen, r.meta.EarliestDatestamp, r.today())
	if err != nil {
		return token.Token{}, oai.NewError(oai.CodeBadResumptionToken, "%v", err)
	}
	return tok, nil
}

// scanResources runs one cursor-bounded page query and computes the
// successor cursor. An empty first page is a distinct protocol error,
// never an empty success payload.
func (r *Repository) scanResources(ctx context.Context, tok token.Token) ([]oai.Resource, string, error) {
	var view datastore.View
	if tok.Set != "" {
		resolved, err := r.sets.GetView(ctx, tok.Set)
		if errors.Is(err, sets.ErrNoSuchSet) {
			return nil, "", oai.NewError(oai.CodeBadArgument, "set %q does not exist", tok.Set)
		}
		if err != nil {
			return nil, "", fmt.Errorf("resolve set %q: %w", tok.Set, err)
		}
		view = resolved
	}

	page, err := r.ds.List(ctx, datastore.ListQuery{
		Offset: tok.QueryOffset(),
		Count:  r.pageLen,
		From:   tok.QueryFrom(),
		Until:  tok.QueryUntil(),
	}, view)
	if err != nil {
		return nil, "", fmt.Errorf("list resources: %w", err)
	}

	if len(page) == 0 && tok.IsFirstPage() {
		return nil, "", oai.NewError(oai.CodeNoRecordsMatch, "")
	}

	var next string
	if nextTok, more := tok.Next(len(page)); more {
		next = nextTok.Encode()
	}
	return page, next, nil
}

// validateDateBounds enforces granularity and ordering on request-level
// date arguments. Violations are malformed requests, not token errors.
func (r *Repository) validateDateBounds(req oai.Request) error {
	if req.From != "" && !r.validDatestamp(req.From) {
		return oai.NewError(oai.CodeBadArgument, "malformed datestamp %q", req.From)
	}
	if req.Until != "" && !r.validDatestamp(req.Until) {
		return oai.NewError(oai.CodeBadArgument, "malformed datestamp %q", req.Until)
	}
	if req.From != "" && req.Until != "" && req.From > req.Until {
		return oai.NewError(oai.CodeBadArgument, "from %q is past until %q", req.From, req.Until)
	}
	return nil
}

// respondError renders an error response. Serialization of an error
// document has no failure mode that the caller could recover from, so a
// broken serializer falls back to a minimal hand-built document.
func (r *Repository) respondError(req oai.Request, code oai.ErrorCode, message string) []byte {
	out, err := r.ser.Error(serializer.Document{Repo: r.meta, Request: req}, code, message)
	if err != nil {
		r.logger.Error("error response serialization failed", "code", code, "error", err)
		return []byte(fmt.Sprintf(
			`<?xml version="1.0" encoding="UTF-8"?><OAI-PMH xmlns=%q><error code=%q/></OAI-PMH>`,
			"http://www.openarchives.org/OAI/2.0/", code))
	}
	return out
}

func (r *Repository) logRequest(req oai.Request, code oai.ErrorCode) {
	attrs := []any{
		"verb", req.Verb,
		"args", strings.Join(req.ArgNames(), ","),
	}
	if code != "" {
		attrs = append(attrs, "error_code", string(code))
	}
	r.logger.Info("request handled", attrs...)
}

// today is the default upper date bound for fresh cursors.
func (r *Repository) today() string {
	return r.now().UTC().Format("2006-01-02")
}

// protocolMessage extracts the message of a protocol error for the
// response body; unclassified errors surface no detail to the caller.
func protocolMessage(err error) string {
	var oaiErr *oai.Error
	if errors.As(err, &oaiErr) {
		return oaiErr.Message
	}
	return ""
}
