// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Report selections arrive as query strings, forms or JSON; records arrive as
// JSON only.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"masjid/internal/report"
)

// maxBodyBytes caps request bodies. Receipts are referenced by path, never
// uploaded inline.
const maxBodyBytes = 1 << 20

// errBadBody marks request bodies that could not be read or decoded.
var errBadBody = errors.New("malformed request body")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(trimmed, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// ParseReportRequest reads kind, start, end and format from the query string
// and, for requests with a body, from the form or JSON body. Body fields win
// over query fields.
func ParseReportRequest(r *http.Request) (report.Request, error) {
	q := r.URL.Query()
	req := report.Request{
		Kind:   report.Kind(sanitizeInput(q.Get("kind"))),
		Start:  sanitizeInput(q.Get("start")),
		End:    sanitizeInput(q.Get("end")),
		Format: report.Format(sanitizeInput(q.Get("format"))),
	}
	if r.Method == http.MethodGet || r.Body == nil {
		return req, nil
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return report.Request{}, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if v := p.Get("kind"); v != "" {
		req.Kind = report.Kind(v)
	}
	if v := p.Get("start"); v != "" {
		req.Start = v
	}
	if v := p.Get("end"); v != "" {
		req.End = v
	}
	if v := p.Get("format"); v != "" {
		req.Format = report.Format(v)
	}
	return req, nil
}

// decodeJSON strictly decodes a single JSON object from the request body.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", errBadBody)
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadBody)
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON object", errBadBody)
	}
	return nil
}
