package folioapi

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// rawField is a request value at the boundary. Depending on the request
// content type it arrived either as form text or as a raw JSON value; it
// is resolved exactly once by a normalizer into the canonical type used
// everywhere downstream.
type rawField struct {
	text    string
	raw     json.RawMessage
	present bool
}

func textField(s string) rawField { return rawField{text: s, present: true} }

// String resolves the field to plain text. JSON strings are unquoted;
// any other JSON value is returned as its literal encoding.
func (f rawField) String() string {
	if f.raw != nil {
		var s string
		if err := json.Unmarshal(f.raw, &s); err == nil {
			return s
		}
		return strings.TrimSpace(string(f.raw))
	}
	return f.text
}

// Int resolves the field to an integer, accepting either a JSON number or
// numeric text.
func (f rawField) Int() (int, bool) {
	if f.raw != nil {
		var n int
		if err := json.Unmarshal(f.raw, &n); err == nil {
			return n, true
		}
	}
	n, err := strconv.Atoi(strings.TrimSpace(f.String()))
	if err != nil {
		return 0, false
	}
	return n, true
}

// request is a decoded create/update body, independent of whether the
// client sent JSON, multipart form data, or a urlencoded form.
type request struct {
	fields map[string]rawField
	file   *multipart.FileHeader
}

func (r *request) field(name string) rawField { return r.fields[name] }
func (r *request) text(name string) string    { return r.fields[name].String() }
func (r *request) has(name string) bool       { return r.fields[name].present }

// decodeRequest parses the request body into a uniform field map.
// fileField names the multipart part that may carry an uploaded image;
// pass "" for operations that take no file.
func decodeRequest(c echo.Context, fileField string) (*request, *Error) {
	req := &request{fields: make(map[string]rawField)}
	ct := c.Request().Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ct, echo.MIMEApplicationJSON):
		var body map[string]json.RawMessage
		if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil && err != io.EOF {
			return nil, badRequest("Invalid JSON body")
		}
		for k, v := range body {
			req.fields[k] = rawField{raw: v, present: true}
		}
	case strings.HasPrefix(ct, echo.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, badRequest("Invalid multipart form")
		}
		for k, vs := range form.Value {
			if len(vs) > 0 {
				req.fields[k] = textField(vs[0])
			}
		}
		if fileField != "" {
			if fs := form.File[fileField]; len(fs) > 0 {
				req.file = fs[0]
			}
		}
	default:
		if err := c.Request().ParseForm(); err != nil {
			return nil, badRequest("Invalid form body")
		}
		for k, vs := range c.Request().PostForm {
			if len(vs) > 0 {
				req.fields[k] = textField(vs[0])
			}
		}
	}
	return req, nil
}

// normalizeTags resolves a tags field into a flat slice of trimmed,
// non-empty strings. A value that is already a sequence passes through;
// text is parsed as a JSON array first and falls back to comma splitting.
// An absent field yields an empty slice.
func normalizeTags(f rawField) []string {
	if !f.present {
		return []string{}
	}
	if f.raw != nil {
		var list []string
		if err := json.Unmarshal(f.raw, &list); err == nil {
			return filterEmpty(list)
		}
	}
	return splitTags(f.String())
}

func splitTags(s string) []string {
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return filterEmpty(list)
	}
	return filterEmpty(strings.Split(s, ","))
}

// normalizeStats resolves the nested stats record. A record passes
// through; text must parse as a JSON object, and a parse failure is the
// caller's error, reported before validation runs.
func normalizeStats(f rawField) (ProjectStats, *Error) {
	if !f.present {
		return ProjectStats{}, nil
	}
	var stats ProjectStats
	if f.raw != nil {
		if err := json.Unmarshal(f.raw, &stats); err == nil {
			return stats, nil
		}
		var s string
		if err := json.Unmarshal(f.raw, &s); err != nil {
			return ProjectStats{}, badRequest("Invalid stats JSON")
		}
		if err := json.Unmarshal([]byte(s), &stats); err != nil {
			return ProjectStats{}, badRequest("Invalid stats JSON")
		}
		return stats, nil
	}
	if err := json.Unmarshal([]byte(f.text), &stats); err != nil {
		return ProjectStats{}, badRequest("Invalid stats JSON")
	}
	return stats, nil
}

// normalizeBool accepts a native boolean or the literal text "true";
// any other value normalizes to false.
func normalizeBool(f rawField) bool {
	if !f.present {
		return false
	}
	if f.raw != nil {
		var b bool
		if err := json.Unmarshal(f.raw, &b); err == nil {
			return b
		}
	}
	return f.String() == "true"
}

// parseDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
