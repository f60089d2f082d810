package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/pngexport/pkg/dom"
	"github.com/matzehuels/pngexport/pkg/errors"
	"github.com/matzehuels/pngexport/pkg/export"
	"github.com/matzehuels/pngexport/pkg/source"
	"github.com/matzehuels/pngexport/pkg/tracker"
)

const page = `<!DOCTYPE html>
<html><body>
  <svg id="chart" width="200" height="100">
    <rect x="0" y="0" width="200" height="100" fill="#00ff00"/>
  </svg>
  <svg viewBox="0 0 40 40"><circle cx="20" cy="20" r="10"/></svg>
</body></html>`

func newTestServer(t *testing.T) (*Server, *dom.Document) {
	t.Helper()
	doc, err := dom.ParseString(page)
	if err != nil {
		t.Fatal(err)
	}
	return New(export.New(doc, nil, nil, nil), nil), doc
}

func get(s http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestExportDownload(t *testing.T) {
	s, doc := newTestServer(t)

	rec := get(s, "/export?selector=%23chart&filename=chart&width=100")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename=chart.png` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("image size = %dx%d, want 100x50", b.Dx(), b.Dy())
	}

	left := doc.Find(func(el *dom.Element) bool {
		return strings.HasPrefix(el.ID(), tracker.ElementPrefix+"-")
	})
	if len(left) != 0 {
		t.Errorf("%d tracked elements left in the document", len(left))
	}
}

func TestExportErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		code   errors.Code
	}{
		{"missing graphic", "/export?selector=%23nope", http.StatusNotFound, errors.ErrCodeSourceNotFound},
		{"empty selector", "/export", http.StatusBadRequest, errors.ErrCodeInvalidSelector},
		{"bad width", "/export?selector=%23chart&width=wide", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"negative width", "/export?selector=%23chart&width=-1", http.StatusBadRequest, errors.ErrCodeInvalidDimensions},
		{"bad filename", "/export?selector=%23chart&filename=a%2Fb", http.StatusBadRequest, errors.ErrCodeInvalidFilename},
		{"surface too large", "/export?selector=%23chart&width=16000&height=16000", http.StatusBadRequest, errors.ErrCodeInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := get(s, tt.target)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if rec.Header().Get("Content-Disposition") != "" {
				t.Error("failed export must not start a download")
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
		})
	}
}

func TestGraphics(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(s, "/graphics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var gs []source.Graphic
	if err := json.Unmarshal(rec.Body.Bytes(), &gs); err != nil {
		t.Fatal(err)
	}
	if len(gs) != 2 {
		t.Fatalf("got %d graphics, want 2", len(gs))
	}
	if gs[0].Selector != "#chart" || gs[1].Width != 40 {
		t.Errorf("graphics = %+v", gs)
	}

	// Assigned ids must be usable for export.
	rec = get(s, "/export?selector="+strings.ReplaceAll(gs[1].Selector, "#", "%23"))
	if rec.Code != http.StatusOK {
		t.Errorf("export of %s: status = %d", gs[1].Selector, rec.Code)
	}
}

func TestDocumentAndHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(s, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `id="chart"`) {
		t.Errorf("GET / = %d, body missing document", rec.Code)
	}

	rec = get(s, "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("GET /healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		width, height string
		want          export.Options
		wantErr       bool
	}{
		{"", "", export.Options{}, false},
		{"300", "", export.Options{Width: 300}, false},
		{"", "12.5", export.Options{Height: 12.5}, false},
		{"x", "", export.Options{}, true},
	}

	for _, tt := range tests {
		got, err := parseOptions(tt.width, tt.height)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseOptions(%q, %q) error = %v, wantErr %v", tt.width, tt.height, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseOptions(%q, %q) = %+v, want %+v", tt.width, tt.height, got, tt.want)
		}
	}
}
