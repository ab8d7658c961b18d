package imagestore

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
)

func multipartUpload(t *testing.T, fileName, contentType string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(body)
	w.WriteField("patient_id", "4")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestHandler_UploadAndDownload(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir(), "/api/v1/xray-images")
	h, e := NewHandler(store), echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(multipartUpload(t, "pa.png", "", pngHeader), rec)
	if err := h.Upload(c); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var img Image
	if err := json.Unmarshal(rec.Body.Bytes(), &img); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.ContentType != "image/png" || img.PatientID != 4 {
		t.Errorf("unexpected image %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(img.ID)
	if err := h.Download(c); err != nil {
		t.Fatalf("download: %v", err)
	}
	if !bytes.Equal(rec.Body.Bytes(), pngHeader) || rec.Header().Get(echo.HeaderContentType) != "image/png" {
		t.Errorf("unexpected download %q %q", rec.Header().Get(echo.HeaderContentType), rec.Body.String())
	}
}

func TestHandler_UploadRejectsText(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir(), "/x")
	h, e := NewHandler(store), echo.New()

	c := e.NewContext(multipartUpload(t, "notes.txt", "text/plain", []byte("hi")), httptest.NewRecorder())
	err := h.Upload(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %v", err)
	}
}

func TestHandler_DownloadFromRemoteStore(t *testing.T) {
	h, e := NewHandler(newCloudinaryStore(&fakeCloud{}, "")), echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")
	err := h.Download(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
