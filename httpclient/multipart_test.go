package httpclient

import (
	"io"
	"mime"
	"mime/multipart"
	"testing"
)

func readParts(t *testing.T, r io.Reader, contentType string) map[string]*multipartPart {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("ParseMediaType: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("media type = %q, want multipart/form-data", mediaType)
	}
	parts := map[string]*multipartPart{}
	mr := multipart.NewReader(r, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart: %v", err)
		}
		data, _ := io.ReadAll(p)
		parts[p.FormName()] = &multipartPart{
			fileName:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			data:        string(data),
		}
	}
	return parts
}

type multipartPart struct {
	fileName    string
	contentType string
	data        string
}

func TestMultipartBody_FieldsAndFile(t *testing.T) {
	mp := &MultipartBody{
		Fields: map[string]string{"language": "en"},
		Files: []FileField{{
			FieldName:   "audio_file",
			FileName:    "1700000000000-123456789.webm",
			ContentType: "audio/webm",
			Data:        []byte("RIFF...."),
		}},
	}
	r, ct, err := mp.encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	parts := readParts(t, r, ct)
	if parts["language"] == nil || parts["language"].data != "en" {
		t.Errorf("missing language field: %+v", parts["language"])
	}
	file := parts["audio_file"]
	if file == nil {
		t.Fatal("missing audio_file part")
	}
	if file.fileName != "1700000000000-123456789.webm" || file.contentType != "audio/webm" || file.data != "RIFF...." {
		t.Errorf("unexpected file part %+v", file)
	}
}

func TestMultipartBody_DefaultContentType(t *testing.T) {
	mp := &MultipartBody{Files: []FileField{{FieldName: "f", FileName: "a.bin", Data: []byte{1}}}}
	r, ct, err := mp.encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := readParts(t, r, ct)["f"].contentType; got != "application/octet-stream" {
		t.Errorf("expected octet-stream default, got %q", got)
	}
}

func TestMultipartBody_ReencodesIdentically(t *testing.T) {
	mp := &MultipartBody{Files: []FileField{{FieldName: "audio_file", FileName: "a.wav", Data: []byte("abc")}}}
	for i := 0; i < 2; i++ {
		r, ct, err := mp.encode()
		if err != nil {
			t.Fatalf("encode %d: %v", i, err)
		}
		if got := readParts(t, r, ct)["audio_file"].data; got != "abc" {
			t.Errorf("encode %d: expected data abc, got %q", i, got)
		}
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := escapeQuotes(`a"b\c`); got != `a\"b\\c` {
		t.Errorf("escapeQuotes = %q", got)
	}
}
