package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/scribe/errors"
	servertest "github.com/kbukum/scribe/server/testutil"
	"github.com/kbukum/scribe/testutil"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(testutil.SQLite(t, &Patient{}))
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	p := &Patient{Name: "John Martinez", BirthDate: date(1985, time.March, 15)}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}
	if p.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "John Martinez" || !got.BirthDate.Equal(p.BirthDate) {
		t.Errorf("unexpected patient %+v", got)
	}
}

func TestRepositoryGetNotFound(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Get(context.Background(), uuid.New())
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Message != "Patient not found" {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestRepositoryListOrdersByName(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	for _, name := range []string{"Sarah Johnson", "Michael Chen", "John Martinez"} {
		if err := repo.Create(ctx, &Patient{Name: name, BirthDate: date(1980, time.January, 1)}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	patients, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"John Martinez", "Michael Chen", "Sarah Johnson"}
	if len(patients) != len(want) {
		t.Fatalf("expected %d patients, got %d", len(want), len(patients))
	}
	for i, p := range patients {
		if p.Name != want[i] {
			t.Errorf("position %d: got %s, want %s", i, p.Name, want[i])
		}
	}
}

func TestRepositoryFindByName(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	p, err := repo.FindByName(ctx, "Nobody")
	if err != nil || p != nil {
		t.Fatalf("expected nil, nil; got %v, %v", p, err)
	}

	_ = repo.Create(ctx, &Patient{Name: "Michael Chen", BirthDate: date(1990, time.November, 8)})
	p, err = repo.FindByName(ctx, "Michael Chen")
	if err != nil || p == nil {
		t.Fatalf("expected patient, got %v, %v", p, err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := Seed(ctx, repo, DefaultSeed, nil)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if created != 3 {
		t.Errorf("expected 3 created, got %d", created)
	}

	created, err = Seed(ctx, repo, DefaultSeed, nil)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if created != 0 {
		t.Errorf("expected 0 created on rerun, got %d", created)
	}

	patients, _ := repo.List(ctx)
	if len(patients) != 3 {
		t.Errorf("expected 3 patients, got %d", len(patients))
	}
}

func TestDefaultSeedDates(t *testing.T) {
	want := map[string]string{
		"John Martinez": "1985-03-15",
		"Sarah Johnson": "1972-08-22",
		"Michael Chen":  "1990-11-08",
	}
	for _, sp := range DefaultSeed {
		if got := sp.BirthDate.Format(time.DateOnly); got != want[sp.Name] {
			t.Errorf("%s: got %s, want %s", sp.Name, got, want[sp.Name])
		}
	}
}

type fakeNotes struct {
	gotID uuid.UUID
	notes []NoteSummary
}

func (f *fakeNotes) ListByPatient(_ context.Context, id uuid.UUID) ([]NoteSummary, error) {
	f.gotID = id
	return f.notes, nil
}

func newHandlerServer(t *testing.T, notes NoteLister) (*servertest.Component, *Repository) {
	t.Helper()
	repo := newRepo(t)
	srv := servertest.NewComponent()
	NewHandler(repo, notes, nil).Register(srv.GinEngine())
	return srv, repo
}

func serve(srv *servertest.Component, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Server().Handler().ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandlerList(t *testing.T) {
	srv, repo := newHandlerServer(t, nil)
	_, _ = Seed(context.Background(), repo, DefaultSeed, nil)

	w := serve(srv, http.MethodGet, "/api/patients")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 3 || body[0]["name"] != "John Martinez" {
		t.Fatalf("unexpected body %v", body)
	}
	for _, key := range []string{"id", "name", "birthDate", "createdAt"} {
		if _, ok := body[0][key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
}

func TestHandlerGet(t *testing.T) {
	newer, older := uuid.New(), uuid.New()
	summary := "S: back pain"
	notes := &fakeNotes{notes: []NoteSummary{
		{ID: newer, InputType: "text", Summary: &summary},
		{ID: older, InputType: "audio"},
	}}
	srv, repo := newHandlerServer(t, notes)
	p := &Patient{Name: "Sarah Johnson", BirthDate: date(1972, time.August, 22)}
	_ = repo.Create(context.Background(), p)

	w := serve(srv, http.MethodGet, "/api/patients/"+p.ID.String())
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if notes.gotID != p.ID {
		t.Errorf("notes listed for %s, want %s", notes.gotID, p.ID)
	}

	var body struct {
		ID    string           `json:"id"`
		Name  string           `json:"name"`
		Notes []map[string]any `json:"notes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ID != p.ID.String() || body.Name != "Sarah Johnson" {
		t.Errorf("unexpected patient %+v", body)
	}
	if len(body.Notes) != 2 || body.Notes[0]["id"] != newer.String() {
		t.Fatalf("unexpected notes %v", body.Notes)
	}
	first := body.Notes[0]
	if first["summary"] != summary || first["inputType"] != "text" {
		t.Errorf("unexpected note %v", first)
	}
	for _, key := range []string{"patientId", "rawText", "audioUrl", "transcription", "createdAt"} {
		if _, ok := first[key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
	if _, ok := first["patient"]; ok {
		t.Error("listed note should not embed the patient")
	}
}

func TestHandlerGetNilNotes(t *testing.T) {
	srv, repo := newHandlerServer(t, &fakeNotes{})
	p := &Patient{Name: "Michael Chen", BirthDate: date(1990, time.November, 8)}
	_ = repo.Create(context.Background(), p)

	w := serve(srv, http.MethodGet, "/api/patients/"+p.ID.String())
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if notes, ok := body["notes"].([]any); !ok || len(notes) != 0 {
		t.Errorf("expected empty notes array, got %v", body["notes"])
	}
}

func TestHandlerGetWithoutNoteLister(t *testing.T) {
	srv, repo := newHandlerServer(t, nil)
	p := &Patient{Name: "Michael Chen", BirthDate: date(1990, time.November, 8)}
	_ = repo.Create(context.Background(), p)

	w := serve(srv, http.MethodGet, "/api/patients/"+p.ID.String())
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if notes, ok := body["notes"].([]any); !ok || len(notes) != 0 {
		t.Errorf("expected empty notes array, got %v", body["notes"])
	}
}

func TestHandlerGetErrors(t *testing.T) {
	srv, _ := newHandlerServer(t, nil)

	tests := []struct {
		name    string
		path    string
		status  int
		message string
	}{
		{"malformed id", "/api/patients/not-a-uuid", http.StatusBadRequest, "Invalid patient ID"},
		{"unknown id", "/api/patients/" + uuid.NewString(), http.StatusNotFound, "Patient not found"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(srv, http.MethodGet, tc.path)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			var body map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body["error"] != tc.message {
				t.Errorf("expected error %q, got %v", tc.message, body["error"])
			}
		})
	}
}

func TestHandlerOverHTTP(t *testing.T) {
	srv, repo := newHandlerServer(t, nil)
	_, _ = Seed(context.Background(), repo, DefaultSeed[:1], nil)
	testutil.T(t).Setup(srv)

	var patients []Patient
	if code := srv.GetJSON(t, "/api/patients", &patients); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(patients) != 1 || patients[0].Name != DefaultSeed[0].Name {
		t.Errorf("unexpected patients %+v", patients)
	}
}
