package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	models "bucketlist/internal/domain/models/bucketlist"
	svc "bucketlist/internal/domain/services/bucketlist"
	"bucketlist/internal/events"
	"bucketlist/internal/httputil"
	"bucketlist/internal/repository/memory"
	authsvc "bucketlist/internal/service/auth"
	"bucketlist/internal/service/bucketlist"

	"github.com/stretchr/testify/require"
)

var (
	alice = models.Actor{DisplayName: "Alice", Email: "alice@example.com"}
	bob   = models.Actor{DisplayName: "Bob", Email: "bob@example.com"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeImageHost accepts every upload and names it after the filename
type fakeImageHost struct {
	uploads int
}

func (f *fakeImageHost) Upload(ctx context.Context, req *svc.UploadRequest) (*svc.UploadResult, error) {
	f.uploads++
	return &svc.UploadResult{
		URL:         "https://images.example.com/photos/" + req.Filename,
		FileID:      "photos/2024/05/01/" + req.Filename,
		DisplayName: req.Filename,
	}, nil
}

type testServer struct {
	mux      *http.ServeMux
	registry *bucketlist.SessionRegistry
	bus      *events.Bus
	images   *fakeImageHost
}

func newTestServer(t *testing.T, loader svc.Loader) *testServer {
	t.Helper()
	logger := discardLogger()
	store := memory.NewDocumentStore()
	if loader == nil {
		loader = bucketlist.NewLoader(store, logger)
	}

	ts := &testServer{
		bus:    events.NewBus(logger),
		images: &fakeImageHost{},
	}
	ts.registry = bucketlist.NewSessionRegistry(bucketlist.Dependencies{
		Loader:        loader,
		Items:         bucketlist.NewItemMutator(store, logger),
		Comments:      bucketlist.NewCommentMutator(store, 3, logger),
		Images:        ts.images,
		Authorizer:    authsvc.NewOwnerBasedAuthorizer(),
		Publisher:     ts.bus,
		Logger:        logger,
		RemoteTimeout: time.Second,
	})

	items := NewItemHandler(ts.registry, logger)
	comments := NewCommentHandler(ts.registry, logger)
	uploads := NewUploadHandler(ts.registry, logger)
	sessions := NewSessionHandler(ts.registry, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/items", items.List)
	mux.HandleFunc("POST /api/items", items.Create)
	mux.HandleFunc("PATCH /api/items/{id}", items.Update)
	mux.HandleFunc("DELETE /api/items/{id}", items.Delete)
	mux.HandleFunc("POST /api/items/{id}/complete", items.Complete)
	mux.HandleFunc("DELETE /api/items/{id}/complete", items.Reopen)
	mux.HandleFunc("POST /api/items/{id}/photo", items.AttachPhoto)
	mux.HandleFunc("PUT /api/items/{id}/photo", items.SetPhoto)
	mux.HandleFunc("DELETE /api/items/{id}/photo", items.DetachPhoto)
	mux.HandleFunc("POST /api/items/{id}/comments", comments.Add)
	mux.HandleFunc("PATCH /api/items/{id}/comments/{cid}", comments.Edit)
	mux.HandleFunc("DELETE /api/items/{id}/comments/{cid}", comments.Remove)
	mux.HandleFunc("POST /api/items/{id}/comments/{cid}/photo", comments.AttachPhoto)
	mux.HandleFunc("DELETE /api/items/{id}/comments/{cid}/photo", comments.DetachPhoto)
	mux.HandleFunc("POST /api/uploads", uploads.Upload)
	mux.HandleFunc("GET /api/session", sessions.Get)
	mux.HandleFunc("DELETE /api/session", sessions.Delete)
	ts.mux = mux
	return ts
}

// do sends a request as actor; a zero actor is signed out
func (ts *testServer) do(t *testing.T, actor models.Actor, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if actor.Authenticated() {
		req = httputil.WithIdentity(req, "uid-"+actor.DisplayName, actor)
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doJSON(t *testing.T, actor models.Actor, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return ts.do(t, actor, req)
}

// multipartRequest builds a form with the given text fields and, when
// filename is set, a photo part
func multipartRequest(t *testing.T, target string, fields map[string]string, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile(photoField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type createResponse struct {
	ID    string            `json:"id"`
	Items []models.ItemView `json:"items"`
}

type commentResponse struct {
	Comment models.Comment    `json:"comment"`
	Items   []models.ItemView `json:"items"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// createItem adds an item as actor and returns its id
func (ts *testServer) createItem(t *testing.T, actor models.Actor, title string) string {
	t.Helper()
	rec := ts.doJSON(t, actor, http.MethodPost, "/api/items", map[string]string{
		"title":       title,
		"description": "described",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[createResponse](t, rec).ID
}

// addComment adds a text comment as actor and returns its id
func (ts *testServer) addComment(t *testing.T, actor models.Actor, itemID, text string) string {
	t.Helper()
	rec := ts.doJSON(t, actor, http.MethodPost, "/api/items/"+itemID+"/comments", map[string]string{"text": text})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[commentResponse](t, rec).Comment.ID
}

func findView(t *testing.T, views []models.ItemView, id string) models.ItemView {
	t.Helper()
	for _, v := range views {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("item %s not in view", id)
	return models.ItemView{}
}

// problem is the RFC 7807 body
type problem struct {
	Status       int    `json:"status"`
	Detail       string `json:"detail"`
	ResourceType string `json:"resource_type"`
}
