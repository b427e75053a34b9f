package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/notekeeper-api/internal/platform/blob"
	"github.com/phrazzld/notekeeper-api/internal/service"
)

func newAttachmentRouter(svc service.AttachmentService) http.Handler {
	h := NewAttachmentHandler(svc)
	r := chi.NewRouter()
	r.Get("/notes/{noteId}/attachments", h.List)
	r.Put("/notes/{noteId}/attachments/{attachmentId}", h.Upload)
	r.Get("/notes/{noteId}/attachments/{attachmentId}", h.Download)
	r.Delete("/notes/{noteId}/attachments/{attachmentId}", h.Delete)
	return r
}

func TestAttachmentHandlerUpload(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()

	t.Run("created on first upload", func(t *testing.T) {
		t.Parallel()

		svc := &mockAttachmentService{
			UploadFn: func(ctx context.Context, gotNote uuid.UUID, attachmentID string, content io.Reader, size int64, contentType string) (bool, error) {
				assert.Equal(t, noteID, gotNote)
				assert.Equal(t, "photo.png", attachmentID)
				assert.Equal(t, "image/png", contentType)

				data, err := io.ReadAll(content)
				require.NoError(t, err)
				assert.Equal(t, "0123456789", string(data))
				assert.Equal(t, int64(10), size)
				return true, nil
			},
		}

		req := httptest.NewRequest(
			http.MethodPut,
			"/notes/"+noteID.String()+"/attachments/photo.png",
			strings.NewReader("0123456789"),
		)
		req.Header.Set("Content-Type", "image/png")
		rec := httptest.NewRecorder()
		newAttachmentRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "/notes/"+noteID.String()+"/attachments/photo.png", rec.Header().Get("Location"))
	})

	t.Run("no content on overwrite", func(t *testing.T) {
		t.Parallel()

		svc := &mockAttachmentService{
			UploadFn: func(ctx context.Context, gotNote uuid.UUID, attachmentID string, content io.Reader, size int64, contentType string) (bool, error) {
				return false, nil
			},
		}

		req := httptest.NewRequest(
			http.MethodPut,
			"/notes/"+noteID.String()+"/attachments/photo.png",
			strings.NewReader("v2"),
		)
		rec := httptest.NewRecorder()
		newAttachmentRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("defaults the content type", func(t *testing.T) {
		t.Parallel()

		svc := &mockAttachmentService{
			UploadFn: func(ctx context.Context, gotNote uuid.UUID, attachmentID string, content io.Reader, size int64, contentType string) (bool, error) {
				assert.Equal(t, defaultContentType, contentType)
				return true, nil
			},
		}

		req := httptest.NewRequest(
			http.MethodPut,
			"/notes/"+noteID.String()+"/attachments/raw.bin",
			strings.NewReader("data"),
		)
		rec := httptest.NewRecorder()
		newAttachmentRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("missing note", func(t *testing.T) {
		t.Parallel()

		svc := &mockAttachmentService{
			UploadFn: func(ctx context.Context, gotNote uuid.UUID, attachmentID string, content io.Reader, size int64, contentType string) (bool, error) {
				return false, service.ErrNoteNotFound
			},
		}

		req := httptest.NewRequest(
			http.MethodPut,
			"/notes/"+uuid.NewString()+"/attachments/a.png",
			strings.NewReader("aa"),
		)
		rec := httptest.NewRecorder()
		newAttachmentRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("attachment limit reached", func(t *testing.T) {
		t.Parallel()

		svc := &mockAttachmentService{
			UploadFn: func(ctx context.Context, gotNote uuid.UUID, attachmentID string, content io.Reader, size int64, contentType string) (bool, error) {
				return false, service.ErrAttachmentLimitReached
			},
		}

		req := httptest.NewRequest(
			http.MethodPut,
			"/notes/"+noteID.String()+"/attachments/extra.png",
			strings.NewReader("aa"),
		)
		rec := httptest.NewRecorder()
		newAttachmentRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid note ID", func(t *testing.T) {
		t.Parallel()

		svc := &mockAttachmentService{}
		req := httptest.NewRequest(http.MethodPut, "/notes/nope/attachments/a.png", strings.NewReader("aa"))
		rec := httptest.NewRecorder()
		newAttachmentRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAttachmentHandlerList(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	svc := &mockAttachmentService{
		ListFn: func(ctx context.Context, gotNote uuid.UUID) ([]blob.ObjectInfo, error) {
			return []blob.ObjectInfo{
				{Key: "a.txt", Size: 2, ContentType: "text/plain", CreatedAt: now, LastModified: now},
				{Key: "b.png", Size: 10, ContentType: "image/png", CreatedAt: now, LastModified: now},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/notes/"+noteID.String()+"/attachments", nil)
	rec := httptest.NewRecorder()
	newAttachmentRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []AttachmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "a.txt", resp[0].AttachmentID)
	assert.Equal(t, "text/plain", resp[0].ContentType)
	assert.Equal(t, int64(2), resp[0].Length)
	assert.Equal(t, "b.png", resp[1].AttachmentID)
}

func TestAttachmentHandlerDownload(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()

	t.Run("streams content with headers", func(t *testing.T) {
		t.Parallel()

		svc := &mockAttachmentService{
			GetFn: func(ctx context.Context, gotNote uuid.UUID, attachmentID string) (io.ReadCloser, string, error) {
				return io.NopCloser(strings.NewReader("0123456789")), "image/png", nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/notes/"+noteID.String()+"/attachments/photo.png", nil)
		rec := httptest.NewRecorder()
		newAttachmentRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "photo.png")
		assert.Equal(t, "0123456789", rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		svc := &mockAttachmentService{
			GetFn: func(ctx context.Context, gotNote uuid.UUID, attachmentID string) (io.ReadCloser, string, error) {
				return nil, "", service.ErrAttachmentNotFound
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/notes/"+noteID.String()+"/attachments/missing.png", nil)
		rec := httptest.NewRecorder()
		newAttachmentRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAttachmentHandlerDelete(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()

	svc := &mockAttachmentService{
		DeleteFn: func(ctx context.Context, gotNote uuid.UUID, attachmentID string) error {
			assert.Equal(t, "a.png", attachmentID)
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/notes/"+noteID.String()+"/attachments/a.png", nil)
	rec := httptest.NewRecorder()
	newAttachmentRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
