package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-market/internal/storage"
)

// fakeStorage keeps uploaded objects in memory and records deletions.
type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

var _ storage.Service = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStorage) Delete(ctx context.Context, bucket, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) ObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return "https://cdn.test/" + bucket + "/" + key, nil
}

func (s *testServer) uploadPhoto(t *testing.T, animalID int64, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/animals/%d/photo", animalID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestPhotoUpload(t *testing.T) {
	store := newFakeStorage()
	srv := newTestServerWithStorage(t, store, "test-bucket")
	token, _ := srv.register(t, "alice", "alice@example.com", "secret-pass")
	animalID := srv.createAnimal(t, token)

	rec := srv.uploadPhoto(t, animalID, token, "rex.jpg", []byte("jpeg-bytes"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, store.objects, 1)
	for key, data := range store.objects {
		assert.True(t, strings.HasPrefix(key, fmt.Sprintf("animal-%d/", animalID)))
		assert.True(t, strings.HasSuffix(key, ".jpg"))
		assert.Equal(t, []byte("jpeg-bytes"), data)
		// the response carries a signed URL, never the raw key
		assert.Contains(t, rec.Body.String(), "https://cdn.test/test-bucket/"+key)
	}
	assert.NotContains(t, rec.Body.String(), `"photo_key"`)
}

func TestPhotoUpload_NotOwner(t *testing.T) {
	store := newFakeStorage()
	srv := newTestServerWithStorage(t, store, "test-bucket")
	aliceToken, _ := srv.register(t, "alice", "alice@example.com", "secret1-pass")
	bobToken, _ := srv.register(t, "bob", "bob@example.com", "secret2-pass")
	animalID := srv.createAnimal(t, aliceToken)

	rec := srv.uploadPhoto(t, animalID, bobToken, "rex.jpg", []byte("jpeg-bytes"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, store.objects, "nothing is uploaded on a denied request")

	rec = srv.uploadPhoto(t, 999, bobToken, "rex.jpg", []byte("jpeg-bytes"))
	assert.Equal(t, http.StatusNotFound, rec.Code, "absent listing outranks ownership")
}

func TestPhotoUpload_TooLarge(t *testing.T) {
	store := newFakeStorage()
	srv := newTestServerWithStorage(t, store, "test-bucket")
	token, _ := srv.register(t, "alice", "alice@example.com", "secret-pass")
	animalID := srv.createAnimal(t, token)

	oversize := bytes.Repeat([]byte("x"), maxPhotoSize+1)
	rec := srv.uploadPhoto(t, animalID, token, "huge.jpg", oversize)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.objects)
}

func TestPhotoUpload_MissingFile(t *testing.T) {
	store := newFakeStorage()
	srv := newTestServerWithStorage(t, store, "test-bucket")
	token, _ := srv.register(t, "alice", "alice@example.com", "secret-pass")
	animalID := srv.createAnimal(t, token)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/animals/%d/photo", animalID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPhotoUpload_ReplacesPrevious(t *testing.T) {
	store := newFakeStorage()
	srv := newTestServerWithStorage(t, store, "test-bucket")
	token, _ := srv.register(t, "alice", "alice@example.com", "secret-pass")
	animalID := srv.createAnimal(t, token)

	rec := srv.uploadPhoto(t, animalID, token, "first.jpg", []byte("first"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.objects, 1)
	var firstKey string
	for key := range store.objects {
		firstKey = key
	}

	rec = srv.uploadPhoto(t, animalID, token, "second.png", []byte("second"))
	require.Equal(t, http.StatusOK, rec.Code)

	// the old object is gone, only the replacement remains
	assert.Contains(t, store.deleted, firstKey)
	require.Len(t, store.objects, 1)
	for key, data := range store.objects {
		assert.NotEqual(t, firstKey, key)
		assert.True(t, strings.HasSuffix(key, ".png"))
		assert.Equal(t, []byte("second"), data)
	}
}

func TestPhotoUpload_DeleteAnimalRemovesPhoto(t *testing.T) {
	store := newFakeStorage()
	srv := newTestServerWithStorage(t, store, "test-bucket")
	token, _ := srv.register(t, "alice", "alice@example.com", "secret-pass")
	animalID := srv.createAnimal(t, token)

	rec := srv.uploadPhoto(t, animalID, token, "rex.jpg", []byte("jpeg-bytes"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/animals/%d", animalID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.objects, "the listing photo is removed with the listing")
}
