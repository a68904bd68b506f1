package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syberke/TechStore/internal/handlers"
	"github.com/syberke/TechStore/internal/upload"
)

type fakeUploader struct {
	result *upload.Result
	err    error

	gotContentType string
	gotData        []byte
}

func (f *fakeUploader) Upload(ctx context.Context, contentType string, data []byte) (*upload.Result, error) {
	f.gotContentType = contentType
	f.gotData = data
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func setupUploadTestRouter(uploader *fakeUploader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/upload", handlers.NewUploadHandler(uploader).UploadImage)
	return r
}

func performUpload(t *testing.T, router *gin.Engine, fileField string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if fileField != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="gpu.png"`)
		header.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestUploadHandler(t *testing.T) {

	t.Run("Successful upload returns the hosted url", func(t *testing.T) {
		uploader := &fakeUploader{result: &upload.Result{
			URL:      "https://res.cloudinary.com/demo/image/upload/v1/techstore/gpu.png",
			PublicID: "techstore/gpu",
		}}
		router := setupUploadTestRouter(uploader)

		recorder := performUpload(t, router, "file", []byte("fake-png-bytes"))

		assert.Equal(t, http.StatusOK, recorder.Code)

		var response struct {
			Success  bool   `json:"success"`
			URL      string `json:"url"`
			PublicID string `json:"publicId"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.True(t, response.Success)
		assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/techstore/gpu.png", response.URL)
		assert.Equal(t, "techstore/gpu", response.PublicID)

		assert.Equal(t, "image/png", uploader.gotContentType)
		assert.Equal(t, []byte("fake-png-bytes"), uploader.gotData)
	})

	t.Run("Missing file returns 400", func(t *testing.T) {
		uploader := &fakeUploader{}
		router := setupUploadTestRouter(uploader)

		recorder := performUpload(t, router, "", nil)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, false, response["success"])
		assert.Equal(t, "no file provided", response["error"])
	})

	t.Run("Missing credentials return 500", func(t *testing.T) {
		uploader := &fakeUploader{err: upload.ErrNotConfigured}
		router := setupUploadTestRouter(uploader)

		recorder := performUpload(t, router, "file", []byte("fake-png-bytes"))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "image uploads not configured", response["error"])
	})

	t.Run("Upstream failure returns 500 with a generic message", func(t *testing.T) {
		uploader := &fakeUploader{err: &upload.UploadError{StatusCode: 500, Message: "something internal"}}
		router := setupUploadTestRouter(uploader)

		recorder := performUpload(t, router, "file", []byte("fake-png-bytes"))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), "something internal")
		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "failed to upload image", response["error"])
	})
}
