package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"event-gallery/domain/models"
	"event-gallery/domain/services"
	"event-gallery/interfaces/api/handlers"
	"event-gallery/interfaces/api/middleware"
	"event-gallery/interfaces/api/routes"
	"event-gallery/pkg/config"
	"event-gallery/pkg/utils"
)

const testSecret = "test-secret"

type stubRegistration struct {
	services.RegistrationService
	got services.RegisterInput
	err error
}

func (s *stubRegistration) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	s.got = in
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: uuid.New(), GalleryID: "abc123", Name: in.Name}, nil
}

type stubGallery struct {
	services.GalleryService
	galleries map[string]*services.Gallery
}

func (s *stubGallery) Resolve(_ context.Context, id string) (*services.Gallery, error) {
	g, ok := s.galleries[id]
	if !ok {
		return nil, services.ErrGalleryNotFound
	}
	return g, nil
}

func (s *stubGallery) QRCode(_ context.Context, id string) ([]byte, error) {
	if _, ok := s.galleries[id]; !ok {
		return nil, services.ErrGalleryNotFound
	}
	return []byte("\x89PNG"), nil
}

func (s *stubGallery) OpenPhoto(_ context.Context, id, filename string) (io.ReadCloser, *models.Photo, error) {
	if _, ok := s.galleries[id]; !ok {
		return nil, nil, services.ErrGalleryNotFound
	}
	if filename != "a.jpg" {
		return nil, nil, services.ErrPhotoNotFound
	}
	return io.NopCloser(strings.NewReader("jpeg")), &models.Photo{ContentType: "image/jpeg", SizeBytes: 4}, nil
}

type stubAdmin struct {
	services.AdminService
	triggered int
	deleted   []uuid.UUID
}

func (s *stubAdmin) TriggerProcessing(context.Context) (*models.MatchBatch, error) {
	s.triggered++
	return &models.MatchBatch{ID: uuid.New(), Status: models.BatchStatusQueued}, nil
}

func (s *stubAdmin) Stats(context.Context) (*models.DashboardStats, error) {
	return &models.DashboardStats{TotalUsers: 1, TotalImages: 3, ProcessedImages: 3}, nil
}

func (s *stubAdmin) DeleteUser(_ context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return services.ErrUserNotFound
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubAdmin) GetBatch(context.Context, uuid.UUID) (*models.MatchBatch, error) {
	return nil, services.ErrBatchNotFound
}

type stubIngest struct {
	services.IngestService
	files []services.UploadFile
}

func (s *stubIngest) Ingest(_ context.Context, files []services.UploadFile) (*services.IngestResult, error) {
	s.files = files
	res := &services.IngestResult{Photos: []models.Photo{}, Rejected: []services.Rejection{}}
	for _, f := range files {
		if f.Filename == "notes.txt" {
			res.Rejected = append(res.Rejected, services.Rejection{Filename: f.Filename, Reason: "unsupported media type"})
			continue
		}
		res.Photos = append(res.Photos, models.Photo{ID: uuid.New(), Filename: f.Filename})
		res.Stored++
	}
	return res, nil
}

func (s *stubIngest) OpenPhoto(context.Context, uuid.UUID) (io.ReadCloser, *models.Photo, error) {
	return io.NopCloser(strings.NewReader("png")), &models.Photo{ContentType: "image/png", SizeBytes: 3}, nil
}

type stubAuth struct {
	services.AuthService
}

func (stubAuth) Login(_ context.Context, email, password string) (string, *models.AdminUser, error) {
	if password != "admin123" {
		return "", nil, services.ErrInvalidCredentials
	}
	admin := &models.AdminUser{ID: uuid.New(), Email: email}
	token, err := utils.GenerateToken(admin.ID, email, testSecret, time.Hour)
	return token, admin, err
}

type testEnv struct {
	app          *fiber.App
	registration *stubRegistration
	admin        *stubAdmin
	ingest       *stubIngest
}

func newTestEnv(t *testing.T, checks map[string]func(context.Context) error) *testEnv {
	t.Helper()

	cfg := &config.Config{
		App:    config.AppConfig{Name: "Event Gallery"},
		JWT:    config.JWTConfig{Secret: testSecret, Expiry: time.Hour},
		Upload: config.UploadConfig{MaxFiles: 3},
	}
	env := &testEnv{
		registration: &stubRegistration{},
		admin:        &stubAdmin{},
		ingest:       &stubIngest{},
	}
	gallery := &stubGallery{galleries: map[string]*services.Gallery{
		"abc123": {GalleryID: "abc123", UserName: "Ada", Images: []services.GalleryImage{}},
	}}
	if checks == nil {
		checks = map[string]func(context.Context) error{}
	}

	h := handlers.NewHandlers(&handlers.Services{
		RegistrationService: env.registration,
		IngestService:       env.ingest,
		GalleryService:      gallery,
		AdminService:        env.admin,
		AuthService:         stubAuth{},
		HealthChecks:        checks,
	}, cfg)

	env.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	routes.SetupRoutes(env.app, h, cfg, nil)
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	var parsed map[string]interface{}
	_ = json.Unmarshal(body, &parsed)
	return resp, parsed
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateToken(uuid.New(), "admin@event.com", testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister(t *testing.T) {
	image := base64.StdEncoding.EncodeToString([]byte("face-bytes"))

	tests := []struct {
		name       string
		serviceErr error
		imageData  string
		wantStatus int
		wantDetail string
	}{
		{"success with data url", nil, "data:image/jpeg;base64," + image, fiber.StatusOK, ""},
		{"no face", services.ErrNoFaceDetected, image, fiber.StatusBadRequest, "No face detected in image. Please try again with a clear face photo."},
		{"duplicate email", services.ErrEmailAlreadyRegistered, image, fiber.StatusConflict, "Email is already registered"},
		{"extractor down", services.ErrExtractorUnavailable, image, fiber.StatusServiceUnavailable, "Face recognition is temporarily unavailable. Please try again later."},
		{"bad base64", nil, "%%%", fiber.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.registration.err = tt.serviceErr

			resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/register", map[string]string{
				"name":            "Ada",
				"email":           "ada@example.com",
				"phone":           "555-0100",
				"face_image_data": tt.imageData,
			}))

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%v)", resp.StatusCode, tt.wantStatus, body)
			}
			if tt.wantStatus == fiber.StatusOK {
				if body["gallery_id"] != "abc123" || body["name"] != "Ada" || body["success"] != true {
					t.Errorf("unexpected body %v", body)
				}
				if string(env.registration.got.FaceImage) != "face-bytes" {
					t.Errorf("face image = %q", env.registration.got.FaceImage)
				}
				return
			}
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
			if tt.wantDetail != "" && body["detail"] != tt.wantDetail {
				t.Errorf("detail = %v, want %q", body["detail"], tt.wantDetail)
			}
		})
	}
}

func TestRegisterMultipart(t *testing.T) {
	env := newTestEnv(t, nil)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("name", "Ada")
	_ = w.WriteField("email", "ada@example.com")
	_ = w.WriteField("phone", "555-0100")
	part, _ := w.CreateFormFile("face_image", "me.jpg")
	_, _ = part.Write([]byte("face-bytes"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, body := env.do(t, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d (%v)", resp.StatusCode, body)
	}
	if string(env.registration.got.FaceImage) != "face-bytes" || env.registration.got.Email != "ada@example.com" {
		t.Errorf("service got %+v", env.registration.got)
	}
}

func TestGalleryRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name        string
		target      string
		wantStatus  int
		contentType string
	}{
		{"gallery", "/api/gallery/abc123", fiber.StatusOK, "application/json"},
		{"unknown gallery", "/api/gallery/nope", fiber.StatusNotFound, "application/json"},
		{"image", "/api/image/abc123/a.jpg", fiber.StatusOK, "image/jpeg"},
		{"image of another gallery", "/api/image/abc123/b.jpg", fiber.StatusNotFound, "application/json"},
		{"no unauthenticated admin thumbnails", "/api/image/admin/a.jpg", fiber.StatusNotFound, "application/json"},
		{"qrcode", "/api/qrcode/abc123", fiber.StatusOK, "image/png"},
		{"unknown qrcode", "/api/qrcode/nope", fiber.StatusNotFound, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := env.do(t, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("content type = %q, want %q", ct, tt.contentType)
			}
		})
	}

	t.Run("empty gallery lists no images", func(t *testing.T) {
		_, body := env.do(t, httptest.NewRequest(http.MethodGet, "/api/gallery/abc123", nil))
		images, ok := body["images"].([]interface{})
		if !ok || len(images) != 0 {
			t.Errorf("images = %#v, want empty list", body["images"])
		}
	})
}

func TestAdminAuth(t *testing.T) {
	env := newTestEnv(t, nil)
	token := adminToken(t)
	expired, _ := utils.GenerateToken(uuid.New(), "admin@event.com", testSecret, -time.Minute)

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
	}{
		{"no token", "/api/admin/stats", "", fiber.StatusUnauthorized},
		{"bad token", "/api/admin/stats", "Bearer nope", fiber.StatusUnauthorized},
		{"expired token", "/api/admin/stats", "Bearer " + expired, fiber.StatusUnauthorized},
		{"valid token", "/api/admin/stats", "Bearer " + token, fiber.StatusOK},
		{"query token ignored on api routes", "/api/admin/stats?token=" + token, "", fiber.StatusUnauthorized},
		{"query token on image file", "/api/admin/images/" + uuid.NewString() + "/file?token=" + token, "", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, body := env.do(t, req)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (%v)", resp.StatusCode, tt.wantStatus, body)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", map[string]string{
		"email": "admin@event.com", "password": "admin123",
	}))
	if resp.StatusCode != fiber.StatusOK || body["token"] == "" || body["success"] != true {
		t.Fatalf("login: status %d body %v", resp.StatusCode, body)
	}

	resp, body = env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", map[string]string{
		"email": "admin@event.com", "password": "wrong",
	}))
	if resp.StatusCode != fiber.StatusUnauthorized || body["detail"] != "Invalid credentials" {
		t.Errorf("bad login: status %d body %v", resp.StatusCode, body)
	}

	resp, _ = env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", map[string]string{"email": "not-an-email"}))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("invalid body: status %d, want 400", resp.StatusCode)
	}
}

func TestAdminProcess(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/process", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	resp, body := env.do(t, req)

	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if body["message"] != "Processing started in background" || body["status"] != "queued" || body["batch_id"] == "" {
		t.Errorf("unexpected body %v", body)
	}
	if env.admin.triggered != 1 {
		t.Errorf("triggered = %d, want 1", env.admin.triggered)
	}
}

func TestAdminUpload(t *testing.T) {
	upload := func(names ...string) *http.Request {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, name := range names {
			part, _ := w.CreateFormFile("files", name)
			_, _ = part.Write([]byte("data-" + name))
		}
		_ = w.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req
	}

	t.Run("partial rejection", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := upload("a.jpg", "notes.txt")
		req.Header.Set("Authorization", "Bearer "+adminToken(t))

		resp, body := env.do(t, req)
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("status = %d (%v)", resp.StatusCode, body)
		}
		if body["uploaded_count"] != float64(1) {
			t.Errorf("uploaded_count = %v, want 1", body["uploaded_count"])
		}
		if rejected, _ := body["rejected"].([]interface{}); len(rejected) != 1 {
			t.Errorf("rejected = %v, want one entry", body["rejected"])
		}
	})

	t.Run("too many files", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := upload("1.jpg", "2.jpg", "3.jpg", "4.jpg")
		req.Header.Set("Authorization", "Bearer "+adminToken(t))

		resp, _ := env.do(t, req)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
		if env.ingest.files != nil {
			t.Error("ingest should not be called")
		}
	})
}

func TestAdminLookups(t *testing.T) {
	env := newTestEnv(t, nil)
	token := adminToken(t)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{"delete user", http.MethodDelete, "/api/admin/user/" + uuid.NewString(), fiber.StatusOK},
		{"delete missing user", http.MethodDelete, "/api/admin/user/" + uuid.Nil.String(), fiber.StatusNotFound},
		{"delete user bad id", http.MethodDelete, "/api/admin/user/42", fiber.StatusBadRequest},
		{"missing batch", http.MethodGet, "/api/admin/batches/" + uuid.NewString(), fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, body := env.do(t, req)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (%v)", resp.StatusCode, tt.wantStatus, body)
			}
		})
	}
}

func TestDetailedHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]func(context.Context) error
		wantStatus int
		wantHealth string
	}{
		{"all ok", map[string]func(context.Context) error{"database": ok, "redis": ok}, fiber.StatusOK, "healthy"},
		{"redis down", map[string]func(context.Context) error{"database": ok, "redis": down}, fiber.StatusOK, "degraded"},
		{"database down", map[string]func(context.Context) error{"database": down, "redis": ok}, fiber.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.checks)
			resp, body := env.do(t, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))
			if resp.StatusCode != tt.wantStatus || body["status"] != tt.wantHealth {
				t.Errorf("got %d %v, want %d %s", resp.StatusCode, body["status"], tt.wantStatus, tt.wantHealth)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || !bytes.Contains(body, []byte("go_goroutines")) {
		t.Errorf("metrics: status %d", resp.StatusCode)
	}
}
