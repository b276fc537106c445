package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"speedgarage/internal/config"
	"speedgarage/internal/models"
	"speedgarage/internal/repository"
	"speedgarage/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "Str0ng!Passw0rd"

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret-that-is-long-enough-for-hmac",
		Port:        "0",
		Env:         "test",
		PageSize:    5,
		MaxPageSize: 50,
	}
}

// setupTestServer builds a Server over an in-memory database with the full
// repository and service stack wired in.
func setupTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Car{},
		&models.CarImage{},
		&models.Review{},
		&models.ReviewLike{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	carRepo := repository.NewCarRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	imageRepo := repository.NewImageRepository(db)

	s := &Server{
		config:        testConfig(),
		db:            db,
		userRepo:      userRepo,
		carRepo:       carRepo,
		reviewRepo:    reviewRepo,
		imageRepo:     imageRepo,
		carService:    service.NewCarService(carRepo),
		reviewService: service.NewReviewService(reviewRepo, carRepo),
	}
	return s, db
}

// newTestApp mounts the API routes without the metrics middleware, which
// registers global collectors and cannot be set up once per test.
func newTestApp(s *Server) *fiber.App {
	app := fiber.New()
	s.registerRoutes(app)
	return app
}

func createServerTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, Email: username + "@example.com", Password: string(hash)}
	require.NoError(t, db.Create(user).Error)
	return user
}

func accessTokenFor(t *testing.T, s *Server, userID uint) string {
	t.Helper()
	token, err := s.generateToken(userID, "access", time.Hour)
	require.NoError(t, err)
	return token
}

func jsonRequest(method, target string, body any) *http.Request {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
