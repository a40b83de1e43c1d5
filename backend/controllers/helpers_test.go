package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"courseplan/backend/config"
	"courseplan/backend/models"
	"courseplan/backend/routes"
	"courseplan/backend/storage"
	"courseplan/backend/utils"
)

var dbCounter int64

type testEnv struct {
	App   *fiber.App
	DB    *gorm.DB
	Cfg   *config.Config
	Store *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, utils.Migrate(db))
	require.NoError(t, utils.EnsurePrimaryAdmin(db, "admin-password"))

	cfg := &config.Config{
		JWTSecret: "testsecret",
		UploadDir: t.TempDir(),
	}

	store, err := storage.New(cfg.UploadDir)
	require.NoError(t, err)

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, store)

	return &testEnv{App: app, DB: db, Cfg: cfg, Store: store}
}

func (e *testEnv) createUser(t *testing.T, username, password string, isAdmin bool, expire *time.Time) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		ExpireDate:   expire,
	}
	require.NoError(t, e.DB.Create(&user).Error)
	return user
}

func (e *testEnv) token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(&user, e.Cfg)
	require.NoError(t, err)
	return token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	var admin models.User
	require.NoError(t, e.DB.Where("username = ?", models.PrimaryAdminUsername).First(&admin).Error)
	return e.token(t, admin)
}

// doJSON sends a JSON request through the in-process app.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// doForm sends an urlencoded form request through the in-process app.
func (e *testEnv) doForm(t *testing.T, method, path, token, form string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// seedCatalog creates a course with one topic for catalog tests.
func (e *testEnv) seedCatalog(t *testing.T, courseName, topicName string) (models.Course, models.Topic) {
	t.Helper()
	course := models.Course{Name: courseName}
	require.NoError(t, e.DB.Create(&course).Error)
	topic := models.Topic{Name: topicName, CourseID: course.ID}
	require.NoError(t, e.DB.Create(&topic).Error)
	return course, topic
}

func (e *testEnv) seedSubTopic(t *testing.T, topic models.Topic, name string) models.SubTopic {
	t.Helper()
	subTopic := models.SubTopic{Name: name, TopicID: topic.ID}
	require.NoError(t, e.DB.Create(&subTopic).Error)
	return subTopic
}
