// Package testutil builds a complete application backed by an in-memory
// SQLite database for handler tests
package testutil

import (
	"bitwise74/conference-api/app"
	"bitwise74/conference-api/db"
	"bitwise74/conference-api/internal"
	"bitwise74/conference-api/internal/membership"
	"bitwise74/conference-api/internal/model"
	"bitwise74/conference-api/internal/service"
	"bitwise74/conference-api/pkg/security"
	"bitwise74/conference-api/pkg/util"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const Password = "CorrectHorse42!"

// Origin is the frontend origin the test engine allows
const Origin = "http://conf.test"

// PDF is the smallest body mimetype recognises as a PDF
var PDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

// RecordingMailer keeps every mail instead of sending it
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []service.Mail
	// Fail makes Send return an error
	Fail bool
}

func (m *RecordingMailer) Send(_ context.Context, mail service.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return fmt.Errorf("smtp unavailable")
	}

	m.Sent = append(m.Sent, mail)
	return nil
}

func (m *RecordingMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Sent)
}

type Env struct {
	DB      *gorm.DB
	Deps    *internal.Deps
	Engine  *gin.Engine
	Mailer  *RecordingMailer
	Storage *service.MemoryStorage
	Members membership.StaticDirectory
}

// NewDB opens a private in-memory database with every table migrated
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", util.RandStr(12))

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))

	t.Cleanup(func() { sqlDB.Close() })
	return conn
}

// New returns an environment with a router wired like production, minus
// network services
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := NewDB(t)
	mailer := &RecordingMailer{}
	storage := service.NewMemoryStorage("http://files.test")
	members := membership.StaticDirectory{}

	principals := ttlcache.NewCache()
	principals.SetTTL(time.Minute)
	t.Cleanup(func() { principals.Close() })

	d := &internal.Deps{
		DB:      conn,
		Argon:   &security.ArgonHash{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		Storage: storage,
		Outbox:  service.NewOutbox(conn, mailer, service.OutboxOpts{Workers: 2, MaxAttempts: 3}),
		Members: members,
		Fees: membership.FeeSchedule{
			Default:  300,
			ByType:   map[string]float64{"Student": 100, "IEEE": 200},
			Currency: "USD",
		},
		Principals: principals,
		Settings: internal.Settings{
			JWTSecret:     []byte("test-secret"),
			JWTTTL:        time.Hour,
			Links:         service.Links{Domain: "conf.test"},
			MaxUploadSize: 2 << 20,
			DeadlineDays:  3,
			Categories:    []string{"Machine Learning", "Networks", "Computer Vision"},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	engine := app.NewEngine(d, app.EngineOpts{
		Context:     ctx,
		CORSOrigins: []string{Origin},
	})

	return &Env{
		DB:      conn,
		Deps:    d,
		Engine:  engine,
		Mailer:  mailer,
		Storage: storage,
		Members: members,
	}
}

// SeedUser creates a verified user with Password
func (e *Env) SeedUser(t *testing.T, role model.Role, email string) *model.User {
	t.Helper()

	hash, err := e.Deps.Argon.GenerateFromPassword(Password)
	require.NoError(t, err)

	u := &model.User{
		ID:           util.RandStr(16),
		Email:        email,
		Username:     strings.Split(email, "@")[0],
		PasswordHash: hash,
		Role:         role,
		Verified:     true,
	}
	require.NoError(t, e.DB.Create(u).Error)

	return u
}

func (e *Env) Token(t *testing.T, u *model.User) string {
	t.Helper()

	tok, err := security.IssueToken(e.Deps.Settings.JWTSecret, u.ID, string(u.Role), time.Hour)
	require.NoError(t, err)

	return tok
}

// Do sends body as JSON. An empty token sends no Authorization header.
func (e *Env) Do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Engine.ServeHTTP(w, req)

	return w
}

// Multipart sends fields and, when content is not nil, a file named
// upload.bin under "file"
func (e *Env) Multipart(t *testing.T, method, path, token string, fields map[string]string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if content != nil {
		fw, err := mw.CreateFormFile("file", "upload.bin")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Engine.ServeHTTP(w, req)

	return w
}

// Envelope mirrors response.Envelope with the data left undecoded
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Decode reads the envelope and, if out is not nil, its data
func Decode(t *testing.T, w *httptest.ResponseRecorder, out any) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())

	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out), w.Body.String())
	}

	return env
}

// Queued returns the mails waiting in the outbox
func (e *Env) Queued(t *testing.T) []model.MailPayload {
	t.Helper()

	var rows []model.OutboxMessage
	require.NoError(t, e.DB.Order("created_at ASC").Find(&rows).Error)

	out := make([]model.MailPayload, len(rows))
	for i, r := range rows {
		out[i] = r.Payload.Data()
	}

	return out
}

// QueuedTo filters Queued by recipient
func (e *Env) QueuedTo(t *testing.T, to string) []model.MailPayload {
	t.Helper()

	var out []model.MailPayload
	for _, m := range e.Queued(t) {
		if m.To == to {
			out = append(out, m)
		}
	}

	return out
}

// Status is a shortcut for asserting on the recorder code with the body as context
func Status(t *testing.T, want int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
