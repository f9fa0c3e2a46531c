package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/aurastore/storefront/api"
	"github.com/aurastore/storefront/api/background"
	"github.com/aurastore/storefront/config"
	"github.com/aurastore/storefront/core/cart"
	"github.com/aurastore/storefront/core/checkout"
	"github.com/aurastore/storefront/core/claims"
	"github.com/aurastore/storefront/core/order"
	"github.com/aurastore/storefront/core/settings"
	"github.com/aurastore/storefront/core/user"
	"github.com/aurastore/storefront/database"
	"github.com/aurastore/storefront/rate"
	"github.com/aurastore/storefront/validate"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail = "admin@aurastore.test"
	adminPass  = "super-secret-pass"
)

// TestEnv runs the whole API against a throwaway Postgres container.
type TestEnv struct {
	DB     *sqlx.DB
	URL    string
	client *http.Client
}

func NewTestEnv(t *testing.T, dbName string) *TestEnv {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not available: %v", err)
	}

	resource, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=" + dbName,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("purging postgres container: %v", err)
		}
	})

	dbCfg := config.DB{
		User:       "postgres",
		Password:   "postgres",
		Host:       "localhost:" + resource.GetPort("5432/tcp"),
		Name:       dbName,
		DisableTLS: true,
	}

	var db *sqlx.DB
	pool.MaxWait = 2 * time.Minute
	err = pool.Retry(func() error {
		var err error
		db, err = database.Open(dbCfg)
		if err != nil {
			return err
		}
		return database.StatusCheck(context.Background(), db)
	})
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	session := scs.New()
	session.Lifetime = time.Hour

	carts := cart.NewStore(time.Hour)

	identity := func(ctx context.Context) (string, bool) {
		clm, err := claims.Get(ctx)
		if err != nil {
			return "", false
		}
		return clm.UserID, true
	}

	mux := api.APIMux(api.APIConfig{
		Log:             logger,
		DB:              db,
		Session:         session,
		Carts:           carts,
		Checkout:        checkout.New(carts, order.Writer{DB: db}, identity),
		CheckoutLimiter: rate.NewLimiter(100, 100, rate.Every(time.Millisecond)),
		Background:      background.New(logger),
		SettingsCache: settings.NewCache(func(ctx context.Context) ([]settings.Setting, error) {
			return settings.List(ctx, db)
		}, time.Millisecond),
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("building cookie jar: %v", err)
	}

	te := &TestEnv{
		DB:     db,
		URL:    server.URL,
		client: &http.Client{Jar: jar},
	}

	te.seedAdmin(t)
	return te
}

func (te *TestEnv) Client() *http.Client { return te.client }

func (te *TestEnv) seedAdmin(t *testing.T) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPass), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing admin password: %v", err)
	}

	ctx := context.Background()
	now := time.Now().UTC()
	usr := user.User{
		ID:           validate.GenerateID(),
		Email:        adminEmail,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Create(ctx, te.DB, usr); err != nil {
		t.Fatalf("seeding admin user: %v", err)
	}

	prf := user.Profile{
		ID:        validate.GenerateID(),
		UserID:    usr.ID,
		FullName:  "Admin",
		CreatedAt: now,
	}
	if err := user.CreateProfile(ctx, te.DB, prf); err != nil {
		t.Fatalf("seeding admin profile: %v", err)
	}

	if err := user.SetRole(ctx, te.DB, usr.ID, claims.RoleAdmin); err != nil {
		t.Fatalf("seeding admin role: %v", err)
	}
}

func (te *TestEnv) Login(t *testing.T, email, pass string) {
	t.Helper()

	body := map[string]string{"email": email, "password": pass}
	w := te.do(t, http.MethodPost, "/auth/login", body, nil)
	if w.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %s", w.Status)
	}
	w.Body.Close()
}

func (te *TestEnv) Logout(t *testing.T) {
	t.Helper()

	w := te.do(t, http.MethodPost, "/auth/logout", nil, nil)
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("logout failed with status %s", w.Status)
	}
	w.Body.Close()
}

// do issues a request against the test server, decoding a JSON response
// into out when it is non-nil. The caller owns nothing: bodies are closed
// here.
func (te *TestEnv) do(t *testing.T, method, path string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	r, err := http.NewRequest(method, te.URL+path, rd)
	if err != nil {
		t.Fatalf("building request %s %s: %v", method, path, err)
	}
	r.Header.Set("Content-Type", "application/json")

	w, err := te.client.Do(r)
	if err != nil {
		t.Fatalf("issuing request %s %s: %v", method, path, err)
	}

	if out != nil {
		defer w.Body.Close()
		if err := json.NewDecoder(w.Body).Decode(out); err != nil {
			t.Fatalf("decoding response of %s %s: %v", method, path, err)
		}
	}

	return w
}

func (te *TestEnv) expect(t *testing.T, method, path string, body interface{}, status int, out interface{}) {
	t.Helper()

	w := te.do(t, method, path, body, out)
	if out == nil {
		w.Body.Close()
	}
	if w.StatusCode != status {
		t.Fatalf("%s %s: expected status %d, got %s", method, path, status, w.Status)
	}
}
