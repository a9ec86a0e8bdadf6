package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fight-manager-api/packages/auth"
	authModels "fight-manager-api/packages/auth/models"
	authServices "fight-manager-api/packages/auth/services"
	"fight-manager-api/packages/auth/utils"
	"fight-manager-api/packages/core"
	"fight-manager-api/packages/core/models"
	"fight-manager-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&authModels.User{}, &authModels.RefreshToken{}, &models.Fight{}); err != nil {
		t.Fatal(err)
	}
	if _, err := authServices.EnsureAdmin(db, "admin", "ringside"); err != nil {
		t.Fatal(err)
	}

	authModule := auth.NewModule(db, utils.NewTokenManager("test-secret", time.Hour, 24*time.Hour))
	coreModule := core.NewModule(db, nil, services.FightSettings{
		Buffer:             2 * time.Minute,
		MaxDurationMinutes: 60,
		Location:           time.UTC,
	}, authModule.AdminOnly(), authModule)

	r := gin.New()
	authModule.SetupRoutes(r)
	coreModule.SetupRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func signedIn(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	session, _ := NewSession(nil)
	c := New(srv.URL, session, srv.Client())
	if _, err := c.Login(context.Background(), "admin", "ringside"); err != nil {
		t.Fatal(err)
	}
	return c
}

func fight(name string) models.CreateFightRequest {
	return models.CreateFightRequest{
		FighterA: name, FighterAClub: "North", FighterB: name + " II", FighterBClub: "South",
		WeightClass: 67, Duration: 8,
	}
}

func TestLoginStoresSession(t *testing.T) {
	srv := newBackend(t)
	c := signedIn(t, srv)

	state := c.Session().State()
	if state.Token == "" || state.RefreshToken == "" || state.Username != "admin" {
		t.Fatalf("session = %+v", state)
	}
	if !state.ExpiresAt.After(time.Now()) {
		t.Errorf("expires at %v", state.ExpiresAt)
	}

	me, err := c.Me(context.Background())
	if err != nil || me.Role != authModels.RoleAdmin {
		t.Errorf("Me = %+v, %v", me, err)
	}

	if err := c.Logout(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Session().Valid() {
		t.Error("session still valid after logout")
	}
}

func TestWrongPasswordIsAPIError(t *testing.T) {
	srv := newBackend(t)
	session, _ := NewSession(nil)
	c := New(srv.URL, session, srv.Client())

	_, err := c.Login(context.Background(), "admin", "nope")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Message != "Incorrect username or password" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if session.Valid() {
		t.Error("failed login must not sign in")
	}
}

func TestAdminCallsNeedSession(t *testing.T) {
	srv := newBackend(t)
	c := New(srv.URL, nil, srv.Client())

	if _, err := c.Add(context.Background(), fight("Ana")); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("err = %v", err)
	}
	if fights, err := c.Fights(context.Background()); err != nil || len(fights) != 0 {
		t.Errorf("public list = %v, %v", fights, err)
	}
}

func TestFightLifecycleThroughBoard(t *testing.T) {
	srv := newBackend(t)
	c := signedIn(t, srv)
	board := NewBoard(c)
	ctx := context.Background()

	for _, name := range []string{"Ana", "Cid", "Eve"} {
		if err := board.Add(ctx, fight(name)); err != nil {
			t.Fatal(err)
		}
	}
	fights := board.Fights()
	if len(fights) != 3 || fights[0].FighterA != "Ana" {
		t.Fatalf("board = %v", fights)
	}

	if ongoing, err := c.Ongoing(ctx); err != nil || ongoing != nil {
		t.Fatalf("Ongoing before start = %v, %v", ongoing, err)
	}

	if err := board.Start(ctx, fights[0].ID); err != nil {
		t.Fatal(err)
	}
	if st := board.Status(); st.Ongoing == nil || st.Ongoing.ID != fights[0].ID {
		t.Fatalf("status after start = %+v", st)
	}

	err := board.Start(ctx, fights[1].ID)
	if !IsStatus(err, http.StatusConflict) {
		t.Errorf("second start = %v", err)
	}
	if err := board.End(ctx, "missing"); !IsStatus(err, http.StatusNotFound) {
		t.Errorf("unknown fight = %v", err)
	}

	if err := board.End(ctx, fights[0].ID); err != nil {
		t.Fatal(err)
	}
	past, err := c.Past(ctx, 5)
	if err != nil || len(past) != 1 || past[0].ID != fights[0].ID {
		t.Errorf("past = %v, %v", past, err)
	}

	publicBoard, err := c.PublicBoard(ctx)
	if err != nil || publicBoard.Ready == nil || publicBoard.Ready.ID != fights[1].ID {
		t.Errorf("public board = %+v, %v", publicBoard, err)
	}
}

func TestImportAndExport(t *testing.T) {
	srv := newBackend(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	csv := "fighter_a,fighter_a_club,fighter_b,fighter_b_club,weight_class,duration\n" +
		"Ana,North,Bea,South,57,9\n" +
		"Cid,North,,South,63,9\n"
	result, err := c.Import(ctx, "card.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if result.Imported != 1 || result.Skipped != 1 {
		t.Errorf("result = %+v", result)
	}

	var buf bytes.Buffer
	if err := c.Export(ctx, &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Error("export is not a zip container")
	}

	msg, err := c.SetStartTime(ctx, "19:30")
	if err != nil || !strings.Contains(msg, "1 fights") {
		t.Errorf("SetStartTime = %q, %v", msg, err)
	}
	if _, err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
}
