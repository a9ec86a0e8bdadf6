package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fight-manager-api/packages/core/models"
	"fight-manager-api/packages/core/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(&models.Fight{}); err != nil {
		t.Fatal(err)
	}

	settings := services.FightSettings{Buffer: 2 * time.Minute, MaxDurationMinutes: 60, Location: time.UTC}
	fightService := services.NewFightService(db, nil, settings)
	fightService.SetClock(func() time.Time { return time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC) })
	fh := NewFightHandler(fightService)
	ih := NewImportHandler(services.NewImportService(fightService), fightService, time.UTC)
	ph := NewPublicHandler(fightService)

	r := gin.New()
	r.GET("/fights", fh.GetFights)
	r.GET("/fights/status", fh.GetStatus)
	r.GET("/fights/next", fh.GetNext)
	r.GET("/fights/export", ih.ExportFights)
	r.POST("/fights/add", fh.AddFight)
	r.POST("/fights/import", ih.ImportFights)
	r.POST("/fights/start-time", fh.SetStartTime)
	r.PATCH("/fights/:id/number/:number", fh.ChangeNumber)
	r.POST("/fights/:id/start", fh.StartFight)
	r.POST("/fights/:id/end", fh.EndFight)
	r.DELETE("/fights/:id", fh.DeleteFight)
	r.GET("/public/next", ph.GetNext)
	r.GET("/public/past", ph.GetPast)
	return r
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func addFight(t *testing.T, r *gin.Engine, name string) models.Fight {
	t.Helper()
	w := do(r, http.MethodPost, "/fights/add", models.CreateFightRequest{
		FighterA: name, FighterAClub: "Club A", FighterB: name + " opponent", FighterBClub: "Club B",
		WeightClass: 70, Duration: 10,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("add %s: status %d, body %s", name, w.Code, w.Body.String())
	}
	var f models.Fight
	if err := json.Unmarshal(w.Body.Bytes(), &f); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestAddFightValidation(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, "/fights/add", map[string]interface{}{"fighter_a": "only one"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields: status = %d", w.Code)
	}

	w = do(r, http.MethodPost, "/fights/add", models.CreateFightRequest{
		FighterA: "A", FighterAClub: "A", FighterB: "B", FighterBClub: "B", WeightClass: 70, Duration: 90,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duration over max: status = %d", w.Code)
	}
}

func TestLifecycleStatusCodes(t *testing.T) {
	r := setupRouter(t)
	first := addFight(t, r, "first")
	second := addFight(t, r, "second")

	if w := do(r, http.MethodPost, "/fights/missing/start", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown fight: status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/fights/"+first.ID+"/end", nil); w.Code != http.StatusBadRequest {
		t.Errorf("end before start: status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/fights/"+first.ID+"/start", nil); w.Code != http.StatusOK {
		t.Fatalf("start: status = %d, body %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodPost, "/fights/"+first.ID+"/start", nil); w.Code != http.StatusBadRequest {
		t.Errorf("start twice: status = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/fights/"+second.ID+"/start", nil); w.Code != http.StatusConflict {
		t.Errorf("second start: status = %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/fights/"+second.ID, nil); w.Code != http.StatusConflict {
		t.Errorf("delete ready fight: status = %d", w.Code)
	}

	w := do(r, http.MethodGet, "/fights/status", nil)
	var board models.Board
	if err := json.Unmarshal(w.Body.Bytes(), &board); err != nil {
		t.Fatal(err)
	}
	if board.Ongoing == nil || board.Ongoing.ID != first.ID || board.Ready == nil || board.Ready.ID != second.ID {
		t.Errorf("board = %+v", board)
	}
}

func TestChangeNumberReturnsCard(t *testing.T) {
	r := setupRouter(t)
	var ids []string
	for _, name := range []string{"a", "b", "c", "d"} {
		ids = append(ids, addFight(t, r, name).ID)
	}

	w := do(r, http.MethodPatch, "/fights/"+ids[3]+"/number/2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	var card []models.Fight
	if err := json.Unmarshal(w.Body.Bytes(), &card); err != nil {
		t.Fatal(err)
	}
	if len(card) != 4 || card[1].ID != ids[3] || card[2].ID != ids[1] {
		t.Errorf("card order = %v", card)
	}

	if w := do(r, http.MethodPatch, "/fights/"+ids[3]+"/number/x", nil); w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric: status = %d", w.Code)
	}
	if w := do(r, http.MethodPatch, "/fights/"+ids[0]+"/number/3", nil); w.Code != http.StatusConflict {
		t.Errorf("ready fight: status = %d", w.Code)
	}
}

func TestSetStartTimeEndpoint(t *testing.T) {
	r := setupRouter(t)
	addFight(t, r, "a")

	w := do(r, http.MethodPost, "/fights/start-time", models.StartTimeRequest{StartTime: "19:15"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "1 fights") {
		t.Errorf("status %d, body %s", w.Code, w.Body.String())
	}
	w = do(r, http.MethodPost, "/fights/start-time", models.StartTimeRequest{StartTime: "7pm"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad time: status = %d", w.Code)
	}
}

func uploadCSV(t *testing.T, r *gin.Engine, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/fights/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestImportAndExport(t *testing.T) {
	r := setupRouter(t)

	if w := uploadCSV(t, r, "card.txt", "x"); w.Code != http.StatusBadRequest {
		t.Errorf("non-csv: status = %d", w.Code)
	}

	csv := "fighter_a,fighter_a_club,fighter_b,fighter_b_club,weight_class,duration\n" +
		"Ana,North,Bea,South,57,9\n" +
		"Cid,North,Dan,South,63,9\n"
	w := uploadCSV(t, r, "card.csv", csv)
	if w.Code != http.StatusOK {
		t.Fatalf("import: status %d, body %s", w.Code, w.Body.String())
	}
	var result models.ImportResult
	json.Unmarshal(w.Body.Bytes(), &result)
	if result.Imported != 2 {
		t.Errorf("result = %+v", result)
	}

	w = do(r, http.MethodGet, "/fights/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("export is not a workbook: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Schedule", "E3"); v != "Cid" {
		t.Errorf("E3 = %q, want Cid", v)
	}
}

func TestPublicViews(t *testing.T) {
	r := setupRouter(t)
	first := addFight(t, r, "first")
	addFight(t, r, "second")
	addFight(t, r, "third")

	do(r, http.MethodPost, "/fights/"+first.ID+"/start", nil)
	do(r, http.MethodPost, "/fights/"+first.ID+"/end", nil)

	var next []models.Fight
	w := do(r, http.MethodGet, "/public/next?limit=1", nil)
	json.Unmarshal(w.Body.Bytes(), &next)
	if len(next) != 1 || next[0].FighterA != "second" {
		t.Errorf("next = %v", next)
	}

	var past []models.Fight
	w = do(r, http.MethodGet, "/public/past", nil)
	json.Unmarshal(w.Body.Bytes(), &past)
	if len(past) != 1 || past[0].ID != first.ID {
		t.Errorf("past = %v", past)
	}

	if w := do(r, http.MethodGet, "/public/next?limit=0", nil); w.Code != http.StatusBadRequest {
		t.Errorf("limit=0: status = %d", w.Code)
	}
}
