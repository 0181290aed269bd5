package controllers

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"accountability-api/config"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// playbackStep scripts one expected SELECT. Any statement that does not
// match the next step in order fails the request, so a test's script also
// asserts which queries do NOT run.
type playbackStep struct {
	pattern *regexp.Regexp
	columns []string
	rows    [][]driver.Value
}

type playbackDB struct {
	steps []*playbackStep
}

func (db *playbackDB) next(query string) (*playbackStep, error) {
	if len(db.steps) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	step := db.steps[0]
	if !step.pattern.MatchString(query) {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	db.steps = db.steps[1:]
	return step, nil
}

type playbackDriver struct {
	db *playbackDB
}

func (d *playbackDriver) Open(string) (driver.Conn, error) {
	return &playbackConn{db: d.db}, nil
}

type playbackConn struct {
	db *playbackDB
}

func (c *playbackConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *playbackConn) Close() error { return nil }

func (c *playbackConn) Begin() (driver.Tx, error) {
	return playbackTx{}, nil
}

type playbackTx struct{}

func (playbackTx) Commit() error   { return nil }
func (playbackTx) Rollback() error { return nil }

func (c *playbackConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	step, err := c.db.next(query)
	if err != nil {
		return nil, err
	}
	return &playbackRows{columns: step.columns, rows: step.rows}, nil
}

func (c *playbackConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return nil, fmt.Errorf("unexpected exec: %s", query)
}

type playbackRows struct {
	columns []string
	rows    [][]driver.Value
	idx     int
}

func (r *playbackRows) Columns() []string { return r.columns }

func (r *playbackRows) Close() error { return nil }

func (r *playbackRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	for i := range dest {
		dest[i] = nil
	}
	for i := range row {
		dest[i] = row[i]
	}
	r.idx++
	return nil
}

var playbackDriverSeq int64

func usePlaybackDB(t *testing.T, steps []*playbackStep) *playbackDB {
	t.Helper()
	state := &playbackDB{steps: steps}
	driverName := fmt.Sprintf("playback_%d_%d", time.Now().UnixNano(), atomic.AddInt64(&playbackDriverSeq, 1))
	sql.Register(driverName, &playbackDriver{db: state})

	sqlDB, err := sql.Open(driverName, "")
	if err != nil {
		t.Fatalf("failed to open sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to create gorm db: %v", err)
	}

	previous := config.DB
	config.DB = gormDB
	t.Cleanup(func() {
		config.DB = previous
		_ = sqlDB.Close()
	})
	return state
}

// A moderator who already holds an assignment gets it back from the claim
// endpoint unconditionally. The script contains no gate queries, so any
// gate check before the re-entry lookup fails the request.
func TestClaimNextReturnsHeldItemWithoutGateCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	state := usePlaybackDB(t, []*playbackStep{
		{
			pattern: regexp.MustCompile(`SELECT 'evidence' AS kind.*assigned_moderator_id = \?.*ORDER BY created_at ASC LIMIT 1`),
			columns: []string{"kind", "id", "created_at"},
			rows:    [][]driver.Value{{"evidence", int64(7), time.Now()}},
		},
		{
			pattern: regexp.MustCompile("SELECT \\* FROM `evidence` WHERE evidence_id = \\?"),
			columns: []string{"evidence_id", "company_id", "title", "status"},
			rows:    [][]driver.Value{{int64(7), int64(3), "Illegal dumping records", "pending"}},
		},
		{
			pattern: regexp.MustCompile("SELECT \\* FROM `companies` WHERE `companies`\\.`company_id` = \\?"),
			columns: []string{"company_id", "name", "slug"},
			rows:    [][]driver.Value{{int64(3), "Acme Corp", "acme-corp"}},
		},
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/moderation/queue/claim", nil)
	c.Set("userID", 2)

	ClaimNext(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success    bool `json:"success"`
		Assignment *struct {
			Kind string `json:"kind"`
			ID   int    `json:"id"`
		} `json:"assignment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Success || resp.Assignment == nil || resp.Assignment.Kind != "evidence" || resp.Assignment.ID != 7 {
		t.Fatalf("expected held evidence assignment 7, got %s", w.Body.String())
	}

	if len(state.steps) != 0 {
		t.Fatalf("unmet expectations: %d", len(state.steps))
	}
}
