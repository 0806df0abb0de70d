package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/CodePeacock/scraper/models"
)

func TestInsertBatchPlaceholders(t *testing.T) {
	run := &models.RunReport{RunID: "11111111-1111-1111-1111-111111111111", Locality: "pune"}
	batch := []models.Listing{
		{Owner: "a", Price: "1", PropertyName: "x"},
		{Owner: "b", Price: "2", PropertyName: "y"},
	}

	query, args := insertBatch(run, batch)

	if !strings.Contains(query, "($1,$2,$3,$4,$5),($6,$7,$8,$9,$10)") {
		t.Errorf("unexpected placeholders in %s", query)
	}
	if len(args) != 10 {
		t.Fatalf("args: got %d, want 10", len(args))
	}
	if args[0] != run.RunID || args[1] != "pune" || args[7] != "2" {
		t.Errorf("args out of order: %v", args)
	}
}

// recordingDriver is a database/sql driver that counts statements and
// transaction outcomes. Exec fails once failOn statements have run.
type recordingDriver struct {
	mu        sync.Mutex
	execs     int
	failOn    int
	commits   int
	rollbacks int
}

func (d *recordingDriver) Open(string) (driver.Conn, error) { return &recordingConn{d: d}, nil }

type recordingConn struct{ d *recordingDriver }

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}
func (c *recordingConn) Close() error              { return nil }
func (c *recordingConn) Begin() (driver.Tx, error) { return &recordingTx{d: c.d}, nil }

func (c *recordingConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.execs++
	if c.d.failOn > 0 && c.d.execs >= c.d.failOn {
		return nil, errors.New("unique violation")
	}
	return driver.RowsAffected(1), nil
}

type recordingTx struct{ d *recordingDriver }

func (t *recordingTx) Commit() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.commits++
	return nil
}

func (t *recordingTx) Rollback() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.rollbacks++
	return nil
}

var driverSeq atomic.Int64

func openRecording(t *testing.T, failOn int) (*PostgresWriter, *recordingDriver) {
	t.Helper()
	d := &recordingDriver{failOn: failOn}
	name := fmt.Sprintf("recording-%d", driverSeq.Add(1))
	sql.Register(name, d)
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return &PostgresWriter{db: db}, d
}

func runWith(n int) *models.RunReport {
	run := &models.RunReport{RunID: "11111111-1111-1111-1111-111111111111", Locality: "pune"}
	for i := 0; i < n; i++ {
		run.Listings = append(run.Listings, models.Listing{Owner: "o", Price: "p", PropertyName: fmt.Sprint(i)})
	}
	return run
}

func TestPostgresWriteCommitsAllBatches(t *testing.T) {
	pw, d := openRecording(t, 0)
	if err := pw.Write(context.Background(), runWith(120)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if d.execs != 3 || d.commits != 1 || d.rollbacks != 0 {
		t.Errorf("execs=%d commits=%d rollbacks=%d, want 3/1/0", d.execs, d.commits, d.rollbacks)
	}
}

func TestPostgresWriteRollsBackOnFailedBatch(t *testing.T) {
	pw, d := openRecording(t, 2)
	err := pw.Write(context.Background(), runWith(120))
	if err == nil || !strings.Contains(err.Error(), "50-99") {
		t.Fatalf("expected the second batch to fail, got %v", err)
	}
	if d.execs != 2 {
		t.Errorf("later batches should not run after a failure: execs=%d", d.execs)
	}
	if d.commits != 0 || d.rollbacks != 1 {
		t.Errorf("commits=%d rollbacks=%d, want 0/1", d.commits, d.rollbacks)
	}
}

func TestPostgresWriteEmptyRunSkipsDB(t *testing.T) {
	pw, d := openRecording(t, 0)
	if err := pw.Write(context.Background(), runWith(0)); err != nil {
		t.Fatal(err)
	}
	if d.execs != 0 || d.commits != 0 {
		t.Errorf("empty run touched the database: execs=%d commits=%d", d.execs, d.commits)
	}
}
