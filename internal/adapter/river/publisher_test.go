package river_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"

	_ "modernc.org/sqlite"

	riveradapter "github.com/neomorfeo/contractiq/internal/adapter/river"
	"github.com/neomorfeo/contractiq/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

func setupClient(t *testing.T, db *sql.DB) *riveradapter.Client {
	t.Helper()

	client, err := riveradapter.Setup(context.Background(), db)
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	return client
}

func startClient(t *testing.T, client *riveradapter.Client) {
	t.Helper()

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})
}

func TestPublisher_Publish_EnqueuesJob(t *testing.T) {
	db := setupTestDB(t)
	client := setupClient(t, db)
	ctx := context.Background()

	// Subscribe to job completions before starting so we don't miss events.
	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	defer subscribeCancel()

	startClient(t, client)

	pub := riveradapter.NewPublisher(client)
	record := domain.TransitionRecord{
		EntityKind: domain.KindContract,
		EntityID:   "c-1",
		Tenant:     "acme",
		Event:      domain.EventSign,
		Phase:      domain.PhaseSigned,
		Status:     "signed",
	}

	if err := pub.Publish(ctx, record); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Wait for the worker to process the job.
	select {
	case event := <-subscribeChan:
		if event.Job.Kind != "transition.recorded" {
			t.Errorf("job kind = %q, want %q", event.Job.Kind, "transition.recorded")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}

func TestPublisher_Publish_PreservesTransitionSnapshot(t *testing.T) {
	db := setupTestDB(t)
	client := setupClient(t, db)
	ctx := context.Background()

	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	defer subscribeCancel()

	startClient(t, client)

	pub := riveradapter.NewPublisher(client)
	record := domain.TransitionRecord{
		EntityKind: domain.KindTemplate,
		EntityID:   "t-42",
		Tenant:     "globex",
		Event:      domain.EventTerminate,
		Phase:      domain.PhaseTerminated,
		Status:     "cancelled",
		ActorID:    "user-7",
	}

	if err := pub.Publish(ctx, record); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case event := <-subscribeChan:
		// Verify the job carried the right args by checking the encoded JSON.
		args := event.Job.EncodedArgs
		if args == nil {
			t.Fatal("expected encoded args, got nil")
		}
		argsStr := string(args)
		wants := []string{
			`"entity_kind":"template"`,
			`"entity_id":"t-42"`,
			`"tenant_id":"globex"`,
			`"event":"terminate"`,
			`"status":"cancelled"`,
			`"actor_id":"user-7"`,
		}
		for _, want := range wants {
			if !strings.Contains(argsStr, want) {
				t.Errorf("encoded args missing %s, got: %s", want, argsStr)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}
}
