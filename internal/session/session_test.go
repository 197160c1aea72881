package session

import (
	"context"
	"testing"

	"github.com/vitality-lab/VitaTrack/internal/models"
	"github.com/vitality-lab/VitaTrack/internal/store"
)

// exerciseManager runs the shared Manager contract against any backend.
func exerciseManager(t *testing.T, m Manager) {
	t.Helper()
	ctx := context.Background()

	sess, err := m.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get on empty manager failed: %v", err)
	}
	if sess != nil {
		t.Fatalf("Get on empty manager = %+v, want nil", sess)
	}

	if err := m.Save(ctx, models.Session{
		UserID: 1,
		Flow:   models.FlowProfileSetup,
		Step:   "PROFILE_WEIGHT",
		Data:   map[string]string{},
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sess, err = m.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sess == nil {
		t.Fatal("Get = nil after save")
	}
	if sess.Flow != models.FlowProfileSetup || sess.Step != "PROFILE_WEIGHT" {
		t.Errorf("Get = %+v, want saved flow and step", sess)
	}
	if sess.CreatedAt.IsZero() {
		t.Error("CreatedAt not set on save")
	}
	if sess.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set on save")
	}

	// Save replaces the existing session in place.
	created := sess.CreatedAt
	sess.Step = "PROFILE_HEIGHT"
	sess.Data["weight"] = "70"
	if err := m.Save(ctx, *sess); err != nil {
		t.Fatalf("Save (replace) failed: %v", err)
	}
	sess, err = m.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get after replace failed: %v", err)
	}
	if sess.Step != "PROFILE_HEIGHT" || sess.Data["weight"] != "70" {
		t.Errorf("Get after replace = %+v, want advanced step and data", sess)
	}
	if !sess.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on replace: %v -> %v", created, sess.CreatedAt)
	}

	// Sessions are per user.
	other, err := m.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get other user failed: %v", err)
	}
	if other != nil {
		t.Errorf("Get other user = %+v, want nil", other)
	}

	if err := m.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	sess, err = m.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get after clear failed: %v", err)
	}
	if sess != nil {
		t.Errorf("Get after clear = %+v, want nil", sess)
	}
	// Clearing a missing session is a no-op.
	if err := m.Clear(ctx, 1); err != nil {
		t.Errorf("Clear on missing session failed: %v", err)
	}
}

func TestMemoryManager(t *testing.T) {
	exerciseManager(t, NewMemoryManager())
}

func TestStoreManager(t *testing.T) {
	st := store.NewInMemoryStore()
	defer st.Close()
	exerciseManager(t, NewStoreManager(st))
}
