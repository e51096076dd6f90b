package store

import (
	"context"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
)

func TestSecretsStableAcrossCalls(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}

	second, _ := GetJWTSecret(ctx, database)
	if first != second {
		t.Error("expected the same secret on repeated calls")
	}

	upload, _ := GetUploadSecret(ctx, database)
	if upload == first {
		t.Error("expected upload secret to differ from jwt secret")
	}
}
