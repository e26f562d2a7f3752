package usecase_test

import (
	"context"
	"testing"

	sessionadapter "hairly/internal/modules/session/adapter/out"
	"hairly/internal/modules/session/service"
	"hairly/internal/modules/session/usecase"
)

func TestShowAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := service.NewSessionStore(ctx, sessionadapter.NewMemoryKeyValueStore(), nil)
	uc := usecase.NewInteractor(store)

	out, err := uc.Show(ctx)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if out.Present {
		t.Fatalf("expected no session, got %+v", out)
	}

	store.Set(ctx, "s1")
	out, err = uc.Show(ctx)
	if err != nil || out.SessionID != "s1" || !out.Present {
		t.Fatalf("expected s1, got %+v (%v)", out, err)
	}

	out, err = uc.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if out.Present || out.SessionID != "" {
		t.Fatalf("expected cleared output, got %+v", out)
	}
}
