package usecase

import (
	"context"

	sessiondto "hairly/internal/modules/session/dto"
	sessionin "hairly/internal/modules/session/port/in"
	"hairly/internal/modules/session/service"
)

type Interactor struct {
	store *service.SessionStore
}

func NewInteractor(store *service.SessionStore) sessionin.Usecase {
	return &Interactor{store: store}
}

func (i *Interactor) Show(_ context.Context) (sessiondto.SessionOutput, error) {
	return toOutput(i.store), nil
}

func (i *Interactor) Clear(ctx context.Context) (sessiondto.SessionOutput, error) {
	i.store.Clear(ctx)
	return toOutput(i.store), nil
}

func toOutput(store *service.SessionStore) sessiondto.SessionOutput {
	snap := store.Snapshot()
	return sessiondto.SessionOutput{SessionID: snap.SessionID, Present: snap.Present, Degraded: snap.Degraded}
}
