package in

import (
	"context"

	sessiondto "hairly/internal/modules/session/dto"
	sessionin "hairly/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Show(ctx)
}

func (h CLIHandler) Clear(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Clear(ctx)
}
