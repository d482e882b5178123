package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/overseaspath/crm-backend/internal/entity"
)

type DeleteClientUseCase struct {
	Repo ClientRepositoryInterface
}

func NewDeleteClientUseCase(repo ClientRepositoryInterface) *DeleteClientUseCase {
	return &DeleteClientUseCase{Repo: repo}
}

// Clients are deleted by admins only.
func (uc *DeleteClientUseCase) Execute(ctx context.Context, id int, requester entity.User) error {
	if !requester.IsAdmin() {
		return ErrForbidden(fmt.Sprintf("role %s cannot delete clients", requester.Role))
	}

	if _, err := uc.Repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrNotFound(fmt.Sprintf("client %d not found", id))
		}
		return &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	if err := uc.Repo.Delete(ctx, id); err != nil {
		return &TechnicalError{Code: CodeDatabase, Message: "failed to delete client: " + err.Error()}
	}

	return nil
}
