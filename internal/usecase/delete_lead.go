package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/overseaspath/crm-backend/internal/entity"
)

type DeleteLeadUseCase struct {
	Repo LeadRepositoryInterface
}

func NewDeleteLeadUseCase(repo LeadRepositoryInterface) *DeleteLeadUseCase {
	return &DeleteLeadUseCase{Repo: repo}
}

// Execute removes a lead. Admin cleanup, or the owning staff member tidying
// their own pipeline. Deletion never cascades: a Client keeps its lead_id
// as a historical pointer even after the Lead row is gone.
func (uc *DeleteLeadUseCase) Execute(ctx context.Context, id int, requester entity.User) error {

	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return ErrNotFound(fmt.Sprintf("lead %d not found", id))
		}
		return &TechnicalError{Code: CodeDatabase, Message: err.Error()}
	}

	if !requester.IsAdmin() && !lead.IsOwnedBy(requester.ID) {
		return ErrForbidden(fmt.Sprintf("role %s cannot delete lead %d", requester.Role, id))
	}

	if err := uc.Repo.Delete(ctx, id); err != nil {
		return &TechnicalError{Code: CodeDatabase, Message: "failed to delete lead: " + err.Error()}
	}

	return nil
}
