package relationship

import (
	"context"

	"chamber/internal/conflict"
	"chamber/internal/firm"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
)

// EngagementSource adapts the relationship store into the view conflict
// screening needs: active representations joined with client identity.
type EngagementSource struct {
	store   Store
	clients firm.ClientStore
}

func NewEngagementSource(store Store, clients firm.ClientStore) *EngagementSource {
	return &EngagementSource{store: store, clients: clients}
}

func (s *EngagementSource) ActiveEngagements(ctx context.Context, attorneyID id.AttorneyID) ([]conflict.ActiveEngagement, error) {
	rels, err := s.store.ListActiveByAttorney(ctx, attorneyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list active relationships")
	}
	if len(rels) == 0 {
		return nil, nil
	}

	clientIDs := make([]id.ClientID, len(rels))
	for i, rel := range rels {
		clientIDs[i] = rel.ClientID
	}
	clients, err := s.clients.FindByIDs(ctx, clientIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load engaged clients")
	}
	byID := make(map[id.ClientID]*firm.Client, len(clients))
	for _, client := range clients {
		byID[client.ID] = client
	}

	engagements := make([]conflict.ActiveEngagement, 0, len(rels))
	for _, rel := range rels {
		engagement := conflict.ActiveEngagement{
			ClientID: rel.ClientID,
			Matter:   rel.Matter,
		}
		if client, ok := byID[rel.ClientID]; ok {
			engagement.ClientName = client.Name
			engagement.CompanyName = client.CompanyName
		}
		engagements = append(engagements, engagement)
	}
	return engagements, nil
}
