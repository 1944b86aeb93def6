package crm

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"teatrlead/entity"
	"teatrlead/lib/sl"
)

// Forwarder hands completed questionnaires to the right CRM backend. Lead
// submission is best effort: a CRM outage must never block the conversation,
// so failures are logged and swallowed.
type Forwarder struct {
	clients        map[entity.CRMType]*Client
	defaultBackend entity.CRMType
	log            *slog.Logger
}

func NewForwarder(city1, city2 *Client, defaultBackend entity.CRMType, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		clients: map[entity.CRMType]*Client{
			entity.CRMCity1: city1,
			entity.CRMCity2: city2,
		},
		defaultBackend: defaultBackend,
		log:            logger.With(sl.Module("forwarder")),
	}
}

// Backend resolves the CRM backend for a city, falling back to the
// configured default when the city is not in the routing table.
func (f *Forwarder) Backend(city string) entity.CRMType {
	if backend, ok := Route(city); ok {
		return backend
	}
	return f.defaultBackend
}

// Submit creates the contact and its lead in the backend matching the
// visitor's city. Returns the lead id, or zero when submission failed.
func (f *Forwarder) Submit(ctx context.Context, v *entity.VisitorProfile) int64 {
	backend := f.Backend(v.City)
	log := f.log.With(
		sl.User(v.UserID),
		slog.String("backend", string(backend)),
		slog.String("city", v.City),
		slog.String("submission_id", uuid.NewString()),
	)

	client, ok := f.clients[backend]
	if !ok || client == nil {
		log.Error("no client for backend")
		return 0
	}

	contactId, err := f.withRetry(ctx, client, func() (int64, error) {
		return client.CreateContact(ctx, v)
	})
	if err != nil {
		log.Error("create contact", sl.Err(err))
		return 0
	}
	log = log.With(slog.Int64("contact_id", contactId))

	leadId, err := f.withRetry(ctx, client, func() (int64, error) {
		return client.CreateLead(ctx, v, contactId)
	})
	if err != nil {
		log.Error("create lead", sl.Err(err))
		return 0
	}

	log.Info("lead submitted", slog.Int64("lead_id", leadId))
	return leadId
}

// withRetry runs a CRM call once more after refreshing the access token if
// the first attempt came back unauthorized.
func (f *Forwarder) withRetry(ctx context.Context, client *Client, call func() (int64, error)) (int64, error) {
	id, err := call()
	if err == nil {
		return id, nil
	}
	if !isUnauthorized(err) {
		return 0, err
	}
	if err = client.RefreshAccessToken(ctx); err != nil {
		return 0, err
	}
	return call()
}
