package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/entity"
	"github.com/xavierca1/crm-sync/internal/infra/integration/c4c"
)

// ConsentResolution is one of NoPermission, PermissionNoChannel or
// ChannelExists.
type ConsentResolution interface {
	isConsentResolution()
}

// NoPermission: the contact has no marketing permission at all.
type NoPermission struct{}

// PermissionNoChannel: a marketing permission exists but has no Z03 channel.
type PermissionNoChannel struct {
	ChannelCollectionURI string
	PermissionObjectID   string
}

// ChannelExists: the Z03 channel permission exists at ChannelURI.
type ChannelExists struct {
	ChannelURI string
}

func (NoPermission) isConsentResolution()        {}
func (PermissionNoChannel) isConsentResolution() {}
func (ChannelExists) isConsentResolution()       {}

var ErrInvalidContactUUID = errors.New("invalid contact uuid")

type ConsentResolver struct {
	crm PermissionFinder
	log zerolog.Logger
}

func NewConsentResolver(crm PermissionFinder, log zerolog.Logger) *ConsentResolver {
	return &ConsentResolver{crm: crm, log: log}
}

// Resolve looks up the contact's marketing permission and its Z03 channel.
func (r *ConsentResolver) Resolve(ctx context.Context, contactUUID string) (ConsentResolution, error) {
	id, err := NormalizeContactUUID(contactUUID)
	if err != nil {
		return nil, err
	}

	mps, err := r.crm.FindMarketingPermissions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find marketing permission for %s: %w", id, err)
	}
	if len(mps) == 0 {
		r.log.Debug().Str("contact_uuid", id).Msg("[CONSENT] no marketing permission")
		return NoPermission{}, nil
	}

	mp := mps[0]
	collection := mp.ChannelPermission.Deferred.URI
	if collection == "" && mp.Metadata.URI != "" {
		collection = mp.Metadata.URI + "/ChannelPermission"
	}
	if collection == "" {
		return nil, fmt.Errorf("marketing permission for %s has no channel collection", id)
	}
	objectID := mp.ObjectID
	if objectID == "" {
		objectID = c4c.ObjectIDFromURI(collection)
	}

	channels, err := r.crm.FindChannelPermissions(ctx, collection, entity.ChannelZ03)
	if err != nil {
		return nil, fmt.Errorf("find z03 channel for %s: %w", id, err)
	}
	if len(channels) > 0 && channels[0].Metadata.URI != "" {
		r.log.Debug().Str("contact_uuid", id).Msg("[CONSENT] z03 channel exists")
		return ChannelExists{ChannelURI: channels[0].Metadata.URI}, nil
	}

	r.log.Debug().Str("contact_uuid", id).Msg("[CONSENT] marketing permission without z03 channel")
	return PermissionNoChannel{ChannelCollectionURI: collection, PermissionObjectID: objectID}, nil
}

// NormalizeContactUUID returns the upper-case dashed form C4C uses.
func NormalizeContactUUID(raw string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidContactUUID, raw, err)
	}
	return strings.ToUpper(u.String()), nil
}

// EncodeConsent maps the staging tri-state to the C4C consent code.
func EncodeConsent(consent *string) string {
	if consent == nil {
		return entity.ConsentUnknown
	}
	switch *consent {
	case "1":
		return entity.ConsentGranted
	case "0":
		return entity.ConsentDenied
	default:
		return entity.ConsentUnknown
	}
}
