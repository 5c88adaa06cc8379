package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/crm-sync/internal/infra/integration/c4c"
)

func permission(objectID string) c4c.MarketingPermission {
	mp := c4c.MarketingPermission{ObjectID: objectID, BusinessPartnerID: "1001"}
	mp.ChannelPermission.Deferred.URI = testBase + "/MarketingPermissionCollection('" + objectID + "')/ChannelPermission"
	return mp
}

// TestResolveNoPermission - empty permission lookup
func TestResolveNoPermission(t *testing.T) {
	crm := new(MockCRM)
	crm.On("FindMarketingPermissions", mock.Anything, testContact).Return([]c4c.MarketingPermission{}, nil)

	got, err := NewConsentResolver(crm, zerolog.Nop()).Resolve(context.Background(), testContact)
	require.NoError(t, err)
	assert.Equal(t, NoPermission{}, got)
	crm.AssertNotCalled(t, "FindChannelPermissions", mock.Anything, mock.Anything, mock.Anything)
}

// TestResolvePermissionNoChannel - permission without a Z03 channel
func TestResolvePermissionNoChannel(t *testing.T) {
	crm := new(MockCRM)
	mp := permission("MP1")
	crm.On("FindMarketingPermissions", mock.Anything, testContact).Return([]c4c.MarketingPermission{mp}, nil)
	crm.On("FindChannelPermissions", mock.Anything, mp.ChannelPermission.Deferred.URI, "Z03").Return([]c4c.ChannelPermission{}, nil)

	got, err := NewConsentResolver(crm, zerolog.Nop()).Resolve(context.Background(), testContact)
	require.NoError(t, err)
	assert.Equal(t, PermissionNoChannel{
		ChannelCollectionURI: mp.ChannelPermission.Deferred.URI,
		PermissionObjectID:   "MP1",
	}, got)
}

// TestResolveChannelExists - the channel URI comes from its metadata
func TestResolveChannelExists(t *testing.T) {
	crm := new(MockCRM)
	mp := permission("MP1")
	cp := c4c.ChannelPermission{Channel: "Z03", Consent: "1"}
	cp.Metadata.URI = testBase + "/MarketingPermissionChannelPermissionCollection('CP1')"
	crm.On("FindMarketingPermissions", mock.Anything, testContact).Return([]c4c.MarketingPermission{mp}, nil)
	crm.On("FindChannelPermissions", mock.Anything, mock.Anything, "Z03").Return([]c4c.ChannelPermission{cp}, nil)

	got, err := NewConsentResolver(crm, zerolog.Nop()).Resolve(context.Background(), testContact)
	require.NoError(t, err)
	assert.Equal(t, ChannelExists{ChannelURI: cp.Metadata.URI}, got)
}

// TestResolveNormalizesContact - lower-case UUIDs are queried upper-case
func TestResolveNormalizesContact(t *testing.T) {
	crm := new(MockCRM)
	crm.On("FindMarketingPermissions", mock.Anything, testContact).Return([]c4c.MarketingPermission{}, nil)

	_, err := NewConsentResolver(crm, zerolog.Nop()).Resolve(context.Background(), "00163e0a-1b2c-1edb-a0b1-000000000001")
	require.NoError(t, err)
	crm.AssertExpectations(t)
}

func TestResolveInvalidContact(t *testing.T) {
	crm := new(MockCRM)

	_, err := NewConsentResolver(crm, zerolog.Nop()).Resolve(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidContactUUID)
	crm.AssertNotCalled(t, "FindMarketingPermissions", mock.Anything, mock.Anything)
}

func TestResolvePropagatesTransportError(t *testing.T) {
	crm := new(MockCRM)
	crm.On("FindMarketingPermissions", mock.Anything, testContact).
		Return(nil, &c4c.TransportError{Method: "GET", URL: "x", Err: errors.New("reset")})

	_, err := NewConsentResolver(crm, zerolog.Nop()).Resolve(context.Background(), testContact)
	assert.True(t, c4c.IsTransportError(err))
}

func TestEncodeConsent(t *testing.T) {
	assert.Equal(t, "1", EncodeConsent(strp("1")))
	assert.Equal(t, "2", EncodeConsent(strp("0")))
	assert.Equal(t, "3", EncodeConsent(nil))
	assert.Equal(t, "3", EncodeConsent(strp("")))
	assert.Equal(t, "3", EncodeConsent(strp("yes")))
}
