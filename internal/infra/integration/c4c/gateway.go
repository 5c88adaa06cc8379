package c4c

import (
	"context"
	"strings"
	"time"
)

// bpFilterChunk bounds how many GUIDs go into one $filter.
const bpFilterChunk = 20

// FindMarketingPermissions returns the marketing permissions owned by a
// contact.
func (c *Client) FindMarketingPermissions(ctx context.Context, contactUUID string) ([]MarketingPermission, error) {
	return Read[MarketingPermission](ctx, c, Query{Filter: GUIDFilter("BusinessPartnerUUID", contactUUID)})
}

// FindChannelPermissions reads a permission's ChannelPermission collection
// filtered to one channel.
func (c *Client) FindChannelPermissions(ctx context.Context, collectionURI, channel string) ([]ChannelPermission, error) {
	return ReadURIList[ChannelPermission](ctx, c, collectionURI, Query{Filter: EqFilter("Channel", channel)})
}

// ReadChannelPermission reads a single channel permission by URI.
func (c *Client) ReadChannelPermission(ctx context.Context, uri string) (ChannelPermission, error) {
	var cp ChannelPermission
	err := c.ReadURI(ctx, uri, Query{}, &cp)
	return cp, err
}

func (c *Client) ChangedLeads(ctx context.Context, since time.Time) ([]Lead, error) {
	return Read[Lead](ctx, c, Query{Filter: ChangedSince(since)})
}

func (c *Client) ChangedEmployees(ctx context.Context, since time.Time) ([]Employee, error) {
	return Read[Employee](ctx, c, Query{Filter: ChangedSince(since)})
}

// OrgUnitAssignments follows an employee's deferred assignment URI.
func (c *Client) OrgUnitAssignments(ctx context.Context, uri string) ([]OrgUnitAssignment, error) {
	return ReadURIList[OrgUnitAssignment](ctx, c, uri, Query{Select: "OrgUnitID"})
}

// FindBusinessPartners looks business partners up by UUID, a chunk of
// GUIDs per request.
func (c *Client) FindBusinessPartners(ctx context.Context, uuids []string) ([]BusinessPartner, error) {
	var out []BusinessPartner
	for start := 0; start < len(uuids); start += bpFilterChunk {
		end := min(start+bpFilterChunk, len(uuids))

		filters := make([]string, 0, end-start)
		for _, id := range uuids[start:end] {
			filters = append(filters, GUIDFilter("BusinessPartnerUUID", strings.TrimSpace(id)))
		}
		page, err := Read[BusinessPartner](ctx, c, Query{Filter: Or(filters...)})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}
