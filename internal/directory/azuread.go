// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/canonical/directory-sync/internal/logging"
	"github.com/canonical/directory-sync/internal/monitoring"
	"github.com/canonical/directory-sync/internal/tracing"
	"github.com/canonical/directory-sync/internal/types"
)

const graphBaseURL = "https://graph.microsoft.com"

var _ DirectoryInterface = (*AzureAD)(nil)

// AzureAD resolves group members through the Microsoft Graph API.
type AzureAD struct {
	baseURL string
	client  *http.Client
	tokens  oauth2.TokenSource

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

type graphGroupList struct {
	Value []struct {
		ID string `json:"id"`
	} `json:"value"`
}

type graphMemberList struct {
	NextLink string `json:"@odata.nextLink"`
	Value    []struct {
		ID                string `json:"id"`
		DisplayName       string `json:"displayName"`
		UserPrincipalName string `json:"userPrincipalName"`
	} `json:"value"`
}

func (a *AzureAD) Name() string {
	return "azuread"
}

// ResolveMembers looks up the group's Graph object id by display name, then
// pages through its member list to completion.
func (a *AzureAD) ResolveMembers(ctx context.Context, externalGroup string) ([]types.Member, error) {
	ctx, span := a.tracer.Start(ctx, "directory.AzureAD.ResolveMembers")
	defer span.End()

	groupID, err := a.resolveGroupID(ctx, externalGroup)
	if err != nil {
		return nil, err
	}

	members := make([]types.Member, 0)
	next := fmt.Sprintf(
		"%s/v1.0/groups/%s/members?$select=id,displayName,userPrincipalName",
		a.baseURL,
		url.PathEscape(groupID),
	)

	for next != "" {
		var page graphMemberList
		if err := a.get(ctx, next, &page); err != nil {
			return nil, err
		}

		for _, m := range page.Value {
			if m.ID == "" {
				continue
			}
			members = append(members, types.Member{
				ID:          m.ID,
				DisplayName: m.DisplayName,
			})
		}

		next = page.NextLink
	}

	return members, nil
}

func (a *AzureAD) resolveGroupID(ctx context.Context, externalGroup string) (string, error) {
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("displayName eq '%s'", externalGroup))
	query.Set("$select", "id")

	var groups graphGroupList
	if err := a.get(ctx, fmt.Sprintf("%s/v1.0/groups?%s", a.baseURL, query.Encode()), &groups); err != nil {
		return "", err
	}

	if len(groups.Value) == 0 {
		return "", fmt.Errorf("%w: %q", ErrGroupNotFound, externalGroup)
	}

	return groups.Value[0].ID, nil
}

func (a *AzureAD) get(ctx context.Context, rawURL string, out any) error {
	token, err := a.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build graph request: %v", err)
	}
	token.SetAuthHeader(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: graph returned %d", ErrAuthentication, resp.StatusCode)
	case http.StatusNotFound:
		return fmt.Errorf("%w: graph returned 404", ErrGroupNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("graph returned %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode graph response: %v", err)
	}

	return nil
}

func NewAzureADClient(credential CredentialInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *AzureAD {
	a := new(AzureAD)

	a.baseURL = graphBaseURL
	a.client = http.DefaultClient
	a.tokens = credential.TokenSource(context.Background())

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
