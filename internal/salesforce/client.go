// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package salesforce

import (
	"fmt"

	"github.com/k-capehart/go-salesforce/v2"
)

// NewClient initializes a Salesforce API client with client-credentials auth.
func NewClient(domain, consumerKey, consumerSecret string) (*salesforce.Salesforce, error) {
	client, err := salesforce.Init(salesforce.Creds{
		Domain:         domain,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize salesforce client: %v", err)
	}

	return client, nil
}
