// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package config

import "time"

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	AuthenticationEnabled bool   `envconfig:"authentication_enabled" default:"false"`
	AuthenticationIssuer  string `envconfig:"authentication_issuer" default:""`

	AuthorizationEnabled bool   `envconfig:"authorization_enabled" default:"false"`
	OpenfgaApiScheme     string `envconfig:"openfga_api_scheme" default:""`
	OpenfgaApiHost       string `envconfig:"openfga_api_host"`
	OpenfgaApiToken      string `envconfig:"openfga_api_token"`
	OpenfgaStoreId       string `envconfig:"openfga_store_id"`
	OpenfgaModelId       string `envconfig:"openfga_authorization_model_id" default:""`

	// Directory provider settings. The graph_* credentials map to an Entra ID
	// app registration; flag_user_credentials selects the delegated preset
	// (user principal + password) over the shared-secret preset.
	DirectoryDriver     string `envconfig:"directory_driver" default:"azuread"`
	GraphTenantId       string `envconfig:"graph_tenant_id"`
	GraphAppId          string `envconfig:"graph_app_id"`
	GraphAppSecret      string `envconfig:"graph_app_secret"`
	GraphUser           string `envconfig:"graph_user"`
	GraphUserPassword   string `envconfig:"graph_user_pwd"`
	FlagUserCredentials bool   `envconfig:"flag_user_credentials" default:"false"`

	SalesforceDomain         string `envconfig:"salesforce_domain"`
	SalesforceConsumerKey    string `envconfig:"salesforce_consumer_key"`
	SalesforceConsumerSecret string `envconfig:"salesforce_consumer_secret"`

	FlagSimulate   bool          `envconfig:"flag_simulate" default:"false"`
	MappingsPath   string        `envconfig:"mappings_path" default:""`
	LogOutputPath  string        `envconfig:"log_output_path" default:""`
	RequestTimeout time.Duration `envconfig:"request_timeout" default:"30s"`

	DSN               string        `envconfig:"DSN" default:""`
	DBMaxConns        int           `envconfig:"db_max_conns" default:"20"`
	DBMinConns        int           `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"15m"`
}
