package config

const (
	EnvPrefix = "HERMES"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv         = "HERMES_APP_ENV"
	EnvAppPort        = "HERMES_APP_PORT"
	EnvDBPath         = "HERMES_DB_PATH"
	EnvBackendBaseURL = "HERMES_BACKEND_BASE_URL"
	EnvBranchID       = "HERMES_BRANCH_ID"
	EnvCashierID      = "HERMES_CASHIER_ID"
)
