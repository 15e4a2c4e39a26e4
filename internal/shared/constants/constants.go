package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType = "Content-Type"
	HeaderXRequestID  = "X-Request-ID"

	// Content Types
	ContentTypeJSON = "application/json"

	// Database table names
	TableLinkingTokens         = "linking_tokens"
	TableMembers               = "members"
	TablePriceRoleMappings     = "price_role_mappings"
	TablePlatformSubscriptions = "platform_subscriptions"
)
