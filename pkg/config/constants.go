package config

import "strings"

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SiteVariantFarm = "farm"
	SiteVariantPets = "pets"
)

const (
	EnvAppEnv      = "STOREFRONT_APP_ENV"
	EnvPort        = "STOREFRONT_APP_PORT"
	EnvSiteVariant = "STOREFRONT_SITE_VARIANT"

	EnvDBDSN  = "STOREFRONT_DB_DSN"
	EnvDBHost = "STOREFRONT_DB_HOST"
	EnvDBUser = "STOREFRONT_DB_USER"
	EnvDBName = "STOREFRONT_DB_NAME"

	EnvUseSQLite = "STOREFRONT_USE_SQLITE"
	EnvRedisURL  = "STOREFRONT_REDIS_URL"

	EnvJWTSecret  = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer  = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvFreeShippingThreshold = "STOREFRONT_FREE_SHIPPING_THRESHOLD"
	EnvFlatShipping          = "STOREFRONT_FLAT_SHIPPING"
	EnvTaxRate               = "STOREFRONT_TAX_RATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

var siteVariants = []string{SiteVariantFarm, SiteVariantPets}

// IsValidSiteVariant reports whether v names one of the two storefront flavours.
func IsValidSiteVariant(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, known := range siteVariants {
		if v == known {
			return true
		}
	}
	return false
}
