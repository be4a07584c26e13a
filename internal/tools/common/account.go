package common

import (
	"context"
)

// GetTenantFromArgs extracts the tenant account from request arguments.
// Defaults to "default" when no tenant is provided.
//
// The context parameter is kept so transports that authenticate callers
// can resolve the tenant from the request identity instead.
func GetTenantFromArgs(_ context.Context, args map[string]interface{}) string {
	if tenantVal, ok := args["tenant"].(string); ok && tenantVal != "" {
		return tenantVal
	}
	return "default"
}
