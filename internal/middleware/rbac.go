package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/models"
)

// RequireRole rejects any caller whose role does not meet min in the
// `super_admin > store_admin > staff > customer` hierarchy of §6.
func RequireRole(min models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			httperr.Unauthorized(c, "MISSING_IDENTITY", "authentication required")
			return
		}
		if !identity.Role.AtLeast(min) {
			httperr.Forbidden(c, "INSUFFICIENT_ROLE", "caller does not hold the required role")
			return
		}
		c.Next()
	}
}

// RequireStoreScope enforces the §6/§9 store-ownership rule: store_admin and
// staff may only act within their own store; super_admin is unrestricted.
// storeIDParam names the gin path/query parameter carrying the target store
// id.
func RequireStoreScope(storeIDParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			httperr.Unauthorized(c, "MISSING_IDENTITY", "authentication required")
			return
		}
		if identity.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}

		raw := c.Param(storeIDParam)
		if raw == "" {
			raw = c.Query(storeIDParam)
		}
		targetStoreID, err := uuid.Parse(raw)
		if err != nil {
			httperr.BadRequest(c, "INVALID_STORE_ID", "storeId is not a valid identifier")
			return
		}

		if identity.StoreID == nil || *identity.StoreID != targetStoreID {
			httperr.Forbidden(c, "STORE_SCOPE_MISMATCH", "caller is not scoped to this store")
			return
		}
		c.Next()
	}
}

// RequireSelfOrStaff allows a customer to act only on their own records,
// while staff/store_admin/super_admin proceed under the ordinary store-scope
// rule. customerIDParam names the path parameter carrying the target
// customer id.
func RequireSelfOrStaff(customerIDParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			httperr.Unauthorized(c, "MISSING_IDENTITY", "authentication required")
			return
		}
		if identity.Role.AtLeast(models.RoleStaff) {
			c.Next()
			return
		}

		targetCustomerID, err := uuid.Parse(c.Param(customerIDParam))
		if err != nil {
			httperr.BadRequest(c, "INVALID_CUSTOMER_ID", "customerId is not a valid identifier")
			return
		}
		if identity.UserID != targetCustomerID {
			httperr.Forbidden(c, "NOT_OWNER", "customers may only act on their own records")
			return
		}
		c.Next()
	}
}
