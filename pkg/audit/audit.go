package audit

import "context"

// Context keys carrying the acting user and tenant; set by the API
// auth middleware and read back when audit entries are written.
const (
	ContextKeyActorID        = "user_id"
	ContextKeyOrganizationID = "organization_id"
)

type AuditLogger interface {
	Log(ctx context.Context, action string, data interface{}) error
}

// ActorID extracts the acting user id from ctx, if present.
func ActorID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyActorID).(string); ok {
		return v
	}
	return ""
}

// OrganizationID extracts the tenant id from ctx, if present.
func OrganizationID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyOrganizationID).(string); ok {
		return v
	}
	return ""
}
