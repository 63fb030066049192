// Package presets bundles the collection rules of the complaint-portal
// deployment this proxy fronts. Other deployments can assemble their own
// registry from the rule constructors in the policy package.
package presets

import (
	"net/http"

	"authproxy/internal/backend"
	"authproxy/internal/policy"
)

const (
	complaintsPath    = "/items/Complaint"
	notificationsPath = "/items/notification"
	usersPath         = "/items/users"
	deviceTokensPath  = "/items/device_token"
	filesPath         = "/files"

	complaintOwnerField   = "user"
	notificationRelation  = "users"
	notificationUserField = "directus_users_id"
)

// Complaint attachment fields whose values are file ids; a file is owned
// when any complaint owned by the caller references it through one of them.
var complaintAttachmentFields = []string{"photo", "document", "receipt"}

// ComplaintPortal returns the protected-collection registry of the
// complaint portal.
func ComplaintPortal(client *backend.Client) *policy.Registry {
	return policy.NewRegistry(
		policy.NewOwnerFieldRule(complaintsPath, complaintOwnerField, "complaint", client),
		policy.NewPivotRule(notificationsPath, notificationRelation, notificationUserField, "notification", client),
		policy.NewTransitiveRule(filesPath, complaintsPath, complaintOwnerField, complaintAttachmentFields, "file", client),
		policy.NewSelfRule(usersPath),
	)
}

// PublicEndpoints returns the paths reachable without identity proof:
// self-signup and device-token registration, creation only.
func PublicEndpoints() []policy.PublicEndpoint {
	return []policy.PublicEndpoint{
		{Prefix: usersPath, Methods: []string{http.MethodPost}},
		{Prefix: deviceTokensPath, Methods: []string{http.MethodPost}},
	}
}
