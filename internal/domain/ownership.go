package domain

// IsOwner reports whether the requesting identity owns a resource held by ownerID.
// Identity comparison only, no derived attributes.
func IsOwner(requesterID, ownerID string) bool {
	return requesterID == ownerID
}
