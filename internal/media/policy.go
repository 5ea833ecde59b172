package media

import "katalog-mediow/internal/models"

// CanMutate reports whether the principal may update or delete an asset
// owned by ownerID. Administrators may mutate any asset, regular users
// only their own. Pure function, no I/O.
func CanMutate(principal models.Principal, ownerID int64) bool {
	return principal.IsAdmin() || principal.ID == ownerID
}
