package persistence

import (
	"github.com/dms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyVisibility scopes a query to rows the viewer may see: unowned rows,
// rows they own, and rows shared with them. Superusers see everything.
// SharedWith is stored as a JSON array of user id strings, so membership
// reduces to a LIKE on the quoted id and stays portable across postgres
// and sqlite.
func applyVisibility(query *gorm.DB, viewer shared.Viewer) *gorm.DB {
	if viewer.Superuser {
		return query
	}
	return query.Where(
		"owner_id IS NULL OR owner_id = ? OR shared_with LIKE ?",
		viewer.UserID,
		`%"`+viewer.UserID.String()+`"%`,
	)
}

// applyVisibilityAlias is applyVisibility with an explicit table alias for
// joined queries.
func applyVisibilityAlias(query *gorm.DB, viewer shared.Viewer, alias string) *gorm.DB {
	if viewer.Superuser {
		return query
	}
	return query.Where(
		alias+".owner_id IS NULL OR "+alias+".owner_id = ? OR "+alias+".shared_with LIKE ?",
		viewer.UserID,
		`%"`+viewer.UserID.String()+`"%`,
	)
}
