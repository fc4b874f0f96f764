package client

import "strconv"

// API paths relative to Config.BaseURL.
const (
	PathLogin              = "/auth/local"
	PathRegister           = "/auth/local/register"
	PathMe                 = "/users/me"
	PathUsers              = "/users"
	PathTasks              = "/project-tasks"
	PathSuggestWorkPackage = "/project-tasks/suggest-work-packages"
	PathTeams              = "/teams"
	PathWorkPackages       = "/work-packages"
	PathNotifications      = "/notifications"
	PathNotificationTokens = "/notification-tokens"
)

// Item joins a collection path and an id.
func Item(collection string, id uint64) string {
	return collection + "/" + strconv.FormatUint(id, 10)
}
