package cache

const (
	instagramKeyPrefix = "instagram_"
	currentAccount     = "current"
)

// CreatorKey returns the cache key for a creator profile context.
// It is the creator (or user) identifier itself.
func CreatorKey(id string) string {
	return id
}

// InstagramKey returns the namespaced key for Instagram intelligence context.
// Format: instagram_<userID>_<username|current>
func InstagramKey(userID, username string) string {
	if username == "" {
		username = currentAccount
	}
	return instagramKeyPrefix + userID + "_" + username
}
