package cache

import "strconv"

const (
	ViewPost   = "post"
	ViewRecent = "recent"

	// RecentKey addresses the front-page list of latest posts.
	RecentKey = "latest"
)

func PostKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
