package domain

// Engagement events pushed to clients watching a video.
const (
	EventVideoLiked     = "VIDEO_LIKED"
	EventVideoUnliked   = "VIDEO_UNLIKED"
	EventVideoViewed    = "VIDEO_VIEWED"
	EventCommentAdded   = "COMMENT_ADDED"
	EventCommentDeleted = "COMMENT_DELETED"
)
