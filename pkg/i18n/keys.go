package i18n

// Message keys used by the view layer.
const (
	KeyForumOffline       = "forum.offline"
	KeyLoginNotification  = "forum.login_notification"
	KeyLoginForum         = "forum.login_forum"
	KeyNoAccess           = "forum.no_access"
	KeyAccessDenied       = "forum.access_denied"
	KeyPageTitle          = "page.title"
	KeyLayoutNotFound     = "error.layout_not_found"
	KeyCategoryLinkTitle  = "category.link_title"
	KeyTopicLinkTitle     = "topic.link_title"
	KeyTopicFirstTitle    = "topic.first_link_title"
	KeyTopicLastTitle     = "topic.last_link_title"
	KeyTopicUnreadTitle   = "topic.unread_link_title"
	KeyTopicMessageTitle  = "topic.message_link_title"
	KeyScreenListTitle    = "screen.list.title"
	KeyScreenUnreadTitle  = "screen.list.unread_title"
	KeyScreenSearchTitle  = "screen.search.title"
	KeySearchResultsTitle = "screen.search.results_title"
	KeyScreenListEmpty    = "screen.list.empty"
	KeyScreenSearchEmpty  = "screen.search.empty"
)
