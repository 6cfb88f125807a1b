package packets

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateGroupRequest struct {
	Name       string `json:"name" binding:"required"`
	ShowStatus *bool  `json:"show_status"`
}

type UpdateGroupRequest struct {
	Name       *string `json:"name"`
	ShowStatus *bool   `json:"show_status"`
}

type SetManagersRequest struct {
	UserIDs []int `json:"user_ids" binding:"required"`
}

type CreateContentRequest struct {
	Title       string  `json:"title" binding:"required"`
	ContentType string  `json:"content_type" binding:"required,oneof=video website"`
	URL         *string `json:"url"`
	Duration    *int    `json:"duration"`
}

type UpdateContentRequest struct {
	Title    *string `json:"title"`
	URL      *string `json:"url"`
	Duration *int    `json:"duration"`
}

type AddPlaylistEntryRequest struct {
	ContentItemID int `json:"content_item_id" binding:"required"`
	Position      int `json:"position"`
}

type UpdatePlaylistEntryRequest struct {
	Position int `json:"position"`
}

type UpdateBrowserRequest struct {
	Name    *string `json:"name"`
	GroupID *int    `json:"group_id"`
	// Unassign clears the group assignment; GroupID is ignored when set.
	Unassign bool `json:"unassign"`
}

type CreateScriptRequest struct {
	Name       string  `json:"name" binding:"required"`
	URLPattern *string `json:"url_pattern"`
	Content    string  `json:"content" binding:"required"`
	Enabled    *bool   `json:"enabled"`
	Position   int     `json:"position"`
}

type UpdateScriptRequest struct {
	Name       *string `json:"name"`
	URLPattern *string `json:"url_pattern"`
	Content    *string `json:"content"`
	Enabled    *bool   `json:"enabled"`
	Position   *int    `json:"position"`
}

type SetScriptContentItemsRequest struct {
	ContentItemIDs []int `json:"content_item_ids" binding:"required"`
}
