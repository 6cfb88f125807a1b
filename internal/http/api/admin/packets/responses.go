package packets

type TokenResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	ID          int      `json:"id"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	IsStaff     bool     `json:"is_staff"`
	IsSuperuser bool     `json:"is_superuser"`
	Permissions []string `json:"permissions"`
}

type GroupResponse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ShowStatus bool   `json:"show_status"`
	ManagerIDs []int  `json:"manager_ids"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type ContentResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ContentType string  `json:"content_type"`
	VideoFile   *string `json:"video_file,omitempty"`
	URL         *string `json:"url,omitempty"`
	Duration    *int    `json:"duration,omitempty"`
	UploadedAt  string  `json:"uploaded_at"`
}

type PlaylistEntryResponse struct {
	ID            int              `json:"id"`
	GroupID       int              `json:"group_id"`
	ContentItemID int              `json:"content_item_id"`
	Position      int              `json:"position"`
	Item          *ContentResponse `json:"item,omitempty"`
}

type BrowserResponse struct {
	Identifier string  `json:"identifier"`
	Name       *string `json:"name,omitempty"`
	GroupID    *int    `json:"group_id,omitempty"`
	LastSeen   string  `json:"last_seen"`
}

type ScriptResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	URLPattern     string `json:"url_pattern"`
	Content        string `json:"content"`
	Enabled        bool   `json:"enabled"`
	Position       int    `json:"position"`
	ContentItemIDs []int  `json:"content_item_ids,omitempty"`
}
