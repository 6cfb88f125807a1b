// Package playlist assembles the response served to polling kiosks: browser
// registration, heartbeat, and the ordered playlist with automation scripts.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/model"
)

// ErrInvalidBrowserID marks a missing or malformed browser identifier.
// Storage is never touched when it is returned.
var ErrInvalidBrowserID = errors.New("invalid browser id")

// heartbeatWindow throttles last-seen writes under rapid polling. Staleness
// up to the window is acceptable.
const heartbeatWindow = 60 * time.Second

// Store is the slice of the persistence layer the resolver needs.
type Store interface {
	GetOrCreateBrowser(ctx context.Context, identifier uuid.UUID) (*model.Browser, bool, error)
	TouchBrowser(ctx context.Context, identifier uuid.UUID) error
	GetDisplayGroupByID(ctx context.Context, id int) (*model.DisplayGroup, error)
	ListPlaylistEntriesForGroup(ctx context.Context, groupID int) ([]model.PlaylistEntry, error)
	ListEnabledScriptsForContentItem(ctx context.Context, contentItemID int) ([]model.AutomationScript, error)
}

// Heartbeat optionally suppresses redundant last-seen writes across racing
// requests. Mark reports whether the caller should persist the heartbeat.
type Heartbeat interface {
	Mark(ctx context.Context, identifier uuid.UUID) bool
}

type Script struct {
	Name       string `json:"name"`
	URLPattern string `json:"url_pattern"`
	Content    string `json:"content"`
}

type Entry struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	URL      string   `json:"url"`
	Duration *int     `json:"duration,omitempty"`
	Scripts  []Script `json:"scripts"`
}

type Response struct {
	BrowserID  string  `json:"browser_id"`
	GroupName  *string `json:"group_name"`
	Playlist   []Entry `json:"playlist"`
	ShowStatus bool    `json:"show_status"`
}

type Resolver struct {
	store     Store
	heartbeat Heartbeat        // optional, may be nil
	now       func() time.Time // test seam
}

// NewResolver builds a resolver over the given store. heartbeat may be nil;
// the timestamp comparison alone then decides when to write.
func NewResolver(store Store, heartbeat Heartbeat) *Resolver {
	return &Resolver{store: store, heartbeat: heartbeat, now: time.Now}
}

// Resolve registers or refreshes the browser and assembles its playlist.
// baseURL (scheme://host of the serving request) anchors relative video
// file references.
func (r *Resolver) Resolve(ctx context.Context, rawID, baseURL string) (*Response, error) {
	identifier, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBrowserID, rawID)
	}

	browser, created, err := r.store.GetOrCreateBrowser(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("browser upsert: %w", err)
	}
	if created {
		log.Info().Str("browser", identifier.String()).Msg("registered new browser")
	} else if r.now().Sub(browser.LastSeen) > heartbeatWindow {
		touch := true
		if r.heartbeat != nil {
			touch = r.heartbeat.Mark(ctx, identifier)
		}
		if touch {
			if err := r.store.TouchBrowser(ctx, identifier); err != nil {
				return nil, fmt.Errorf("browser heartbeat: %w", err)
			}
		}
	}

	resp := &Response{
		BrowserID:  identifier.String(),
		Playlist:   []Entry{},
		ShowStatus: true,
	}
	if browser.GroupID == nil {
		return resp, nil
	}

	group, err := r.store.GetDisplayGroupByID(ctx, *browser.GroupID)
	if err != nil {
		return nil, fmt.Errorf("load group %d: %w", *browser.GroupID, err)
	}
	resp.GroupName = &group.Name
	resp.ShowStatus = group.ShowStatus

	entries, err := r.store.ListPlaylistEntriesForGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("load playlist for group %d: %w", group.ID, err)
	}

	for _, entry := range entries {
		item := entry.Item
		out := Entry{
			ID:    item.ID,
			Title: item.Title,
			Type:  item.ContentType,
		}

		switch {
		case item.ContentType == model.ContentTypeVideo && item.VideoFile != nil && *item.VideoFile != "":
			out.URL = absoluteMediaURL(*item.VideoFile, baseURL)
		case item.ContentType == model.ContentTypeWebsite && item.URL != nil && item.Duration != nil:
			out.URL = *item.URL
			out.Duration = item.Duration
		default:
			// incomplete item: skip the entry, keep the response
			log.Warn().Int("content_item", item.ID).Str("type", item.ContentType).
				Msg("skipping invalid playlist item")
			continue
		}

		scripts, err := r.store.ListEnabledScriptsForContentItem(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("load scripts for item %d: %w", item.ID, err)
		}
		out.Scripts = make([]Script, 0, len(scripts))
		for _, s := range scripts {
			pattern := ""
			if s.URLPattern != nil {
				pattern = *s.URLPattern
			}
			out.Scripts = append(out.Scripts, Script{
				Name:       s.Name,
				URLPattern: pattern,
				Content:    s.Content,
			})
		}

		resp.Playlist = append(resp.Playlist, out)
	}

	return resp, nil
}

// absoluteMediaURL resolves a stored file reference against the request
// base. References that are already absolute (CDN uploads) pass through.
func absoluteMediaURL(fileRef, baseURL string) string {
	if strings.HasPrefix(fileRef, "http://") || strings.HasPrefix(fileRef, "https://") {
		return fileRef
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(fileRef, "/")
}
