package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-pagesync/internal/feeds"
	"github.com/goliatone/go-pagesync/internal/store"
)

func (api *API) handleSync(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.syncer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	datasourceID := strings.TrimSpace(r.PathValue("datasource"))
	report, err := api.syncer.SyncDatasource(r.Context(), datasourceID)
	if err != nil {
		api.logger.Error("http.sync.failed", "datasource", datasourceID, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (api *API) handlePostList(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.retrieval == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	opts := store.ListOptions{
		DatasourceID: strings.TrimSpace(r.URL.Query().Get("ds")),
		Limit:        queryInt(r, "limit", 0),
		Offset:       queryInt(r, "offset", 0),
	}
	posts, err := api.retrieval.GetAllPosts(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (api *API) handlePostGet(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.retrieval == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	slug := r.PathValue("slug")
	datasourceID := strings.TrimSpace(r.URL.Query().Get("ds"))
	post, err := api.retrieval.GetPostBySlug(r.Context(), datasourceID, slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (api *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.retrieval == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 0)
	matches := api.retrieval.SearchQuickly(r.Context(), query, limit)
	writeJSON(w, http.StatusOK, matches)
}

func (api *API) handleFeed(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.retrieval == nil || api.feeds == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	datasourceID := strings.TrimSpace(r.URL.Query().Get("ds"))
	pages, err := api.retrieval.GetAllPosts(r.Context(), store.ListOptions{
		DatasourceID: datasourceID,
		Limit:        store.ListHardLimit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := api.feeds.BuildAtom(pages, feeds.FeedOptions{
		Title:        api.feedTitle,
		DatasourceID: datasourceID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func (api *API) handleTags(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.retrieval == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	datasourceID := strings.TrimSpace(r.URL.Query().Get("ds"))
	pages, err := api.retrieval.GetAllPosts(r.Context(), store.ListOptions{
		DatasourceID: datasourceID,
		Limit:        store.ListHardLimit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if api.links != nil {
		if self, err := api.links.TagsURL(datasourceID); err == nil {
			w.Header().Set("Link", `<`+self+`>; rel="self"`)
		}
	}
	writeJSON(w, http.StatusOK, feeds.CountTags(pages))
}
