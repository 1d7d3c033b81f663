package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/AlibekovAA/secure-blog/internal/blog/service"
	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	commonhttp "github.com/AlibekovAA/secure-blog/internal/common/http"
	"github.com/AlibekovAA/secure-blog/internal/common/httpmetrics"
	"github.com/AlibekovAA/secure-blog/internal/common/jwtverify"
	"github.com/AlibekovAA/secure-blog/internal/common/logger"
)

// CacheAgeHeader carries the age of the served data in whole seconds.
const CacheAgeHeader = "X-Cache-Age"

type createPostRequest struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type postResponse struct {
	ID          int64     `json:"id"`
	Subject     string    `json:"subject"`
	SubjectText string    `json:"subject_text"`
	Content     string    `json:"content"`
	ContentHTML string    `json:"content_html"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

type postEnvelope struct {
	Post              postResponse `json:"post"`
	QueriedSecondsAgo int64        `json:"queried_seconds_ago"`
}

type recentEnvelope struct {
	Posts             []postResponse `json:"posts"`
	QueriedSecondsAgo int64          `json:"queried_seconds_ago"`
}

type HandlerConfig struct {
	RequestTimeout time.Duration
}

type Handler struct {
	posts  *service.PostService
	errors *commonhttp.ErrorHandler
	log    *logger.Logger
}

// NewRouter serves the blog API. requireSession guards the write endpoints.
func NewRouter(posts *service.PostService, requireSession func(http.Handler) http.Handler, config HandlerConfig, log *logger.Logger) *mux.Router {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = constants.DefaultBlogRequestTimeout
	}
	h := &Handler{
		posts:  posts,
		errors: commonhttp.NewErrorHandler(log),
		log:    log,
	}
	timeout := commonhttp.WithTimeout(config.RequestTimeout)

	// Routes are registered on the root router with full paths: gorilla/mux
	// only consults MethodNotAllowedHandler on the router whose routes
	// reported the method mismatch.
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(commonhttp.MethodNotAllowed)
	r.NotFoundHandler = http.HandlerFunc(commonhttp.NotFound)
	r.Use(httpmetrics.RouteTemplate)

	r.HandleFunc("/api/blog/posts", timeout(h.recent)).Methods(http.MethodGet)
	r.Handle("/api/blog/posts", requireSession(timeout(h.create))).Methods(http.MethodPost)
	r.HandleFunc("/api/blog/posts/{id}", timeout(h.get)).Methods(http.MethodGet)
	r.Handle("/api/blog/flush", requireSession(http.HandlerFunc(h.flush))).Methods(http.MethodPost)
	return r
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	view, err := h.posts.Recent(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	posts := make([]postResponse, 0, len(view.Posts))
	for _, p := range view.Posts {
		posts = append(posts, toPostResponse(p))
	}
	setCacheAge(w, view.Age)
	commonhttp.WriteJSON(w, http.StatusOK, recentEnvelope{
		Posts:             posts,
		QueriedSecondsAgo: ageSeconds(view.Age),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := commonhttp.ParsePositiveID(mux.Vars(r)["id"])
	if err != nil {
		commonhttp.WriteErrorEnvelope(
			w,
			http.StatusBadRequest,
			commonhttp.CodeInvalidPostID,
			"invalid post id",
			nil,
			commonhttp.TraceIDFromContext(r.Context()),
		)
		return
	}

	view, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	setCacheAge(w, view.Age)
	commonhttp.WriteJSON(w, http.StatusOK, postEnvelope{
		Post:              toPostResponse(view),
		QueriedSecondsAgo: ageSeconds(view.Age),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity, _ := jwtverify.FromContext(r.Context())

	var req createPostRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{"action": "post_invalid_json"}).Warnf("create post failed: invalid json: %v", err)
		commonhttp.WriteDecodeError(w, r, err)
		return
	}

	view, err := h.posts.Create(r.Context(), identity.Username, service.CreatePostInput{
		Subject: req.Subject,
		Content: req.Content,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/blog/posts/"+strconv.FormatInt(view.Post.ID, 10))
	setCacheAge(w, view.Age)
	commonhttp.WriteJSON(w, http.StatusCreated, postEnvelope{
		Post:              toPostResponse(view),
		QueriedSecondsAgo: ageSeconds(view.Age),
	})
}

func (h *Handler) flush(w http.ResponseWriter, r *http.Request) {
	identity, _ := jwtverify.FromContext(r.Context())
	h.posts.FlushCache(r.Context())
	h.log.WithFields(r.Context(), logger.Fields{
		"username": identity.Username,
		"action":   "cache_flush_requested",
	}).Info("cache flush requested")
	w.WriteHeader(http.StatusNoContent)
}

func toPostResponse(v service.PostView) postResponse {
	return postResponse{
		ID:          v.Post.ID,
		Subject:     v.Post.Subject,
		SubjectText: v.SubjectText,
		Content:     v.Post.Content,
		ContentHTML: v.ContentHTML,
		Author:      v.Post.Author,
		CreatedAt:   v.Post.CreatedAt,
	}
}

func setCacheAge(w http.ResponseWriter, age time.Duration) {
	w.Header().Set(CacheAgeHeader, strconv.FormatInt(ageSeconds(age), 10))
}

func ageSeconds(age time.Duration) int64 {
	return int64(age / time.Second)
}
