package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/msomdec/plume/internal/domain"
	"github.com/msomdec/plume/internal/service"
)

// PostHandler handles the public pages and post CRUD.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// HandleHome renders all posts, newest first.
// GET /, GET /home
func (h *PostHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		renderInternalError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, "home.html", pageData{Title: "Welcome", Data: posts})
}

// HandleAbout renders the static about page.
// GET /about
func (h *PostHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "about.html", pageData{Title: "About"})
}

// HandleUser renders a greeting for whatever name is in the path. No
// account lookup happens; the page greets strangers too.
// GET /user/{name}
func (h *PostHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	render(w, r, http.StatusOK, "user.html", pageData{Title: name, Data: name})
}

// HandleNewPostForm renders an empty post form.
// GET /post/new
func (h *PostHandler) HandleNewPostForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "manage_post.html", pageData{Title: "New Post", Data: "New Post"})
}

// HandleNewPost creates a post owned by the signed-in user.
// POST /post/new
func (h *PostHandler) HandleNewPost(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		renderInternalError(w, r, err)
		return
	}

	title := r.PostFormValue("title")
	content := r.PostFormValue("content")

	_, err := h.posts.Create(r.Context(), user.ID, title, content)
	if err != nil {
		var fe service.FieldErrors
		if errors.As(err, &fe) {
			render(w, r, http.StatusUnprocessableEntity, "manage_post.html", pageData{
				Title:  "New Post",
				Errors: fe,
				Form:   map[string]string{"title": title, "content": content},
				Data:   "New Post",
			})
			return
		}
		renderInternalError(w, r, err)
		return
	}

	setFlash(w, "Your post has been created!", "success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandlePost renders a single post.
// GET /post/{id}
func (h *PostHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	render(w, r, http.StatusOK, "post.html", pageData{Title: post.Title, Data: post})
}

// HandleEditPostForm renders the post form pre-filled with the stored title
// and content, line breaks reversed for editing.
// GET /post/{id}/update
func (h *PostHandler) HandleEditPostForm(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}

	user := UserFromContext(r.Context())
	if post.UserID != user.ID {
		renderForbidden(w, r)
		return
	}

	render(w, r, http.StatusOK, "manage_post.html", pageData{
		Title: "Update Post",
		Form: map[string]string{
			"title":   post.Title,
			"content": service.DenormalizeContent(post.Content),
		},
		Data: "Update Post",
	})
}

// HandleUpdatePost rewrites a post after the ownership check.
// POST /post/{id}/update
func (h *PostHandler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	postID, err := pathID(r)
	if err != nil {
		renderNotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		renderInternalError(w, r, err)
		return
	}

	title := r.PostFormValue("title")
	content := r.PostFormValue("content")

	post, err := h.posts.Update(r.Context(), user.ID, postID, title, content)
	if err != nil {
		var fe service.FieldErrors
		if errors.As(err, &fe) {
			render(w, r, http.StatusUnprocessableEntity, "manage_post.html", pageData{
				Title:  "Update Post",
				Errors: fe,
				Form:   map[string]string{"title": title, "content": content},
				Data:   "Update Post",
			})
			return
		}
		h.renderPostError(w, r, err)
		return
	}

	setFlash(w, "Your post has been updated!", "success")
	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusSeeOther)
}

// HandleDeletePost deletes a post after the ownership check. Deletion only
// answers to a form submission, never a bare link.
// POST /post/{id}/delete
func (h *PostHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	postID, err := pathID(r)
	if err != nil {
		renderNotFound(w, r)
		return
	}

	if err := h.posts.Delete(r.Context(), user.ID, postID); err != nil {
		h.renderPostError(w, r, err)
		return
	}

	setFlash(w, "Your post has been deleted!", "success")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PostHandler) loadPost(w http.ResponseWriter, r *http.Request) (*domain.Post, bool) {
	postID, err := pathID(r)
	if err != nil {
		renderNotFound(w, r)
		return nil, false
	}

	post, err := h.posts.GetByID(r.Context(), postID)
	if err != nil {
		h.renderPostError(w, r, err)
		return nil, false
	}
	return post, true
}

func (h *PostHandler) renderPostError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		renderNotFound(w, r)
	case errors.Is(err, domain.ErrForbidden):
		renderForbidden(w, r)
	default:
		renderInternalError(w, r, err)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
