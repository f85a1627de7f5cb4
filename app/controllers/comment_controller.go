package controllers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"pressroom/app/middleware"
	"pressroom/app/models"
	"pressroom/app/services"
)

// CommentController handles HTTP requests for comments: adding on a
// post, and the author-only edit and confirm-delete flows.
type CommentController struct {
	commentService *services.CommentService
	postService    *services.PostService
	log            *zap.Logger
	templates      map[string]*template.Template
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService, postService *services.PostService, log *zap.Logger, basePath string) *CommentController {
	return &CommentController{
		commentService: commentService,
		postService:    postService,
		log:            log,
		templates: loadTemplates(basePath, map[string][]string{
			"detail":  {"app/views/posts/detail.html", "app/views/shared/comments.html"},
			"form":    {"app/views/comments/form.html"},
			"confirm": {"app/views/comments/confirm_delete.html"},
		}),
	}
}

// Create handles POST /posts/{id}/comment/. A valid comment persists
// and redirects to the detail page; an invalid one re-renders the
// detail page with field errors instead of being dropped.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, err := pathInt(r, "id")
	if err != nil {
		notFound(w)
		return
	}
	caller := middleware.CurrentUser(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	text := r.FormValue("text")

	_, err = cc.commentService.Add(postID, caller.ID, text)
	if err != nil {
		if services.IsNotFound(err) {
			notFound(w)
			return
		}
		if fields := fieldErrors(err); fields != nil {
			cc.renderDetailWithForm(w, r, postID, caller, text, fields)
			return
		}
		cc.log.Error("failed to add comment", zap.Int("post_id", postID), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", postID), http.StatusSeeOther)
}

// Edit handles GET (pre-filled form) and POST (persist) of a comment.
// A caller that is not the comment's author is redirected to the detail
// page with no state change.
func (cc *CommentController) Edit(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathInt(r, "comment_id")
	if err != nil {
		notFound(w)
		return
	}
	caller := middleware.CurrentUser(r)

	comment, err := cc.commentService.Get(commentID)
	if err != nil {
		if services.IsNotFound(err) {
			notFound(w)
			return
		}
		cc.log.Error("failed to fetch comment", zap.Int("id", commentID), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Redirect targets derive from the stored comment, not the URL.
	detailURL := fmt.Sprintf("/posts/%d/", comment.PostID)
	if comment.AuthorID != caller.ID {
		http.Redirect(w, r, detailURL, http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodPost {
		cc.renderCommentForm(w, r, comment, comment.Text, nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	text := r.FormValue("text")

	if _, err := cc.commentService.Update(commentID, caller.ID, text); err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			http.Redirect(w, r, detailURL, http.StatusSeeOther)
		case fieldErrors(err) != nil:
			cc.renderCommentForm(w, r, comment, text, fieldErrors(err))
		case services.IsNotFound(err):
			notFound(w)
		default:
			cc.log.Error("failed to update comment", zap.Int("id", commentID), zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, detailURL, http.StatusSeeOther)
}

// Delete handles the two-step comment removal: GET renders the
// confirmation view, POST deletes. Non-authors are redirected to the
// detail page without deleting.
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathInt(r, "comment_id")
	if err != nil {
		notFound(w)
		return
	}
	caller := middleware.CurrentUser(r)

	comment, err := cc.commentService.Get(commentID)
	if err != nil {
		if services.IsNotFound(err) {
			notFound(w)
			return
		}
		cc.log.Error("failed to fetch comment", zap.Int("id", commentID), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	detailURL := fmt.Sprintf("/posts/%d/", comment.PostID)
	if comment.AuthorID != caller.ID {
		http.Redirect(w, r, detailURL, http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodPost {
		data := struct {
			basePage
			Comment *models.Comment
		}{
			basePage: basePage{CurrentUser: caller},
			Comment:  comment,
		}
		render(w, cc.templates["confirm"], data, cc.log)
		return
	}

	if err := cc.commentService.Delete(commentID, caller.ID); err != nil {
		if errors.Is(err, services.ErrNotOwner) {
			http.Redirect(w, r, detailURL, http.StatusSeeOther)
			return
		}
		cc.log.Error("failed to delete comment", zap.Int("id", commentID), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, detailURL, http.StatusSeeOther)
}

func (cc *CommentController) renderCommentForm(w http.ResponseWriter, r *http.Request, comment *models.Comment, text string, errs map[string]string) {
	status := http.StatusOK
	if errs != nil {
		status = http.StatusUnprocessableEntity
	}
	data := struct {
		basePage
		Comment *models.Comment
		Text    string
		Errors  map[string]string
	}{
		basePage: basePage{CurrentUser: middleware.CurrentUser(r)},
		Comment:  comment,
		Text:     text,
		Errors:   errs,
	}
	if status != http.StatusOK {
		renderStatus(w, status, cc.templates["form"], data, cc.log)
		return
	}
	render(w, cc.templates["form"], data, cc.log)
}

// renderDetailWithForm re-renders the post detail page carrying a
// failed comment submission.
func (cc *CommentController) renderDetailWithForm(w http.ResponseWriter, r *http.Request, postID int, caller *models.User, text string, errs map[string]string) {
	post, comments, err := cc.postService.GetForViewer(postID, caller.ID)
	if err != nil {
		notFound(w)
		return
	}

	data := struct {
		basePage
		Post          *models.Post
		Comments      []*models.Comment
		CommentText   string
		CommentErrors map[string]string
	}{
		basePage:      basePage{CurrentUser: caller},
		Post:          post,
		Comments:      comments,
		CommentText:   text,
		CommentErrors: errs,
	}
	renderStatus(w, http.StatusUnprocessableEntity, cc.templates["detail"], data, cc.log)
}
