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

// PostController handles HTTP requests for the post pages: the public
// index, category listings, detail, and the author-only mutations.
type PostController struct {
	postService *services.PostService
	log         *zap.Logger
	mediaDir    string
	templates   map[string]*template.Template
}

// NewPostController creates a new PostController. basePath locates the
// app/views directory, mediaDir receives image uploads.
func NewPostController(postService *services.PostService, log *zap.Logger, basePath, mediaDir string) *PostController {
	return &PostController{
		postService: postService,
		log:         log,
		mediaDir:    mediaDir,
		templates: loadTemplates(basePath, map[string][]string{
			"index":    {"app/views/posts/index.html"},
			"category": {"app/views/posts/category.html"},
			"detail":   {"app/views/posts/detail.html", "app/views/shared/comments.html"},
			"form":     {"app/views/posts/form.html"},
			"confirm":  {"app/views/posts/confirm_delete.html"},
		}),
	}
}

// Index handles the public post index, paginated.
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := pc.postService.ListPublished(pageParam(r))
	if err != nil {
		pc.log.Error("failed to list posts", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := struct {
		basePage
		Page *services.PostPage
	}{
		basePage: basePage{CurrentUser: middleware.CurrentUser(r)},
		Page:     page,
	}
	render(w, pc.templates["index"], data, pc.log)
}

// Category handles the listing of a published category's visible posts.
func (pc *PostController) Category(w http.ResponseWriter, r *http.Request) {
	slug := pathVar(r, "slug")

	category, page, err := pc.postService.ListByCategory(slug, pageParam(r))
	if err != nil {
		if services.IsNotFound(err) {
			notFound(w)
			return
		}
		pc.log.Error("failed to list category posts", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := struct {
		basePage
		Category *models.Category
		Page     *services.PostPage
	}{
		basePage: basePage{CurrentUser: middleware.CurrentUser(r)},
		Category: category,
		Page:     page,
	}
	render(w, pc.templates["category"], data, pc.log)
}

// Show handles the post detail page: the post, its comments oldest
// first, and an empty comment form. Hidden posts read as 404 to anyone
// but their author.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		notFound(w)
		return
	}

	viewer := middleware.CurrentUser(r)
	viewerID := 0
	if viewer != nil {
		viewerID = viewer.ID
	}

	post, comments, err := pc.postService.GetForViewer(id, viewerID)
	if err != nil {
		if services.IsNotFound(err) {
			notFound(w)
			return
		}
		pc.log.Error("failed to fetch post", zap.Int("id", id), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pc.renderDetail(w, r, post, comments, nil, "", http.StatusOK)
}

// Create handles GET (blank form) and POST (create) of /posts/create/.
// The author is the caller; success redirects to the caller's profile.
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CurrentUser(r)

	if r.Method != http.MethodPost {
		pc.renderForm(w, r, &models.Post{}, nil)
		return
	}

	post, err := pc.postFromForm(r)
	if err != nil {
		pc.renderForm(w, r, &models.Post{}, map[string]string{"form": err.Error()})
		return
	}
	post.AuthorID = caller.ID

	if err := pc.postService.Create(post); err != nil {
		if fields := fieldErrors(err); fields != nil {
			pc.renderForm(w, r, post, fields)
			return
		}
		pc.log.Error("failed to create post", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/profile/"+caller.Username+"/", http.StatusSeeOther)
}

// Edit handles GET (pre-filled form) and POST (persist) of an existing
// post. A caller that is not the author is redirected to the detail
// page with no state change.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		notFound(w)
		return
	}
	caller := middleware.CurrentUser(r)
	detailURL := fmt.Sprintf("/posts/%d/", id)

	existing, err := pc.postService.GetOwned(id, caller.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotOwner) {
			http.Redirect(w, r, detailURL, http.StatusSeeOther)
			return
		}
		if services.IsNotFound(err) {
			notFound(w)
			return
		}
		pc.log.Error("failed to fetch post", zap.Int("id", id), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodPost {
		pc.renderForm(w, r, existing, nil)
		return
	}

	post, err := pc.postFromForm(r)
	if err != nil {
		pc.renderForm(w, r, existing, map[string]string{"form": err.Error()})
		return
	}
	post.ID = id

	if err := pc.postService.Update(post, caller.ID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			http.Redirect(w, r, detailURL, http.StatusSeeOther)
		case fieldErrors(err) != nil:
			pc.renderForm(w, r, post, fieldErrors(err))
		case services.IsNotFound(err):
			notFound(w)
		default:
			pc.log.Error("failed to update post", zap.Int("id", id), zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, detailURL, http.StatusSeeOther)
}

// Delete handles GET (confirmation page) and POST (delete) of a post.
// Unlike edit, a non-author gets a hard 403.
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		notFound(w)
		return
	}
	caller := middleware.CurrentUser(r)

	post, err := pc.postService.GetOwned(id, caller.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotOwner) {
			forbidden(w)
			return
		}
		if services.IsNotFound(err) {
			notFound(w)
			return
		}
		pc.log.Error("failed to fetch post", zap.Int("id", id), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodPost {
		data := struct {
			basePage
			Post *models.Post
		}{
			basePage: basePage{CurrentUser: caller},
			Post:     post,
		}
		render(w, pc.templates["confirm"], data, pc.log)
		return
	}

	if err := pc.postService.Delete(id, caller.ID); err != nil {
		if errors.Is(err, services.ErrNotOwner) {
			forbidden(w)
			return
		}
		pc.log.Error("failed to delete post", zap.Int("id", id), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderDetail renders the detail page, optionally carrying a failed
// comment submission back into the form.
func (pc *PostController) renderDetail(w http.ResponseWriter, r *http.Request, post *models.Post, comments []*models.Comment, commentErrors map[string]string, commentText string, status int) {
	data := struct {
		basePage
		Post          *models.Post
		Comments      []*models.Comment
		CommentText   string
		CommentErrors map[string]string
	}{
		basePage:      basePage{CurrentUser: middleware.CurrentUser(r)},
		Post:          post,
		Comments:      comments,
		CommentText:   commentText,
		CommentErrors: commentErrors,
	}
	if status != http.StatusOK {
		renderStatus(w, status, pc.templates["detail"], data, pc.log)
		return
	}
	render(w, pc.templates["detail"], data, pc.log)
}

func (pc *PostController) renderForm(w http.ResponseWriter, r *http.Request, post *models.Post, errs map[string]string) {
	categories, err := pc.postService.Categories()
	if err != nil {
		pc.log.Error("failed to list categories", zap.Error(err))
	}
	locations, err := pc.postService.Locations()
	if err != nil {
		pc.log.Error("failed to list locations", zap.Error(err))
	}

	status := http.StatusOK
	if errs != nil {
		status = http.StatusUnprocessableEntity
	}
	data := struct {
		basePage
		Post       *models.Post
		Categories []*models.Category
		Locations  []*models.Location
		Errors     map[string]string
	}{
		basePage:   basePage{CurrentUser: middleware.CurrentUser(r)},
		Post:       post,
		Categories: categories,
		Locations:  locations,
		Errors:     errs,
	}
	if status != http.StatusOK {
		renderStatus(w, status, pc.templates["form"], data, pc.log)
		return
	}
	render(w, pc.templates["form"], data, pc.log)
}

// postFromForm builds a post from the submitted form, handling an
// optional multipart image upload.
func (pc *PostController) postFromForm(r *http.Request) (*models.Post, error) {
	contentType := r.Header.Get("Content-Type")
	if len(contentType) >= 19 && contentType[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			return nil, fmt.Errorf("failed to parse form: %v", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %v", err)
	}

	post := &models.Post{
		Title:      r.FormValue("title"),
		Text:       r.FormValue("text"),
		LocationID: optionalID(r.FormValue("location")),
		CategoryID: optionalID(r.FormValue("category")),
	}

	if value := r.FormValue("pub_date"); value != "" {
		pubDate, err := parsePubDate(value)
		if err != nil {
			return nil, err
		}
		post.PubDate = pubDate
	}

	if file, header, err := r.FormFile("image"); err == nil {
		name, err := saveUpload(file, header, pc.mediaDir)
		if err != nil {
			return nil, fmt.Errorf("failed to store image: %v", err)
		}
		post.Image = name
	}

	return post, nil
}
