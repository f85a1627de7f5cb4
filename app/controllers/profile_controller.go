package controllers

import (
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"pressroom/app/middleware"
	"pressroom/app/models"
	"pressroom/app/services"
)

// ProfileController handles profile pages: the public post listing
// (drafts included, per the profile contract) and the self-only edit.
type ProfileController struct {
	profileService *services.ProfileService
	log            *zap.Logger
	templates      map[string]*template.Template
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService *services.ProfileService, log *zap.Logger, basePath string) *ProfileController {
	return &ProfileController{
		profileService: profileService,
		log:            log,
		templates: loadTemplates(basePath, map[string][]string{
			"detail": {"app/views/profile/detail.html"},
			"edit":   {"app/views/profile/edit.html"},
		}),
	}
}

// Show handles GET /profile/{username}/: the user plus every post they
// authored, paginated, with no visibility filtering.
func (pc *ProfileController) Show(w http.ResponseWriter, r *http.Request) {
	username := pathVar(r, "username")

	user, page, err := pc.profileService.ListPosts(username, pageParam(r))
	if err != nil {
		if services.IsNotFound(err) {
			notFound(w)
			return
		}
		pc.log.Error("failed to load profile", zap.String("username", username), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := struct {
		basePage
		Profile *models.User
		Page    *services.PostPage
	}{
		basePage: basePage{CurrentUser: middleware.CurrentUser(r)},
		Profile:  user,
		Page:     page,
	}
	render(w, pc.templates["detail"], data, pc.log)
}

// Edit handles GET (pre-filled form) and POST (persist) of the profile
// edit page. Only the profile's own user may edit; others are
// redirected to the profile view.
func (pc *ProfileController) Edit(w http.ResponseWriter, r *http.Request) {
	username := pathVar(r, "username")
	caller := middleware.CurrentUser(r)
	profileURL := "/profile/" + username + "/"

	target, err := pc.profileService.Get(username)
	if err != nil {
		if services.IsNotFound(err) {
			notFound(w)
			return
		}
		pc.log.Error("failed to load profile", zap.String("username", username), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if target.ID != caller.ID {
		http.Redirect(w, r, profileURL, http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodPost {
		pc.renderEdit(w, r, target, nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	update := services.ProfileUpdate{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Username:  r.FormValue("username"),
		Email:     r.FormValue("email"),
	}

	updated, err := pc.profileService.Update(caller.ID, username, update)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			http.Redirect(w, r, profileURL, http.StatusSeeOther)
		case errors.Is(err, services.ErrUsernameTaken):
			submitted := *target
			submitted.FirstName = update.FirstName
			submitted.LastName = update.LastName
			submitted.Username = update.Username
			submitted.Email = update.Email
			pc.renderEdit(w, r, &submitted, map[string]string{"username": "username already taken"})
		case fieldErrors(err) != nil:
			submitted := *target
			submitted.FirstName = update.FirstName
			submitted.LastName = update.LastName
			submitted.Username = update.Username
			submitted.Email = update.Email
			pc.renderEdit(w, r, &submitted, fieldErrors(err))
		default:
			pc.log.Error("failed to update profile", zap.String("username", username), zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	// The username may have changed; redirect to the edit page under
	// the new name.
	http.Redirect(w, r, "/profile/"+updated.Username+"/edit/", http.StatusSeeOther)
}

func (pc *ProfileController) renderEdit(w http.ResponseWriter, r *http.Request, user *models.User, errs map[string]string) {
	status := http.StatusOK
	if errs != nil {
		status = http.StatusUnprocessableEntity
	}
	data := struct {
		basePage
		Profile *models.User
		Errors  map[string]string
	}{
		basePage: basePage{CurrentUser: middleware.CurrentUser(r)},
		Profile:  user,
		Errors:   errs,
	}
	if status != http.StatusOK {
		renderStatus(w, status, pc.templates["edit"], data, pc.log)
		return
	}
	render(w, pc.templates["edit"], data, pc.log)
}
