package controllers

import (
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"pressroom/app/middleware"
	"pressroom/app/services"
)

// AuthController handles registration, login and logout.
type AuthController struct {
	authService *services.AuthService
	log         *zap.Logger
	templates   map[string]*template.Template
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, log *zap.Logger, basePath string) *AuthController {
	return &AuthController{
		authService: authService,
		log:         log,
		templates: loadTemplates(basePath, map[string][]string{
			"login":        {"app/views/auth/login.html"},
			"registration": {"app/views/auth/registration.html"},
		}),
	}
}

// Register handles GET (blank form) and POST (create account, open a
// session) of /auth/registration/.
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.renderAuth(w, r, "registration", "", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := ac.authService.Register(username, email, password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			ac.renderAuth(w, r, "registration", username, map[string]string{"username": "username already taken"})
		case fieldErrors(err) != nil:
			ac.renderAuth(w, r, "registration", username, fieldErrors(err))
		default:
			ac.log.Error("registration failed", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	// Log the fresh account straight in.
	_, token, err := ac.authService.Login(username, password)
	if err != nil {
		ac.log.Error("post-registration login failed", zap.Error(err))
		http.Redirect(w, r, "/auth/login/", http.StatusSeeOther)
		return
	}
	ac.setSessionCookie(w, token)
	http.Redirect(w, r, "/profile/"+user.Username+"/", http.StatusSeeOther)
}

// Login handles GET (form) and POST (authenticate) of /auth/login/.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ac.renderAuth(w, r, "login", "", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")

	_, token, err := ac.authService.Login(username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ac.renderAuth(w, r, "login", username, map[string]string{"form": "invalid username or password"})
			return
		}
		ac.log.Error("login failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /auth/logout/.
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if err := ac.authService.Logout(cookie.Value); err != nil {
			ac.log.Warn("logout failed", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (ac *AuthController) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ac *AuthController) renderAuth(w http.ResponseWriter, r *http.Request, view, username string, errs map[string]string) {
	status := http.StatusOK
	if errs != nil {
		status = http.StatusUnprocessableEntity
	}
	data := struct {
		basePage
		Username string
		Errors   map[string]string
	}{
		basePage: basePage{CurrentUser: middleware.CurrentUser(r)},
		Username: username,
		Errors:   errs,
	}
	if status != http.StatusOK {
		renderStatus(w, status, ac.templates[view], data, ac.log)
		return
	}
	render(w, ac.templates[view], data, ac.log)
}
