package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"pressroom/app/controllers"
	"pressroom/app/middleware"
	"pressroom/app/repositories"
	"pressroom/app/services"
	"pressroom/app/sessions"
)

// Deps are the shared resources the router needs.
type Deps struct {
	DB       *repositories.Database
	Sessions *sessions.Store
	Log      *zap.Logger

	// BasePath locates app/views and static/; empty means the working
	// directory. MediaDir receives uploaded images.
	BasePath string
	MediaDir string
}

// Setup builds the application router.
func Setup(deps Deps) *mux.Router {
	userRepo := deps.DB.NewUserRepository()
	categoryRepo := deps.DB.NewCategoryRepository()
	locationRepo := deps.DB.NewLocationRepository()
	postRepo := deps.DB.NewPostRepository()
	commentRepo := deps.DB.NewCommentRepository()

	postService := services.NewPostService(postRepo, commentRepo, categoryRepo, locationRepo)
	commentService := services.NewCommentService(commentRepo, postRepo)
	profileService := services.NewProfileService(userRepo, postRepo)
	authService := services.NewAuthService(userRepo, deps.Sessions)

	postController := controllers.NewPostController(postService, deps.Log, deps.BasePath, deps.MediaDir)
	commentController := controllers.NewCommentController(commentService, postService, deps.Log, deps.BasePath)
	profileController := controllers.NewProfileController(profileService, deps.Log, deps.BasePath)
	authController := controllers.NewAuthController(authService, deps.Log, deps.BasePath)

	router := mux.NewRouter().StrictSlash(true)

	// Apply global middleware
	router.Use(middleware.Logger(deps.Log))
	router.Use(middleware.Recoverer(deps.Log))
	router.Use(middleware.Authenticate(authService))

	// Static assets and uploaded media
	router.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(deps.BasePath+"/static"))))
	router.PathPrefix("/media/").Handler(
		http.StripPrefix("/media/", http.FileServer(http.Dir(deps.MediaDir))))

	// Public pages
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/category/{slug}/", postController.Category).Methods("GET")
	router.HandleFunc("/profile/{username}/", profileController.Show).Methods("GET")

	// Posts
	posts := router.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("/create/", middleware.RequireAuth(postController.Create)).Methods("GET", "POST")
	posts.HandleFunc("/{id:[0-9]+}/", postController.Show).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}/edit/", middleware.RequireAuth(postController.Edit)).Methods("GET", "POST")
	posts.HandleFunc("/{id:[0-9]+}/delete/", middleware.RequireAuth(postController.Delete)).Methods("GET", "POST")

	// Comments
	posts.HandleFunc("/{id:[0-9]+}/comment/", middleware.RequireAuth(commentController.Create)).Methods("POST")
	posts.HandleFunc("/{id:[0-9]+}/edit_comment/{comment_id:[0-9]+}/", middleware.RequireAuth(commentController.Edit)).Methods("GET", "POST")
	posts.HandleFunc("/{id:[0-9]+}/delete_comment/{comment_id:[0-9]+}/", middleware.RequireAuth(commentController.Delete)).Methods("GET", "POST")

	// Profile edit
	router.HandleFunc("/profile/{username}/edit/", middleware.RequireAuth(profileController.Edit)).Methods("GET", "POST")

	// Auth
	auth := router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/registration/", authController.Register).Methods("GET", "POST")
	auth.HandleFunc("/login/", authController.Login).Methods("GET", "POST")
	auth.HandleFunc("/logout/", authController.Logout).Methods("POST")

	return router
}

// StartServer starts the HTTP server on the specified address with the given router.
func StartServer(addr string, router http.Handler) error {
	return http.ListenAndServe(addr, router)
}
