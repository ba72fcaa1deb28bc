package handler

import (
	"net/http"

	"github.com/msomdec/plume/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	account *service.AccountService,
	posts *service.PostService,
	reset *service.ResetService,
	mediaDir string,
	cookieSecure bool,
) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	accountHandler := NewAccountHandler(account)
	postHandler := NewPostHandler(posts)
	resetHandler := NewResetHandler(reset)

	optional := func(h http.HandlerFunc) http.Handler { return OptionalAuth(auth, h) }
	required := func(h http.HandlerFunc) http.Handler { return RequireAuth(auth, h) }
	anonymous := func(h http.HandlerFunc) http.Handler { return RequireAnonymous(auth, h) }

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("GET /{$}", optional(postHandler.HandleHome))
	mux.Handle("GET /home", optional(postHandler.HandleHome))
	mux.Handle("GET /about", optional(postHandler.HandleAbout))
	mux.Handle("GET /user/{name}", optional(postHandler.HandleUser))

	mux.Handle("GET /signup", anonymous(authHandler.HandleSignupForm))
	mux.Handle("POST /signup", anonymous(authHandler.HandleSignup))
	mux.Handle("GET /signin", anonymous(authHandler.HandleSigninForm))
	mux.Handle("POST /signin", anonymous(authHandler.HandleSignin))
	mux.HandleFunc("GET /logout", authHandler.HandleLogout)

	mux.Handle("GET /account", required(accountHandler.HandleAccountForm))
	mux.Handle("POST /account", required(accountHandler.HandleAccountUpdate))

	mux.Handle("GET /post/new", required(postHandler.HandleNewPostForm))
	mux.Handle("POST /post/new", required(postHandler.HandleNewPost))
	mux.Handle("GET /post/{id}", optional(postHandler.HandlePost))
	mux.Handle("GET /post/{id}/update", required(postHandler.HandleEditPostForm))
	mux.Handle("POST /post/{id}/update", required(postHandler.HandleUpdatePost))
	mux.Handle("POST /post/{id}/delete", required(postHandler.HandleDeletePost))

	mux.Handle("GET /reset_password", anonymous(resetHandler.HandleRequestForm))
	mux.Handle("POST /reset_password", anonymous(resetHandler.HandleRequest))
	mux.Handle("GET /reset_password/{token}", anonymous(resetHandler.HandleTokenForm))
	mux.Handle("POST /reset_password/{token}", anonymous(resetHandler.HandleToken))
	mux.Handle("GET /no-internet", optional(resetHandler.HandleNoInternet))

	mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))
}
