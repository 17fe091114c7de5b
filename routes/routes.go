package routes

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/curious-broccoli/ufo-hackathon/handlers"
)

//go:embed swagger.json
var swaggerDoc []byte

func SetupRoutes(router *chi.Mux, submissionHandler *handlers.SubmissionHandler) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Get("/", submissionHandler.LeaderboardPage)
	router.Post("/", submissionHandler.Submit)
	router.Get("/leaderboard", submissionHandler.LeaderboardJSON)
	router.Delete("/groups/{name}", submissionHandler.DeleteGroup)

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(swaggerDoc)
	})
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
