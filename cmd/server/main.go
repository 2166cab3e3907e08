package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/castboard/backend/internal/config"
	"github.com/castboard/backend/internal/handlers"
	appmiddleware "github.com/castboard/backend/internal/middleware"
	"github.com/castboard/backend/internal/models"
	"github.com/castboard/backend/internal/services"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(os.Stdout)

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := services.NewMongoDatabase(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	log.Info().Str("db", cfg.MongoDatabase).Msg("MongoDB connected")

	// Media blobs go to GCS when a bucket is configured, local disk
	// otherwise.
	var blobs services.BlobStorage
	if cfg.StorageBucket != "" {
		blobs, err = services.NewGCSStorage(ctx, cfg.StorageBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize media storage")
		}
	} else {
		blobs, err = services.NewLocalStorage(cfg.UploadDir, "/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize media storage")
		}
	}

	talentService := services.NewMongoTalentService(ctx, db)
	mediaService := services.NewMongoMediaService(db, blobs)
	filterService := services.NewMongoFilterService(ctx, db)
	projectService := services.NewMongoProjectService(ctx, db)
	bookmarkService := services.NewMongoBookmarkService(ctx, db)
	userService := services.NewMongoUserService(ctx, db)

	talentHandler := handlers.NewTalentHandler(talentService, mediaService, filterService, cfg.FetchLimit, cfg.MaxUploadSizeMB)
	filterHandler := handlers.NewFilterHandler(filterService)
	projectHandler := handlers.NewProjectHandler(projectService, cfg.FetchLimit)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkService, cfg.FetchLimit)
	authHandler := handlers.NewAuthHandler(userService, cfg.JWTSecret, cfg.JWTExpiration)
	userHandler := handlers.NewUserHandler(userService)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// Auth
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Current user
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.JWTAuth(cfg.JWTSecret))
			r.Get("/user", userHandler.GetUser)
			r.Put("/user", userHandler.UpdateUser)
			r.Delete("/user", userHandler.DeleteUser)
		})

		// Filter references
		for _, kind := range []string{
			models.FilterKindLanguage,
			models.FilterKindGenre,
			models.FilterKindPlatform,
			models.FilterKindSkill,
		} {
			kind := kind
			r.Route("/"+kind, func(r chi.Router) {
				r.Post("/", filterHandler.Create(kind))
				r.Get("/", filterHandler.List(kind))
				r.Put("/{title}", filterHandler.Update(kind))
				r.Delete("/{title}", filterHandler.Delete(kind))
			})
		}

		// Talents
		r.Get("/talents", talentHandler.ListTalents)
		r.Get("/talentfilters", talentHandler.ListTalentNames)
		r.Post("/talents", talentHandler.CreateTalent)
		r.Route("/talents/{name}", func(r chi.Router) {
			r.Get("/", talentHandler.GetTalent)
			r.Put("/", talentHandler.UpdateTalent)
			r.Delete("/", talentHandler.DeleteTalent)
		})

		// Projects
		r.Post("/project", projectHandler.CreateProject)
		r.Get("/project", projectHandler.ListProjects)
		r.Get("/projectfilters", projectHandler.ListProjectNames)
		r.Route("/project/{title}", func(r chi.Router) {
			r.Get("/", projectHandler.GetProject)
			r.Put("/", projectHandler.UpdateProject)
			r.Delete("/", projectHandler.DeleteProject)
		})

		// Bookmarks
		r.With(appmiddleware.JWTAuth(cfg.JWTSecret)).Post("/bookmarks", bookmarkHandler.CreateBookmark)
		r.Get("/bookmarks", bookmarkHandler.ListBookmarks)
		r.Route("/bookmarks/{name}", func(r chi.Router) {
			r.Get("/", bookmarkHandler.GetBookmark)
			r.Put("/", bookmarkHandler.ToggleBookmark)
			r.Delete("/", bookmarkHandler.DeleteBookmark)
		})
	})

	// Serve local media when no bucket is configured.
	if cfg.StorageBucket == "" {
		filesDir := http.Dir(cfg.UploadDir)
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(filesDir)))
	}

	log.Info().Str("addr", cfg.ServerAddress).Msg("Castboard API server starting")
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}
